package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	apperrors "github.com/eatsplorer/eatsplorer-backend/internal/errors"
	"github.com/eatsplorer/eatsplorer-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// usernameCookie is read by the legacy front end; logout clears it.
const usernameCookie = "username"

type AccountController struct {
	accountService service.AccountService
	sessionExpiry  time.Duration
	secureCookies  bool
}

func NewAccountController(accountService service.AccountService, sessionExpiry time.Duration, secureCookies bool) *AccountController {
	return &AccountController{
		accountService: accountService,
		sessionExpiry:  sessionExpiry,
		secureCookies:  secureCookies,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required,notblank"`
	Password string `json:"password" binding:"required"`
}

type NewPasswordRequest struct {
	Email     string `json:"email" binding:"required"`
	Password1 string `json:"password1" binding:"required"`
}

// Register creates an account
// POST /account/was/created
func (ctrl *AccountController) Register(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := ctrl.accountService.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			apperrors.Conflict(c, apperrors.AuthUsernameExists, "Username already exists")
			return
		}
		respondInternal(c, "Failed to register account", err)
		return
	}

	log.Info("Account registered", map[string]interface{}{
		"account_id": account.ID,
	})
	c.JSON(http.StatusCreated, gin.H{
		"id":       account.ID,
		"username": account.Username,
		"email":    account.Email,
	})
}

// Login checks the password and sets the session cookie
// POST /Log_in
func (ctrl *AccountController) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	account, token, err := ctrl.accountService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			apperrors.NotFound(c, apperrors.AccountNotFound, "User not found")
		case errors.Is(err, service.ErrInvalidCredentials):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid credentials")
		default:
			respondInternal(c, "Failed to log in", err)
		}
		return
	}

	maxAge := int(ctrl.sessionExpiry.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", ctrl.secureCookies, true)
	c.SetCookie(usernameCookie, account.Username, maxAge, "/", "", ctrl.secureCookies, false)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"id":       account.ID,
		"username": account.Username,
		"token":    token,
	})
}

// Me returns the account of the current session
// GET /me
func (ctrl *AccountController) Me(c *gin.Context) {
	id, ok := middleware.GetAccountID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	username, _ := middleware.GetUsername(c)
	c.JSON(http.StatusOK, gin.H{
		"id":       id,
		"username": username,
	})
}

// Logout clears the session cookies
// POST /logout
func (ctrl *AccountController) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", ctrl.secureCookies, true)
	c.SetCookie(usernameCookie, "", -1, "/", "", ctrl.secureCookies, false)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// NewPassword sets a new password for the account with the given email
// POST /NewPassword
func (ctrl *AccountController) NewPassword(c *gin.Context) {
	var req NewPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.accountService.ResetPassword(c.Request.Context(), req.Email, req.Password1); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			apperrors.NotFound(c, apperrors.AccountNotFound, "User not found")
			return
		}
		respondInternal(c, "Failed to reset password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User data updated successfully"})
}

// List returns accounts without their password hashes
// GET /acc, /k090asd0/77273173/hsjds
func (ctrl *AccountController) List(c *gin.Context) {
	accounts, err := ctrl.accountService.List(c.Request.Context())
	if err != nil {
		respondInternal(c, "Failed to list accounts", err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// Count returns the number of accounts
// GET /user
func (ctrl *AccountController) Count(c *gin.Context) {
	n, err := ctrl.accountService.Count(c.Request.Context())
	if err != nil {
		respondInternal(c, "Failed to count accounts", err)
		return
	}
	c.JSON(http.StatusOK, countResponse(n))
}

// Delete removes an account
// DELETE /acc_delete
func (ctrl *AccountController) Delete(c *gin.Context) {
	var req IDRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := ctrl.accountService.Delete(c.Request.Context(), uint(req.ID)); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			apperrors.NotFound(c, apperrors.AccountNotFound, "Account not found")
			return
		}
		respondInternal(c, "Failed to delete account", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}
