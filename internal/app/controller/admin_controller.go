package controller

import (
	"errors"
	"net/http"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	apperrors "github.com/eatsplorer/eatsplorer-backend/internal/errors"
	"github.com/gin-gonic/gin"
)

type AdminController struct {
	adminService service.AdminService
}

func NewAdminController(adminService service.AdminService) *AdminController {
	return &AdminController{
		adminService: adminService,
	}
}

// Login returns the admin's bearer token
// POST /login
func (ctrl *AdminController) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := ctrl.adminService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid username/email or password.")
			return
		}
		respondInternal(c, "Admin login failed", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful!",
		"token":   token,
	})
}
