package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/internal/errors"
	"github.com/eatsplorer/eatsplorer-backend/pkg/util"
	"github.com/gin-gonic/gin"
)

// Context keys for the authenticated caller
const (
	AccountIDKey = "account_id"
	UsernameKey  = "username"
	AdminKey     = "admin"
)

// SessionCookie carries the session JWT issued by account login.
const SessionCookie = "session"

// AdminTokenValidator resolves a static admin bearer token.
type AdminTokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*model.Admin, error)
}

type AuthMiddleware struct {
	jwtSecret    string
	admins       AdminTokenValidator
	requireAdmin bool
}

func NewAuthMiddleware(jwtSecret string, admins AdminTokenValidator, requireAdmin bool) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret:    jwtSecret,
		admins:       admins,
		requireAdmin: requireAdmin,
	}
}

// bearerToken returns the token of an "Authorization: Bearer <token>" header.
// ok is false when the header is present but malformed.
func bearerToken(c *gin.Context) (token string, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", true
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authenticate requires a session token from the bearer header or the session cookie.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := bearerToken(c)
		if !ok {
			log.Warn("Invalid authorization header format")
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authorization header")
			return
		}
		if token == "" {
			token, _ = c.Cookie(SessionCookie)
		}
		if token == "" {
			errors.Unauthorized(c, "Login required")
			return
		}

		claims, err := util.ValidateSessionToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Session validation failed", map[string]interface{}{
				"error": err.Error(),
			})
			if stderrors.Is(err, util.ErrExpiredToken) {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Session has expired")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid session")
			}
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// RequireAdmin checks the admin bearer token. It lets every request through
// when admin tokens are not enforced.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.requireAdmin {
			c.Next()
			return
		}
		log := GetLoggerFromContext(c)

		token, ok := bearerToken(c)
		if !ok || token == "" {
			log.Warn("Admin token missing", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "Admin token required")
			return
		}

		admin, err := m.admins.ValidateToken(c.Request.Context(), token)
		if err != nil {
			log.Warn("Admin token rejected", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "Admin access required")
			return
		}

		c.Set(AdminKey, admin)
		c.Next()
	}
}

// GetAccountID extracts the session account id from context
func GetAccountID(c *gin.Context) (uint, bool) {
	id, exists := c.Get(AccountIDKey)
	if !exists {
		return 0, false
	}
	v, ok := id.(uint)
	return v, ok
}

// GetUsername extracts the session username from context
func GetUsername(c *gin.Context) (string, bool) {
	name, exists := c.Get(UsernameKey)
	if !exists {
		return "", false
	}
	v, ok := name.(string)
	return v, ok
}
