package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/internal/app/model"
	"github.com/eatsplorer/eatsplorer-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

type staticAdmins map[string]*model.Admin

func (a staticAdmins) ValidateToken(_ context.Context, token string) (*model.Admin, error) {
	if admin, ok := a[token]; ok {
		return admin, nil
	}
	return nil, stderrors.New("unknown token")
}

func setupMiddlewareTest(requireAdmin bool) (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	admins := staticAdmins{"admin-token": {ID: 1, Username: "root"}}
	return router, NewAuthMiddleware(testJWTSecret, admins, requireAdmin)
}

func generateTestToken(t *testing.T, accountID uint, username string, expiry time.Duration) string {
	token, err := util.GenerateSessionToken(accountID, username, testJWTSecret, expiry)
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	valid := generateTestToken(t, 7, "alice", time.Hour)
	expired := generateTestToken(t, 7, "alice", -time.Minute)

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantBody   string
	}{
		{"bearer header", "Bearer " + valid, "", http.StatusOK, `"username":"alice"`},
		{"session cookie", "", valid, http.StatusOK, `"account_id":7`},
		{"no token", "", "", http.StatusUnauthorized, "AUTH_UNAUTHORIZED"},
		{"bad format", "Token " + valid, "", http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
		{"garbage token", "Bearer not-a-jwt", "", http.StatusUnauthorized, "AUTH_TOKEN_INVALID"},
		{"expired", "Bearer " + expired, "", http.StatusUnauthorized, "AUTH_TOKEN_EXPIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest(false)
			router.GET("/me", auth.Authenticate(), func(c *gin.Context) {
				id, _ := GetAccountID(c)
				username, _ := GetUsername(c)
				c.JSON(http.StatusOK, gin.H{"account_id": id, "username": username})
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestAuthMiddleware_RequireAdmin(t *testing.T) {
	tests := []struct {
		name         string
		requireAdmin bool
		header       string
		wantStatus   int
	}{
		{"not enforced", false, "", http.StatusOK},
		{"missing token", true, "", http.StatusUnauthorized},
		{"wrong token", true, "Bearer nope", http.StatusForbidden},
		{"valid token", true, "Bearer admin-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth := setupMiddlewareTest(tt.requireAdmin)
			router.DELETE("/acc_delete", auth.RequireAdmin(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodDelete, "/acc_delete", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		assert.NotNil(t, GetLoggerFromContext(c))
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "from-proxy")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "from-proxy", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "bad id\r\nX-Evil: 1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), 36)
}

func TestValidRequestID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"", false},
		{"abc-123_x.y", true},
		{"has space", false},
		{"semi;colon", false},
		{strings.Repeat("a", maxRequestIDLen), true},
		{strings.Repeat("a", maxRequestIDLen+1), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validRequestID(tt.id), tt.id)
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Unix(0, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(30 * time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 2, rl.Cleanup(time.Hour))
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/otp", NewRateLimiter(1, time.Minute).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/otp", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestTimeoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(TimeoutMiddleware(time.Second))
	router.GET("/slow", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.JSONEq(t, `{"deadline":true}`, w.Body.String())
}
