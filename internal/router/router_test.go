package router

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/config"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/controller"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	"github.com/eatsplorer/eatsplorer-backend/internal/db"
	"github.com/eatsplorer/eatsplorer-backend/internal/middleware"
	"github.com/eatsplorer/eatsplorer-backend/internal/notification"
	"github.com/eatsplorer/eatsplorer-backend/internal/storage"
	ws "github.com/eatsplorer/eatsplorer-backend/internal/websocket"
	"github.com/eatsplorer/eatsplorer-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardDispatcher struct{}

func (discardDispatcher) Enqueue(context.Context, notification.Message) error { return nil }
func (discardDispatcher) Close() error                                         { return nil }

func setupRouterTest(t *testing.T, requireAdmin bool, otpLimit int) (*gin.Engine, service.AdminService) {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cfg := &config.Config{
		Server:  config.ServerConfig{GinMode: gin.TestMode, RequestTimeout: 5 * time.Second},
		Storage: config.StorageConfig{Driver: "local", MaxUpload: 1 << 20},
		JWT:     config.JWTConfig{Secret: "router-secret", SessionExpiry: time.Hour},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://app.test"}},
		Auth:    config.AuthConfig{RequireAdminToken: requireAdmin},
	}

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	uploader := controller.NewUploader(store, cfg.Storage.MaxUpload)

	hub := ws.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	establishments := repository.NewEstablishmentRepository(testDB)
	accountRepo := repository.NewAccountRepository(testDB)
	adminService := service.NewAdminService(repository.NewAdminRepository(testDB))
	dispatcher := discardDispatcher{}

	r := NewRouter(
		controller.NewEstablishmentController(service.NewEstablishmentService(testDB), uploader),
		controller.NewRatingController(service.NewRatingService(testDB, hub)),
		controller.NewAccountController(service.NewAccountService(accountRepo, cfg.JWT.Secret, cfg.JWT.SessionExpiry), cfg.JWT.SessionExpiry, false),
		controller.NewAdminController(adminService),
		controller.NewFavoriteController(service.NewFavoriteService(repository.NewFavoriteRepository(testDB), establishments)),
		controller.NewGalleryController(service.NewGalleryService(repository.NewGalleryRepository(testDB), establishments), uploader),
		controller.NewNotificationController(
			service.NewOTPService(util.NewMemoryOTPStore(), dispatcher, time.Minute),
			service.NewAnnouncementService(accountRepo, dispatcher),
		),
		controller.NewFeedController(hub, cfg.CORS.AllowedOrigins),
		uploader,
		middleware.NewAuthMiddleware(cfg.JWT.Secret, adminService, cfg.Auth.RequireAdminToken),
		middleware.NewRateLimiter(otpLimit, time.Minute),
		cfg,
	)
	return r.Setup(), adminService
}

func do(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	router, _ := setupRouterTest(t, false, 5)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/abcd", http.StatusOK},
		{http.MethodGet, "/rank", http.StatusOK},
		{http.MethodGet, "/famous", http.StatusOK},
		{http.MethodGet, "/establishment", http.StatusOK},
		{http.MethodGet, "/user", http.StatusOK},
		{http.MethodGet, "/rating", http.StatusOK},
		{http.MethodGet, "/ssr", http.StatusOK},
		{http.MethodGet, "/display_comment", http.StatusOK},
		{http.MethodGet, "/fe_pic", http.StatusOK},
		{http.MethodGet, "/fepic", http.StatusOK},
		{http.MethodGet, "/fe_menu", http.StatusOK},
		{http.MethodGet, "/femenu", http.StatusOK},
		{http.MethodGet, "/type", http.StatusOK},
		{http.MethodGet, "/Types", http.StatusOK},
		{http.MethodGet, "/myfavorite", http.StatusOK},
		{http.MethodGet, "/acc", http.StatusOK},
		{http.MethodGet, "/getRandomDigits", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/me", http.StatusUnauthorized},
		{http.MethodGet, "/no-such-file.png", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := do(router, tt.method, tt.path, "", nil)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRouter_CountShape(t *testing.T) {
	router, _ := setupRouterTest(t, false, 5)

	w := do(router, http.MethodGet, "/establishment", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"count":0}]`, w.Body.String())
}

func TestRouter_AdminGuard(t *testing.T) {
	router, adminService := setupRouterTest(t, true, 5)
	admin, err := adminService.EnsureAdmin(context.Background(), "root", "s3cret")
	require.NoError(t, err)

	w := do(router, http.MethodDelete, "/rate_delete", `{"id":1}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodDelete, "/rate_delete", `{"id":1}`, map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router, http.MethodDelete, "/rate_delete", `{"id":1}`, map[string]string{"Authorization": "Bearer " + admin.Token})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/k090asd0/77273173/hsjds", "", map[string]string{"Authorization": "Bearer " + admin.Token})
	assert.Equal(t, http.StatusOK, w.Code)

	// reads stay open
	w = do(router, http.MethodGet, "/ssr", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_OTPRateLimit(t *testing.T) {
	router, _ := setupRouterTest(t, false, 2)
	body := `{"email":"alice@example.com"}`

	assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "/otp", body, nil).Code)
	assert.Equal(t, http.StatusOK, do(router, http.MethodPost, "/otp_forgot", body, nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(router, http.MethodPost, "/otp", body, nil).Code)
}

func TestCORSMiddleware(t *testing.T) {
	router, _ := setupRouterTest(t, false, 5)

	w := do(router, http.MethodOptions, "/comment", "", map[string]string{"Origin": "http://app.test"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(router, http.MethodGet, "/health", "", map[string]string{"Origin": "http://evil.test"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_HealthChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := &Router{healthChecks: map[string]func(context.Context) error{}}
	router := gin.New()
	router.GET("/health", r.health)

	r.AddHealthCheck("database", func(context.Context) error { return nil })
	w := do(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)

	r.AddHealthCheck("redis", func(context.Context) error { return errors.New("connection refused") })
	w = do(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"unavailable"`)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
