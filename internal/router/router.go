package router

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/config"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/controller"
	"github.com/eatsplorer/eatsplorer-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	establishmentController *controller.EstablishmentController
	ratingController        *controller.RatingController
	accountController       *controller.AccountController
	adminController         *controller.AdminController
	favoriteController      *controller.FavoriteController
	galleryController       *controller.GalleryController
	notificationController  *controller.NotificationController
	feedController          *controller.FeedController
	uploader                *controller.Uploader
	authMiddleware          *middleware.AuthMiddleware
	otpLimiter              *middleware.RateLimiter
	config                  *config.Config
	healthChecks            map[string]func(context.Context) error
}

const healthCheckTimeout = 2 * time.Second

func NewRouter(
	establishmentController *controller.EstablishmentController,
	ratingController *controller.RatingController,
	accountController *controller.AccountController,
	adminController *controller.AdminController,
	favoriteController *controller.FavoriteController,
	galleryController *controller.GalleryController,
	notificationController *controller.NotificationController,
	feedController *controller.FeedController,
	uploader *controller.Uploader,
	authMiddleware *middleware.AuthMiddleware,
	otpLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *Router {
	return &Router{
		establishmentController: establishmentController,
		ratingController:        ratingController,
		accountController:       accountController,
		adminController:         adminController,
		favoriteController:      favoriteController,
		galleryController:       galleryController,
		notificationController:  notificationController,
		feedController:          feedController,
		uploader:                uploader,
		authMiddleware:          authMiddleware,
		otpLimiter:              otpLimiter,
		config:                  cfg,
		healthChecks:            make(map[string]func(context.Context) error),
	}
}

// AddHealthCheck registers a dependency probe reported by /health.
func (r *Router) AddHealthCheck(name string, check func(context.Context) error) {
	r.healthChecks[name] = check
}

// health answers 503 when any registered probe fails.
func (r *Router) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(r.healthChecks))
	for name := range r.healthChecks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	checks := make(gin.H, len(names))
	for _, name := range names {
		if err := r.healthChecks[name](ctx); err != nil {
			middleware.GetLoggerFromContext(c).Warn("Health check failed", map[string]interface{}{
				"check": name,
				"error": err.Error(),
			})
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := gin.H{"status": "healthy", "message": "Eatsplorer API is running", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()
	router.MaxMultipartMemory = r.config.Storage.MaxUpload

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws/ratings", r.feedController.Ratings)

	// The websocket feed must not carry a deadline, so the timeout applies from here on.
	api := router.Group("/")
	api.Use(middleware.TimeoutMiddleware(r.config.Server.RequestTimeout))

	admin := r.authMiddleware.RequireAdmin()

	establishments := r.establishmentController
	api.GET("/", establishments.ListByAve)
	api.GET("/abcd", establishments.ListByAveAscending)
	api.GET("/rank", establishments.Rank)
	api.GET("/famous", establishments.Famous)
	api.GET("/nearby", establishments.Nearby)
	api.GET("/establishment", establishments.Count)
	api.POST("/insert", admin, establishments.Insert)
	api.POST("/update", admin, establishments.Update)
	api.DELETE("/eatery_delete", admin, establishments.Delete)

	ratings := r.ratingController
	api.GET("/ssr", ratings.List)
	api.GET("/display_comment", ratings.List)
	api.GET("/rating", ratings.Count)
	api.POST("/comment", ratings.CreateComment)
	api.POST("/comment_update", ratings.UpdateComment)
	api.DELETE("/comment_delete", ratings.DeleteComment)
	api.DELETE("/rate_delete", admin, ratings.DeleteByID)
	api.POST("/admin/reconcile", admin, ratings.Reconcile)

	gallery := r.galleryController
	api.GET("/fe_pic", gallery.ListPictures)
	api.GET("/fepic", gallery.ListPictures)
	api.GET("/fe_menu", gallery.ListMenus)
	api.GET("/femenu", gallery.ListMenus)
	api.GET("/type", gallery.ListTypes)
	api.GET("/Types", gallery.ListTypes)
	api.POST("/upload/ttype", admin, gallery.UploadType)
	api.POST("/upload/fepic", admin, gallery.UploadPicture)
	api.POST("/upload/femenu", admin, gallery.UploadMenu)
	api.DELETE("/image_delete", admin, gallery.DeletePicture)
	api.DELETE("/menu_delete", admin, gallery.DeleteMenu)
	api.DELETE("/type_delete", admin, gallery.DeleteType)

	favorites := r.favoriteController
	api.GET("/myfavorite", favorites.List)
	api.POST("/myfavorites", favorites.Add)
	api.DELETE("/delete_myfavorites", favorites.Remove)

	accounts := r.accountController
	api.GET("/user", accounts.Count)
	api.GET("/acc", admin, accounts.List)
	api.GET("/k090asd0/77273173/hsjds", admin, accounts.List)
	api.DELETE("/acc_delete", admin, accounts.Delete)
	api.POST("/account/was/created", accounts.Register)
	api.POST("/Log_in", accounts.Login)
	api.POST("/logout", accounts.Logout)
	api.POST("/NewPassword", accounts.NewPassword)
	api.GET("/me", r.authMiddleware.Authenticate(), accounts.Me)
	api.POST("/login", r.adminController.Login)

	notifications := r.notificationController
	limited := r.otpLimiter.Middleware()
	api.GET("/getRandomDigits", notifications.RandomDigits)
	api.POST("/otp", limited, notifications.SendRegistrationOTP)
	api.POST("/otp_forgot", limited, notifications.SendPasswordResetOTP)
	api.POST("/otp/verify", limited, notifications.VerifyOTP)
	api.POST("/send-announcement", admin, notifications.SendAnnouncement)

	// Anything else may be an uploaded file
	router.NoRoute(r.uploader.Serve)

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
