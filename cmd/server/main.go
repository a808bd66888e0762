package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eatsplorer/eatsplorer-backend/config"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/controller"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/repository"
	"github.com/eatsplorer/eatsplorer-backend/internal/app/service"
	"github.com/eatsplorer/eatsplorer-backend/internal/db"
	"github.com/eatsplorer/eatsplorer-backend/internal/middleware"
	"github.com/eatsplorer/eatsplorer-backend/internal/notification"
	"github.com/eatsplorer/eatsplorer-backend/internal/router"
	"github.com/eatsplorer/eatsplorer-backend/internal/scheduler"
	"github.com/eatsplorer/eatsplorer-backend/internal/storage"
	ws "github.com/eatsplorer/eatsplorer-backend/internal/websocket"
	"github.com/eatsplorer/eatsplorer-backend/pkg/logger"
	appredis "github.com/eatsplorer/eatsplorer-backend/pkg/redis"
	"github.com/eatsplorer/eatsplorer-backend/pkg/util"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Logging.Level
	if logLevel == "" {
		logLevel = "info"
		if cfg.Server.Environment == "development" {
			logLevel = "debug"
		}
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      cfg.Logging.Format,
		EnableColor: cfg.Logging.Format == "console",
	})

	logger.Info("Starting Eatsplorer Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"db_driver":   cfg.Database.Driver,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()
	conn := db.GetDB()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(conn); err != nil {
			logger.Fatal("Failed to run migrations", err)
		}
	}

	// OTP codes live in Redis when it is configured, otherwise in memory
	var otpStore service.OTPStore
	var cleanups []scheduler.Cleanup
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = appredis.NewClient(context.Background(), &cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer rdb.Close()
		otpStore = appredis.NewOTPStore(rdb)
	} else {
		memoryStore := util.NewMemoryOTPStore()
		otpStore = memoryStore
		cleanups = append(cleanups, scheduler.Cleanup{Name: "otp_codes", Run: memoryStore.CleanupExpired})
	}

	// Email dispatch
	mailer := notification.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Password)
	dispatcher := newDispatcher(cfg, mailer)
	defer func() {
		if err := dispatcher.Close(); err != nil {
			logger.Error("Failed to close email dispatcher", err)
		}
	}()

	// File storage
	var store storage.FileStore
	switch cfg.Storage.Driver {
	case "s3":
		store = storage.NewS3Storage(context.Background(), storage.S3Options{
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			BaseURL:         cfg.S3.BaseURL,
		})
	default:
		local, err := storage.NewLocalStorage(cfg.Storage.LocalDir)
		if err != nil {
			logger.Fatal("Failed to prepare upload directory", err, map[string]interface{}{
				"dir": cfg.Storage.LocalDir,
			})
		}
		store = local
	}
	logger.Info("File storage ready", map[string]interface{}{
		"backend": store.Backend(),
	})

	// Rating feed
	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	// Initialize repositories
	establishmentRepo := repository.NewEstablishmentRepository(conn)
	accountRepo := repository.NewAccountRepository(conn)
	adminRepo := repository.NewAdminRepository(conn)
	favoriteRepo := repository.NewFavoriteRepository(conn)
	galleryRepo := repository.NewGalleryRepository(conn)

	// Initialize services
	ratingService := service.NewRatingService(conn, hub)
	establishmentService := service.NewEstablishmentService(conn)
	accountService := service.NewAccountService(accountRepo, cfg.JWT.Secret, cfg.JWT.SessionExpiry)
	adminService := service.NewAdminService(adminRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, establishmentRepo)
	galleryService := service.NewGalleryService(galleryRepo, establishmentRepo)
	otpService := service.NewOTPService(otpStore, dispatcher, cfg.OTP.TTL)
	announcementService := service.NewAnnouncementService(accountRepo, dispatcher)

	// Initialize controllers
	uploader := controller.NewUploader(store, cfg.Storage.MaxUpload)
	secureCookies := cfg.Server.Environment == "production"

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, adminService, cfg.Auth.RequireAdminToken)
	otpLimiter := middleware.NewRateLimiter(cfg.OTP.RateLimitPerIP, cfg.OTP.RateWindow)
	cleanups = append(cleanups, scheduler.Cleanup{
		Name: "otp_rate_limiters",
		Run:  func() int { return otpLimiter.Cleanup(10 * cfg.OTP.RateWindow) },
	})

	// Background maintenance
	maintenance := scheduler.NewMaintenanceScheduler(ratingService, scheduler.Options{
		ReconcileSpec: cfg.Scheduler.ReconcileSpec,
		CleanupSpec:   cfg.Scheduler.OTPCleanup,
	}, cleanups...)
	if err := maintenance.Start(); err != nil {
		logger.Fatal("Failed to start maintenance scheduler", err)
	}
	defer maintenance.Stop()

	// Setup router
	r := router.NewRouter(
		controller.NewEstablishmentController(establishmentService, uploader),
		controller.NewRatingController(ratingService),
		controller.NewAccountController(accountService, cfg.JWT.SessionExpiry, secureCookies),
		controller.NewAdminController(adminService),
		controller.NewFavoriteController(favoriteService),
		controller.NewGalleryController(galleryService, uploader),
		controller.NewNotificationController(otpService, announcementService),
		controller.NewFeedController(hub, cfg.CORS.AllowedOrigins),
		uploader,
		authMiddleware,
		otpLimiter,
		cfg,
	)
	r.AddHealthCheck("database", func(ctx context.Context) error {
		return db.Ping(ctx, conn)
	})
	if rdb != nil {
		r.AddHealthCheck("redis", func(ctx context.Context) error {
			return appredis.Ping(ctx, rdb)
		})
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shut down", err)
	}
	logger.Info("Server stopped successfully")
}

// newDispatcher prefers RabbitMQ and falls back to the in-process queue
// when the broker is disabled or unreachable.
func newDispatcher(cfg *config.Config, mailer notification.Mailer) notification.Dispatcher {
	if cfg.RabbitMQ.Enabled {
		queue, err := notification.NewAMQPQueue(mailer, notification.AMQPQueueOptions{
			URL:         cfg.RabbitMQ.URL,
			Queue:       cfg.RabbitMQ.EmailQueue,
			Prefetch:    cfg.RabbitMQ.Prefetch,
			MaxAttempts: cfg.RabbitMQ.MaxAttempts,
		})
		if err == nil {
			return queue
		}
		logger.Error("Failed to connect to RabbitMQ, using in-process email queue", err)
	}
	return notification.NewLocalQueue(mailer, notification.LocalQueueOptions{
		Workers:     cfg.SMTP.Workers,
		MaxAttempts: cfg.RabbitMQ.MaxAttempts,
	})
}
