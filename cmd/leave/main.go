package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"hrms-platform/internal/audit"
	"hrms-platform/internal/cache"
	"hrms-platform/internal/config"
	"hrms-platform/internal/events"
	"hrms-platform/internal/handlers"
	"hrms-platform/internal/middleware"
	"hrms-platform/internal/models"
	"hrms-platform/internal/repository"
	"hrms-platform/internal/response"
	"hrms-platform/internal/token"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load("leave-service", "8083")
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	if err := db.AutoMigrate(&models.User{}, &models.Employee{}, &models.LeaveRequest{}, &models.AuditLog{}); err != nil {
		logger.WithError(err).Fatal("failed to migrate database")
	}

	users := repository.NewUserRepository(db)
	leaves := repository.NewLeaveRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	ownerCache, err := cache.NewOwnershipCache(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	if err != nil {
		logger.WithError(err).Warn("ownership cache unavailable")
	}
	if ownerCache != nil && !ownerCache.IsAvailable() {
		logger.Warn("redis unreachable, ownership lookups go to the database")
	}

	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.NewPublisher(cfg.NATSURL, cfg.ServiceName, logger)
		if err != nil {
			logger.WithError(err).Warn("NATS unavailable, events disabled")
			publisher = nil
		}
	}

	worker := audit.NewWorker(auditRepo, publisher, cfg.AuditQueueSize, logger)
	worker.Start()

	tokens := token.NewService(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := middleware.NewAuthenticator(tokens, users, logger)
	recorder := middleware.NewAuditRecorder(worker, logger)

	leaveHandler := handlers.NewLeaveHandler(leaves, logger)
	leaveOwner := middleware.CachedOwnerResolver("leaves", ownerCache, leaves.OwnerOf)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler(logger))

	router.GET("/health", handlers.HealthCheck(cfg.ServiceName))
	router.GET("/ready", handlers.ReadinessCheck(cfg.ServiceName))

	authed := router.Group("/leaves")
	authed.Use(authenticator.Require())
	{
		authed.POST("",
			recorder.Capture(audit.EntityLeave, models.AuditActionCreate),
			leaveHandler.Create)
		authed.GET("/mine", leaveHandler.ListMine)
		authed.GET("",
			middleware.RequireRoles(models.RoleAdmin, models.RoleHR),
			leaveHandler.List)
		authed.GET("/:id",
			middleware.RequireOwnership("id", leaveOwner),
			leaveHandler.Get)
		authed.PUT("/:id/decision",
			middleware.RequireRoles(models.RoleAdmin, models.RoleHR),
			recorder.Capture(audit.EntityLeave, models.AuditActionUpdate,
				middleware.WithSnapshot(leaveSnapshot(leaves))),
			leaveHandler.Decide)
	}
	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "route not found")
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.WithField("port", cfg.Port).Info("leave service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("forced shutdown")
	}
	worker.Stop()
	publisher.Close()
	if ownerCache != nil {
		_ = ownerCache.Close()
	}
}

func leaveSnapshot(leaves repository.LeaveRepositoryInterface) middleware.SnapshotLoader {
	return func(ctx context.Context, id string) (interface{}, error) {
		uid, err := uuid.Parse(id)
		if err != nil {
			return nil, nil
		}
		leave, err := leaves.GetByID(ctx, uid)
		if err != nil {
			return nil, err
		}
		return leave, nil
	}
}
