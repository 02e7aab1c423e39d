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

	cfg := config.Load("auth-service", "8081")
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	if err := db.AutoMigrate(&models.User{}, &models.AuditLog{}); err != nil {
		logger.WithError(err).Fatal("failed to migrate database")
	}

	users := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

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

	authHandler := handlers.NewAuthHandler(users, tokens, publisher, logger)
	auditHandler := handlers.NewAuditHandler(auditRepo, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler(logger))

	router.GET("/health", handlers.HealthCheck(cfg.ServiceName))
	router.GET("/ready", handlers.ReadinessCheck(cfg.ServiceName))

	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)

	authed := router.Group("/")
	authed.Use(authenticator.Require())
	{
		authed.GET("/me", authHandler.Me)

		authed.GET("/users",
			middleware.RequireRoles(models.RoleAdmin, models.RoleHR),
			authHandler.ListUsers)
		authed.PUT("/users/:id/approval",
			middleware.RequireRoles(models.RoleAdmin),
			recorder.Capture(audit.EntityUser, models.AuditActionUpdate,
				middleware.WithSnapshot(userSnapshot(users))),
			authHandler.SetApproval)
		authed.PUT("/users/:id/deactivate",
			middleware.RequireRoles(models.RoleAdmin),
			recorder.Capture(audit.EntityUser, models.AuditActionUpdate,
				middleware.WithSnapshot(userSnapshot(users))),
			authHandler.Deactivate)

		authed.GET("/audit-logs",
			middleware.RequireRoles(models.RoleAdmin, models.RoleHR),
			auditHandler.List)
	}
	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "route not found")
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.WithField("port", cfg.Port).Info("auth service started")
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
}

func userSnapshot(users repository.UserRepositoryInterface) middleware.SnapshotLoader {
	return func(ctx context.Context, id string) (interface{}, error) {
		uid, err := uuid.Parse(id)
		if err != nil {
			return nil, nil
		}
		user, err := users.GetByID(ctx, uid)
		if err != nil {
			return nil, err
		}
		return user, nil
	}
}
