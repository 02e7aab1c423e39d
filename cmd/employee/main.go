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

	cfg := config.Load("employee-service", "8082")
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	if err := db.AutoMigrate(&models.User{}, &models.Employee{}, &models.AuditLog{}); err != nil {
		logger.WithError(err).Fatal("failed to migrate database")
	}

	users := repository.NewUserRepository(db)
	employees := repository.NewEmployeeRepository(db)
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

	employeeHandler := handlers.NewEmployeeHandler(employees, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORS())
	router.Use(middleware.ErrorHandler(logger))

	router.GET("/health", handlers.HealthCheck(cfg.ServiceName))
	router.GET("/ready", handlers.ReadinessCheck(cfg.ServiceName))

	authed := router.Group("/employees")
	authed.Use(authenticator.Require())
	{
		authed.GET("",
			middleware.RequireRoles(models.RoleAdmin, models.RoleHR),
			employeeHandler.List)
		// An employee record is owned by the employee it describes
		authed.GET("/:id",
			middleware.RequireOwnership("id", employeeOwner(employees)),
			employeeHandler.Get)
		authed.POST("",
			middleware.RequireRoles(models.RoleAdmin, models.RoleHR),
			recorder.Capture(audit.EntityEmployee, models.AuditActionCreate),
			employeeHandler.Create)
		authed.PUT("/:id",
			middleware.RequireRoles(models.RoleAdmin, models.RoleHR),
			recorder.Capture(audit.EntityEmployee, models.AuditActionUpdate,
				middleware.WithSnapshot(employeeSnapshot(employees))),
			employeeHandler.Update)
		authed.DELETE("/:id",
			middleware.RequireRoles(models.RoleAdmin, models.RoleHR),
			recorder.Capture(audit.EntityEmployee, models.AuditActionDelete,
				middleware.WithSnapshot(employeeSnapshot(employees))),
			employeeHandler.Delete)
	}
	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "route not found")
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.WithField("port", cfg.Port).Info("employee service started")
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

func employeeOwner(employees repository.EmployeeRepositoryInterface) middleware.OwnerResolver {
	return func(ctx context.Context, resourceID uuid.UUID) (uuid.UUID, error) {
		employee, err := employees.GetByID(ctx, resourceID)
		if err != nil {
			return uuid.Nil, err
		}
		return employee.ID, nil
	}
}

func employeeSnapshot(employees repository.EmployeeRepositoryInterface) middleware.SnapshotLoader {
	return func(ctx context.Context, id string) (interface{}, error) {
		uid, err := uuid.Parse(id)
		if err != nil {
			return nil, nil
		}
		employee, err := employees.GetByID(ctx, uid)
		if err != nil {
			return nil, err
		}
		return employee, nil
	}
}
