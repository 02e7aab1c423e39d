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
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"hrms-platform/internal/config"
	"hrms-platform/internal/gateway"
	"hrms-platform/internal/middleware"
	"hrms-platform/internal/obs"
)

func main() {
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load("gateway", "8080")
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs.Init()
	gw := gateway.New(cfg, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORS())
	router.Use(obs.Instrument())

	router.GET("/health", gw.Health())
	router.GET("/metrics", obs.MetricsHandler())

	// Everything else is proxied to the backends
	router.NoRoute(gw.Proxy())

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		logger.WithField("port", cfg.Port).Info("gateway started")
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
}
