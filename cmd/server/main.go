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
	"github.com/sirupsen/logrus"

	"bus_tracker/internal/config"
	"bus_tracker/internal/logger"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/repository"
	"bus_tracker/internal/routes"
	"bus_tracker/internal/services"
	"bus_tracker/internal/storage"
)

func main() {
	cfg := config.Load()

	// Initialize structured logging to file
	logWriter := logger.Setup(cfg.LogFile, cfg.LogLevel)
	gin.SetMode(getGinMode())

	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("database initialization failed")
	}
	store := repository.New(db)
	svc := services.New(store)

	created, err := svc.Users.EnsureDefaultAdmin(context.Background(), cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		logrus.WithError(err).Fatal("could not seed admin account")
	}
	if created && cfg.AdminPassword == config.DefaultAdminPassword {
		logrus.Warn("default admin uses the built-in password; set ADMIN_PASSWORD")
	}

	deps := routes.Deps{
		Services:    svc,
		Tokens:      middleware.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   logWriter,
	}
	if cfg.S3Bucket != "" {
		s3, err := storage.NewS3Store(cfg.AWSRegion, cfg.S3Bucket, cfg.UploadMaxBytes)
		if err != nil {
			logrus.WithError(err).Fatal("S3 storage initialization failed")
		}
		deps.Images = s3
		logrus.WithField("bucket", cfg.S3Bucket).Info("storing uploads in S3")
	} else {
		local, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadBaseURL, cfg.UploadMaxBytes)
		if err != nil {
			logrus.WithError(err).Fatal("upload directory initialization failed")
		}
		deps.Images = local
		deps.Local = local
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logrus.Info("server exited")
}

func getGinMode() string {
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		return mode
	}
	return gin.ReleaseMode
}
