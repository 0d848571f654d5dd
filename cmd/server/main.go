package main

import (
	"alcyxob/weekly-routines/internal/api"
	"alcyxob/weekly-routines/internal/config"
	"alcyxob/weekly-routines/internal/logger"
	"alcyxob/weekly-routines/internal/service"
	"alcyxob/weekly-routines/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// @title Weekly Routines API
// @version 1.0
// @description Workout routines and the weekly schedule they are assigned to.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("FATAL: Could not build logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck
	zlog.Info("starting weekly routines server",
		zap.String("driver", cfg.Database.Driver),
		zap.String("address", cfg.Server.Address))

	// --- Database ---
	db, err := openStores(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("could not open store", zap.Error(err))
	}
	defer db.close()

	// --- Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Enabled() {
		fileStorage, err = storage.NewS3Storage(context.Background(), cfg.S3, zlog)
		if err != nil {
			zlog.Fatal("failed to initialize S3 storage", zap.Error(err))
		}
	} else {
		zlog.Info("no export bucket configured, exports are disabled")
	}

	// --- Services ---
	authService := service.NewAuthService(db.users, cfg.JWT.Secret, cfg.JWT.Expiration)
	routineService := service.NewRoutineService(db.routines, zlog)
	scheduleService := service.NewScheduleService(db.schedule, routineService, zlog)
	routineService.RegisterDeletionHook(scheduleService)
	exportService := service.NewExportService(routineService, scheduleService, fileStorage, cfg.Export.URLExpiry, zlog)

	// --- Gin Engine ---
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, api.RouterOptions{
		Logger:         zlog.Named("http"),
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, api.Services{
		Auth:     authService,
		Routines: routineService,
		Schedule: scheduleService,
		Export:   exportService,
		Users:    db.users,
		Pinger:   db.pinger,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("ListenAndServe failed", zap.Error(err))
		}
	}()
	zlog.Info("server listening", zap.String("address", cfg.Server.Address))

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("server exiting")
}
