package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taka/config"
	"taka/internal/database"
	"taka/internal/logger"
	"taka/internal/router"
	"taka/pkg/cloudinary"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.LogLevel, cfg.Server.Env)

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db)

	var cloud cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		cloud, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			logger.Log.Fatalf("cloudinary: %v", err)
		}
	}

	engine, syncSvc := router.Setup(cfg, db, cloud)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	syncSvc.Start(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Log.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatalf("server shutdown: %v", err)
	}
	logger.Log.Info("server stopped")
}
