package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/P3chys/classroom-api/internal/config"
	"github.com/P3chys/classroom-api/internal/database"
	"github.com/P3chys/classroom-api/internal/logger"
	"github.com/P3chys/classroom-api/internal/middleware"
	"github.com/P3chys/classroom-api/internal/router"
	"github.com/P3chys/classroom-api/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if envErr != nil {
		log.Info("No .env file found")
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}

	if err := database.RunMigrations(db, log); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	ctx := context.Background()
	store, err := services.NewObjectStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize object storage", "backend", cfg.StorageBackend, "error", err)
	}

	limiter, err := middleware.NewRateLimiter(cfg.RedisURL)
	if err != nil {
		log.Warn("Rate limiting disabled", "error", err)
		limiter = nil
	} else {
		defer limiter.Close()
	}

	r := router.Setup(router.Deps{
		DB:        db,
		Config:    cfg,
		Log:       log,
		Store:     store,
		Search:    services.NewSearchService(cfg, log),
		Extractor: services.NewTextExtractionService(cfg),
		Limiter:   limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
}
