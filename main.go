package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"whosoever-apparel/app"
	"whosoever-apparel/config"
	"whosoever-apparel/logger"
)

func main() {
	// Load .env file in development (ignores error if file doesn't exist)
	// In production, variables should be set directly
	var envLoadErr error
	if os.Getenv("APP_ENV") != "production" && os.Getenv("ENV") != "production" {
		// Use Overload to ensure .env values override system environment variables
		envLoadErr = godotenv.Overload(".env")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	mode := "development"
	if cfg.IsProduction() {
		mode = "production"
	}
	log, err := logger.New(mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if envLoadErr != nil {
		log.Warn("⚠️  .env file not loaded, using system environment variables", "error", envLoadErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize application
	application, err := app.Initialize(ctx, cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize application", "error", err)
	}
	defer application.Close()

	// Listen on 0.0.0.0 to accept connections from all interfaces (required for Docker)
	addr := "0.0.0.0:" + cfg.Port
	server := app.NewServer(addr, application.Handler)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info("🚀 Server starting", "addr", addr, "rasterizer", cfg.Rasterizer)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("❌ Server failed", "error", err)
	}
	log.Info("👋 Server stopped")
}
