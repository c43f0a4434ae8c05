package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"webhook-proxy/internal/common/errors"
	"webhook-proxy/internal/common/logging"
	"webhook-proxy/internal/config"
)

// Version is reported in startup logs.
const Version = "1.0.0"

// Run is the main entry point for the application
func Run() error {
	// Load environment variables
	_ = godotenv.Load()

	cfg := config.Load()

	// Initialize logging
	logCloser, err := logging.InitGlobalLogger(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		MaxSizeMB:  10,
		MaxBackups: 5,
		JSON:       cfg.LogFormat == "json",
	})
	if err != nil {
		return err
	}
	defer logCloser.Close()
	defer logging.MustSync()

	logging.Info("Starting webhook proxy", logging.String("version", Version))

	// Resolve credentials and validate configuration
	if err := cfg.ResolveCredentials(); err != nil {
		logging.Error("Failed to load service account credentials", err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		logging.Error("Configuration validation failed", err)
		return err
	}

	// Initialize application
	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}
	defer app.Cleanup()

	// Start server
	srv := app.RunServer()
	if err := srv.Start(); err != nil {
		logging.Error("Server failed to start", err)
		return err
	}

	logging.Info("Server listening",
		logging.String("addr", srv.Addr()),
		logging.String("webhook", "POST /generic-webhook-endpoint"),
	)

	// Wait for interrupt signal or a fatal serve error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logging.Info("Shutting down server...", logging.String("signal", sig.String()))
	case err := <-srv.Errors():
		logging.Error("Server stopped unexpectedly", err)
		return errors.InternalError("http server stopped unexpectedly", err)
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", err)
		return err
	}

	logging.Info("Server exited")
	return nil
}
