package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"webhook-fanout/internal/common/logging"
	"webhook-fanout/internal/config"
	"webhook-fanout/internal/server"
)

// Run is the main entry point for the application
func Run() error {
	// Load environment variables
	_ = godotenv.Load()

	cfg := config.Load()

	syncLogs, err := logging.InitGlobalLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer syncLogs()

	logging.Info("Starting webhook fan-out",
		logging.String("port", cfg.Port),
		logging.String("store", cfg.StoreType),
	)

	if err := cfg.Validate(); err != nil {
		logging.Error("Configuration validation failed", err)
		return err
	}

	app, err := New(cfg)
	if err != nil {
		logging.Error("Failed to initialize application", err)
		return err
	}

	if err := app.Start(); err != nil {
		logging.Error("Failed to start background tasks", err)
		app.Shutdown(context.Background())
		return err
	}

	srv := server.New(app.Router(), cfg.Port)
	if err := srv.Start(); err != nil {
		logging.Error("Server failed to start", err)
		app.Shutdown(context.Background())
		return err
	}

	// Wait for interrupt signal or a server failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-quit:
		logging.Info("Shutting down", logging.String("signal", sig.String()))
	case serveErr = <-srv.Errors():
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeoutDuration())
	defer cancel()

	// Stop taking requests before draining forwards
	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", err)
	}

	if err := app.Shutdown(ctx); err != nil {
		logging.Warn("Error during app shutdown", logging.Err(err))
	}

	logging.Info("Server exited")
	return serveErr
}
