package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/api"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/config"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/core"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/factory"
	"github.com/hasirciogluhq/xhttpd/cmd/xhttpd/internal/logger"
)

func main() {
	ctx := context.Background()

	// Load configuration from file, environment and flags
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitWithOptions(logger.Options{
		Debug:  cfg.Debug,
		Format: string(cfg.LogFormat),
	})
	logger.Info("Starting xhttpd...",
		"mode", cfg.Mode,
		"address", cfg.BindAddress,
		"port", cfg.Port)

	// Start health server (optional)
	var healthServer *api.HealthServer
	if cfg.HealthServerPort != "" {
		healthServer = api.NewHealthServer(":" + cfg.HealthServerPort)
		healthServer.Start()
		logger.Info("Health server started", "port", cfg.HealthServerPort)
	}

	// Create connection handler
	connectionHandler, err := factory.NewHandlerFactory(cfg).Create()
	if err != nil {
		logger.Fatal("Failed to create connection handler", "error", err)
	}

	// Bind the listening socket
	listener, err := factory.NewListenerFactory(cfg).Create(ctx)
	if err != nil {
		logger.Fatal("Failed to start listener", "address", cfg.BindAddress, "port", cfg.Port, "error", err)
	}
	logger.Info("Listening", "addr", listener.Addr().String())

	server := &core.Server{
		Listener:          listener,
		ConnectionHandler: connectionHandler,
	}

	// Mark as ready
	if healthServer != nil {
		healthServer.MarkReady(listener.Addr().String())
	}
	logger.Info("Server is ready to accept connections")

	go handleSignals(listener.Close, healthServer)

	// Start serving (blocking)
	if err := server.Serve(); err != nil {
		logger.Fatal("Server error", "error", err)
	}
	logger.Info("Server stopped")
}

// handleSignals stops accepting on SIGINT or SIGTERM. Connections already
// being served are not interrupted.
func handleSignals(closeListener func() error, healthServer *api.HealthServer) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("Shutting down", "signal", sig.String())

	if healthServer != nil {
		healthServer.MarkNotReady()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := healthServer.Stop(ctx); err != nil {
			logger.Warn("Health server shutdown failed", "error", err)
		}
	}

	if err := closeListener(); err != nil {
		logger.Warn("Failed to close listener", "error", err)
	}
}
