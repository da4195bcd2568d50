/*
Package main is the entry point for the Beacon presence and chat server.

It is responsible for loading configuration, initializing the global logging
system, opening the user store, setting up the HTTP server with its WebSocket
endpoint, and gracefully handling operating system interrupt signals (SIGINT,
SIGTERM) to ensure a smooth shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"beacon/internal/app/chat"
	"beacon/internal/app/db"
	"beacon/internal/app/storage"
	"beacon/internal/app/user"
	"beacon/internal/configs"
	"beacon/internal/handler"
	"beacon/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.Environment == "development")
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("store_backend", cfg.StoreBackend).
		Str("avatar_backend", cfg.AvatarBackend).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the user store
	store, cleanup, err := openStore(cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open user store")
	}
	defer cleanup()

	// Open the avatar storage backend
	avatars, err := storage.NewAvatarStore(cfg)
	if err != nil {
		logx.Fatal(err, "Failed to initialize avatar storage")
	}

	// Presence registry and broadcaster
	hub := chat.NewHub()

	// Setup HTTP server and routes
	deps := &handler.AppDeps{
		Hub:     hub,
		Store:   store,
		Avatars: avatars,
		Config:  cfg,
	}
	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Beacon Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}

// openStore constructs the configured user store backend. The returned cleanup
// releases backend resources on shutdown.
func openStore(cfg *configs.AppConfig) (user.Store, func(), error) {
	switch cfg.StoreBackend {
	case configs.StoreBackendPostgres:
		pool, err := db.NewPool(cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		return user.NewPGStore(pool), pool.Close, nil

	default:
		fileStore := user.NewFileStore(cfg.UsersFile)
		if err := fileStore.Load(); err != nil {
			return nil, nil, err
		}
		return fileStore, func() {}, nil
	}
}
