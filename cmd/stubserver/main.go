package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Yui-Editor/studio/internal/config"
	"Yui-Editor/studio/internal/interfaces"
	"Yui-Editor/studio/internal/storage"
	"Yui-Editor/studio/internal/web"
)

func openStore(cfg config.StoreConfig) (interfaces.StoryStore, error) {
	switch cfg.Driver {
	case config.StoreRedis:
		s, err := storage.NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreMySQL:
		s, err := storage.NewMySQLStore(cfg.MySQL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StoreMemory, "":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := cfg.Logging.NewLogger()

	// Initialize storage
	store, err := openStore(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer store.Close()
	logger.Printf("%s store ready", cfg.Store.Driver)

	handlers := web.NewHandlers(store, logger)
	if cfg.Server.DataDir != "" {
		files, err := storage.NewFileStore(cfg.Server.DataDir)
		if err != nil {
			log.Fatalf("Failed to prepare data directory: %v", err)
		}
		handlers.WithFiles(files)
		logger.Printf("Keeping uploads under %s", cfg.Server.DataDir)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      web.NewRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in background
	go func() {
		logger.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Server shutting down...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("Server shutdown error: %v", err)
	}

	logger.Printf("Server stopped after %d requests", handlers.Requests())
}
