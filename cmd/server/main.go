package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/config"
	"github.com/GriffinCanCode/phoneshell/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Invalid configuration, using defaults: %v", err)
		cfg = config.Default()
	}

	// Flags override the environment
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Bind address")
	flag.StringVar(&cfg.Bridge.URL, "bridge", cfg.Bridge.URL, "Game client bridge URL (empty disables outbound sync)")
	flag.StringVar(&cfg.Storage.Backend, "storage", cfg.Storage.Backend, "Layout storage backend: file, sqlite or memory")
	flag.StringVar(&cfg.Storage.Path, "data", cfg.Storage.Path, "Layout storage directory")
	flag.StringVar(&cfg.Layout.CatalogDir, "catalog", cfg.Layout.CatalogDir, "Directory of catalog overlay files")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-sigChan:
	case err := <-errChan:
		if err != nil {
			log.Printf("Server error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
		os.Exit(1)
	}
}
