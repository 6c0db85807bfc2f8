package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/avergnaud/atelier/internal/api"
	"github.com/avergnaud/atelier/internal/config"
	"github.com/avergnaud/atelier/internal/content"
	"github.com/avergnaud/atelier/internal/publish"
	"github.com/avergnaud/atelier/internal/store"
)

func main() {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database.
	db, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Error("database open failed", "error", err)
		os.Exit(1)
	}
	if err := store.Migrate(db); err != nil {
		log.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	// Content engine and community repositories.
	svc := content.NewService(store.NewContentStore(db), content.BasicValidator{}, log)
	community := store.NewCommunityStore(db)

	// Publication pipeline.
	publisher := publish.NewPublisher(cfg, svc, log)
	publisher.Start(ctx)

	// HTTP server.
	srv := api.NewServer(svc, community, publisher, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		publisher.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting atelier", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
