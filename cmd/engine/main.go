package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netlibrarium/internal/config"
	"netlibrarium/internal/database"
	"netlibrarium/internal/engine"
	"netlibrarium/internal/engine/actors"
	"netlibrarium/internal/handlers"
	"netlibrarium/internal/utils"
	"netlibrarium/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	utils.SetupLogger(cfg.Log.Level, cfg.Log.Pretty)

	// Connect to the store
	ctx := context.Background()
	store, err := database.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("type", cfg.Database.Type).Msg("Failed to open store")
	}

	// Initialize components
	metrics := utils.NewMetricsCollector()
	hub := websocket.NewHub()
	go hub.Run()

	rules := engine.NewEngine(store, metrics, hub)
	if cfg.ReconcileOnStart {
		if _, err := rules.Reconcile(ctx); err != nil {
			log.Error().Err(err).Msg("Startup reconciliation failed")
		}
	}

	// Initialize actor system
	system := actor.NewActorSystem()
	client := actors.Spawn(system, rules, cfg.Server.RequestTimeout)

	server := handlers.NewServer(client, metrics, hub)
	server.AllowedOrigins = cfg.AllowedOrigins
	server.MetricsEnabled = cfg.Server.MetricsEnabled
	server.RequestTimeout = cfg.Server.RequestTimeout

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("store", cfg.Database.Type).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()
	system.Shutdown()
	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close store")
	}

	log.Info().Msg("Server exited")
}
