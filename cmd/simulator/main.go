package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netlibrarium/internal/utils"
	"netlibrarium/simulator"

	"github.com/rs/zerolog/log"
)

func main() {
	config := simulator.DefaultSimConfig()

	flag.StringVar(&config.EngineURL, "url", config.EngineURL, "Base URL of the server")
	flag.IntVar(&config.NumUsers, "users", config.NumUsers, "Number of simulated users")
	flag.DurationVar(&config.SimulationTime, "duration", config.SimulationTime, "How long to run")
	flag.Float64Var(&config.ThoughtFrequency, "thoughts", config.ThoughtFrequency, "Thoughts per user per hour")
	flag.Float64Var(&config.ReactionFrequency, "reactions", config.ReactionFrequency, "Reactions per user per hour")
	flag.Float64Var(&config.UnreactFrequency, "unreacts", config.UnreactFrequency, "Reaction removals per user per hour")
	flag.Float64Var(&config.FriendFrequency, "friends", config.FriendFrequency, "Friend adds per user per hour")
	flag.Float64Var(&config.DeleteFrequency, "deletes", config.DeleteFrequency, "Thought deletes per user per hour")
	flag.Float64Var(&config.ZipfS, "zipf", config.ZipfS, "Zipf parameter for user popularity (> 1)")
	flag.IntVar(&config.Workers, "workers", config.Workers, "Concurrent request workers")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	utils.SetupLogger(*logLevel, true)

	ctx, cancel := context.WithTimeout(context.Background(), config.SimulationTime)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("url", config.EngineURL).
		Int("users", config.NumUsers).
		Dur("duration", config.SimulationTime).
		Float64("zipf", config.ZipfS).
		Msg("Starting simulation")

	sim := simulator.NewSimulator(config)
	start := time.Now()
	if err := sim.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("Simulation failed")
	}

	m := sim.GetMetrics()
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("users", m.TotalUsers).
		Int64("requests", m.TotalRequests).
		Float64("req_per_sec", m.RequestsPerSecond).
		Dur("avg_latency", m.AverageLatency).
		Int("thoughts_created", m.ThoughtsCreated).
		Int("thoughts_deleted", m.ThoughtsDeleted).
		Int("reactions_added", m.ReactionsAdded).
		Int("reactions_removed", m.ReactionsRemoved).
		Int("friends_added", m.FriendsAdded).
		Int("conflicts", m.Conflicts).
		Int("errors", m.ErrorCount).
		Msg("Simulation completed")
}
