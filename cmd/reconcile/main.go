// Command reconcile runs one reconciliation pass over the configured store
// and prints the report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"netlibrarium/internal/config"
	"netlibrarium/internal/database"
	"netlibrarium/internal/engine"
	"netlibrarium/internal/utils"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "Upper bound for the whole pass")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	utils.SetupLogger(cfg.Log.Level, cfg.Log.Pretty)

	if err := run(cfg, *timeout); err != nil {
		log.Error().Err(err).Msg("Reconciliation failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	store, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return errors.Wrap(err, "open store")
	}
	defer store.Close(context.Background())

	report, err := engine.NewEngine(store, nil, nil).Reconcile(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
