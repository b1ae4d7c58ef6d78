package database

import (
	"context"
	"fmt"

	"netlibrarium/internal/config"

	"github.com/rs/zerolog/log"
)

// Open builds the store cfg selects. A MongoDB store is connected and has
// its indexes in place before it is returned.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (Store, error) {
	switch cfg.Type {
	case config.DatabaseMemory:
		log.Warn().Msg("Using in-memory store; data is lost on exit")
		return NewMemoryStore(), nil

	case config.DatabaseMongo:
		db, err := NewMongoDB(ctx, MongoOptions{
			URI:            cfg.URI,
			Database:       cfg.Name,
			Transactions:   cfg.Transactions,
			ConnectTimeout: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		if err := db.EnsureIndexes(ctx); err != nil {
			_ = db.Close(context.Background())
			return nil, err
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.Type)
	}
}
