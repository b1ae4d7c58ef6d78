// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Client   *mongo.Client
	Users    *mongo.Collection
	Thoughts *mongo.Collection

	transactions bool
}

// MongoOptions configures NewMongoDB.
type MongoOptions struct {
	URI            string
	Database       string
	Transactions   bool
	ConnectTimeout time.Duration
}

func NewMongoDB(ctx context.Context, opts MongoOptions) (*MongoDB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	clientOpts := options.Client().ApplyURI(opts.URI).SetServerAPIOptions(serverAPI)

	timeout := opts.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info().Str("database", opts.Database).Bool("transactions", opts.Transactions).Msg("Connected to MongoDB")

	db := client.Database(opts.Database)
	return &MongoDB{
		Client:       client,
		Users:        db.Collection("users"),
		Thoughts:     db.Collection("thoughts"),
		transactions: opts.Transactions,
	}, nil
}

// EnsureIndexes creates the unique username/email indexes the uniqueness
// rule depends on, and the username index used by the cascades.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := m.Users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "friends", Value: 1}}},
	})
	if err != nil {
		return errors.Wrap(err, "create user indexes")
	}

	_, err = m.Thoughts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "username", Value: 1}},
	})
	if err != nil {
		return errors.Wrap(err, "create thought indexes")
	}
	return nil
}

func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

func (m *MongoDB) Close(ctx context.Context) error {
	log.Info().Msg("Closing MongoDB connection")
	return m.Client.Disconnect(ctx)
}

func (m *MongoDB) SupportsTransactions() bool {
	return m.transactions
}

// WithTransaction runs fn inside a session transaction when transactions are
// enabled. The driver retries fn on transient transaction errors, so fn must
// be safe to run more than once.
func (m *MongoDB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !m.transactions {
		return fn(ctx)
	}

	session, err := m.Client.StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

var _ Store = (*MongoDB)(nil)
