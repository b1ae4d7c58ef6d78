package database

import (
	"context"

	"netlibrarium/internal/models"

	"github.com/google/uuid"
)

// Store is the entity store contract the consistency rules are written
// against. Every method is atomic for the single document it touches; the
// *Everywhere and *ByUsername methods touch many documents, each update
// atomic on its own. Nothing is atomic across calls unless it runs inside
// WithTransaction on a store that supports transactions.
//
// Missing documents are reported as AppErrors with a not-found code and
// unique index violations as ErrUniqueViolation. Anything else is an
// unexpected store failure.
type Store interface {
	// Lifecycle
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	// WithTransaction runs fn so that all store calls made with the context it
	// receives commit or abort together. Stores without transaction support,
	// or with it disabled, simply call fn.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	SupportsTransactions() bool

	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	// User thought list, addressed by username. PushUserThought returns the
	// number of users matched, which is zero when nobody has that username.
	PushUserThought(ctx context.Context, username string, thoughtID uuid.UUID) (int64, error)
	PullUserThought(ctx context.Context, username string, thoughtID uuid.UUID) error

	// Friends. AddFriend appends friendID unless already present and
	// reports whether it did; it does not check that userID exists.
	AddFriend(ctx context.Context, userID, friendID uuid.UUID) (bool, error)
	RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) (*models.User, error)
	PullFriendEverywhere(ctx context.Context, friendID uuid.UUID) (int64, error)

	// Reconciliation
	SetUserThoughts(ctx context.Context, id uuid.UUID, thoughtIDs []uuid.UUID) error
	SetUserFriends(ctx context.Context, id uuid.UUID, friendIDs []uuid.UUID) error

	// Thoughts
	CreateThought(ctx context.Context, thought *models.Thought) error
	GetThought(ctx context.Context, id uuid.UUID) (*models.Thought, error)
	GetThoughtsByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Thought, error)
	ListThoughts(ctx context.Context) ([]*models.Thought, error)
	UpdateThought(ctx context.Context, id uuid.UUID, patch models.ThoughtPatch) (*models.Thought, error)
	DeleteThought(ctx context.Context, id uuid.UUID) (*models.Thought, error)
	DeleteThoughtsByUsername(ctx context.Context, username string) (int64, error)
	RenameThoughtAuthor(ctx context.Context, oldUsername, newUsername string) (int64, error)

	// Reactions, embedded in their thought. PullReaction with an unknown
	// reactionID leaves the thought unchanged and is not an error.
	PushReaction(ctx context.Context, thoughtID uuid.UUID, reaction models.Reaction) (*models.Thought, error)
	PullReaction(ctx context.Context, thoughtID, reactionID uuid.UUID) (*models.Thought, error)
}
