package actors

import (
	stdctx "context"

	"netlibrarium/internal/engine"

	"github.com/google/uuid"
)

// Request is a message the Supervisor accepts. Each request knows which
// engine operation it runs.
type Request interface {
	run(ctx stdctx.Context, e *engine.Engine) (interface{}, error)
}

// User messages
type (
	CreateUserMsg struct {
		Input engine.CreateUserInput
	}

	GetUserMsg struct {
		UserID uuid.UUID
	}

	ListUsersMsg struct{}

	UpdateUserMsg struct {
		UserID uuid.UUID
		Input  engine.UpdateUserInput
	}

	DeleteUserMsg struct {
		UserID uuid.UUID
	}

	AddFriendMsg struct {
		UserID   uuid.UUID
		FriendID uuid.UUID
	}

	RemoveFriendMsg struct {
		UserID   uuid.UUID
		FriendID uuid.UUID
	}
)

// Thought and reaction messages
type (
	CreateThoughtMsg struct {
		Input engine.CreateThoughtInput
	}

	GetThoughtMsg struct {
		ThoughtID uuid.UUID
	}

	ListThoughtsMsg struct{}

	UpdateThoughtMsg struct {
		ThoughtID uuid.UUID
		Input     engine.UpdateThoughtInput
	}

	DeleteThoughtMsg struct {
		ThoughtID uuid.UUID
	}

	AddReactionMsg struct {
		ThoughtID uuid.UUID
		Input     engine.AddReactionInput
	}

	RemoveReactionMsg struct {
		ThoughtID  uuid.UUID
		ReactionID uuid.UUID
	}
)

// Maintenance messages
type (
	// GetCountsMsg pings the store and counts users, for /health.
	GetCountsMsg struct{}

	ReconcileMsg struct{}
)

// Counts answers GetCountsMsg.
type Counts struct {
	Users int64
}

func (m *CreateUserMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.CreateUser(ctx, m.Input)
}

func (m *GetUserMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.GetUser(ctx, m.UserID)
}

func (m *ListUsersMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.ListUsers(ctx)
}

func (m *UpdateUserMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.UpdateUser(ctx, m.UserID, m.Input)
}

func (m *DeleteUserMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.DeleteUser(ctx, m.UserID)
}

func (m *AddFriendMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.AddFriend(ctx, m.UserID, m.FriendID)
}

func (m *RemoveFriendMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.RemoveFriend(ctx, m.UserID, m.FriendID)
}

func (m *CreateThoughtMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.CreateThought(ctx, m.Input)
}

func (m *GetThoughtMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.GetThought(ctx, m.ThoughtID)
}

func (m *ListThoughtsMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.ListThoughts(ctx)
}

func (m *UpdateThoughtMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.UpdateThought(ctx, m.ThoughtID, m.Input)
}

func (m *DeleteThoughtMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.DeleteThought(ctx, m.ThoughtID)
}

func (m *AddReactionMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.AddReaction(ctx, m.ThoughtID, m.Input)
}

func (m *RemoveReactionMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.RemoveReaction(ctx, m.ThoughtID, m.ReactionID)
}

func (m *GetCountsMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	if err := e.Ping(ctx); err != nil {
		return nil, err
	}
	n, err := e.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	return &Counts{Users: n}, nil
}

func (m *ReconcileMsg) run(ctx stdctx.Context, e *engine.Engine) (interface{}, error) {
	return e.Reconcile(ctx)
}
