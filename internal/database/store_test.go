package database

import (
	"context"
	"testing"
	"time"

	"netlibrarium/internal/config"
	"netlibrarium/internal/models"
	"netlibrarium/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(username string) *models.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		Thoughts:  []uuid.UUID{},
		Friends:   []uuid.UUID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newTestThought(username, text string) *models.Thought {
	return &models.Thought{
		ID:          uuid.New(),
		ThoughtText: text,
		Username:    username,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
		Reactions:   []models.Reaction{},
	}
}

// runStoreContract exercises the behaviour every Store implementation shares.
func runStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("users round trip and uniqueness", func(t *testing.T) {
		s := newStore(t)
		alice := newTestUser("alice")
		require.NoError(t, s.CreateUser(ctx, alice))

		got, err := s.GetUser(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.Equal(t, 0, got.FriendCount())

		dupName := newTestUser("alice")
		dupName.Email = "other@example.com"
		err = s.CreateUser(ctx, dupName)
		assert.True(t, utils.IsErrorCode(err, utils.ErrUniqueViolation), "got %v", err)

		dupEmail := newTestUser("alicia")
		dupEmail.Email = alice.Email
		err = s.CreateUser(ctx, dupEmail)
		assert.True(t, utils.IsErrorCode(err, utils.ErrUniqueViolation), "got %v", err)

		n, err := s.CountUsers(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = s.GetUser(ctx, uuid.New())
		assert.True(t, utils.IsNotFound(err))
	})

	t.Run("update user", func(t *testing.T) {
		s := newStore(t)
		alice := newTestUser("alice")
		bob := newTestUser("bob")
		require.NoError(t, s.CreateUser(ctx, alice))
		require.NoError(t, s.CreateUser(ctx, bob))

		name := "alice2"
		updated, err := s.UpdateUser(ctx, alice.ID, models.UserPatch{Username: &name})
		require.NoError(t, err)
		assert.Equal(t, "alice2", updated.Username)
		assert.Equal(t, alice.Email, updated.Email)

		taken := "bob"
		_, err = s.UpdateUser(ctx, alice.ID, models.UserPatch{Username: &taken})
		assert.True(t, utils.IsErrorCode(err, utils.ErrUniqueViolation), "got %v", err)

		_, err = s.UpdateUser(ctx, uuid.New(), models.UserPatch{Username: &name})
		assert.True(t, utils.IsNotFound(err))
	})

	t.Run("thought list push and pull by username", func(t *testing.T) {
		s := newStore(t)
		bob := newTestUser("bob")
		require.NoError(t, s.CreateUser(ctx, bob))

		thoughtID := uuid.New()
		matched, err := s.PushUserThought(ctx, "bob", thoughtID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), matched)

		matched, err = s.PushUserThought(ctx, "nobody", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(0), matched)

		got, _ := s.GetUser(ctx, bob.ID)
		assert.Equal(t, []uuid.UUID{thoughtID}, got.Thoughts)

		require.NoError(t, s.PullUserThought(ctx, "bob", thoughtID))
		got, _ = s.GetUser(ctx, bob.ID)
		assert.Empty(t, got.Thoughts)
	})

	t.Run("friends", func(t *testing.T) {
		s := newStore(t)
		a, b, c := newTestUser("aaa"), newTestUser("bbb"), newTestUser("ccc")
		for _, u := range []*models.User{a, b, c} {
			require.NoError(t, s.CreateUser(ctx, u))
		}

		added, err := s.AddFriend(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, added)

		added, err = s.AddFriend(ctx, a.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, added, "second add is refused")

		_, err = s.AddFriend(ctx, c.ID, b.ID)
		require.NoError(t, err)

		got, _ := s.GetUser(ctx, a.ID)
		assert.Equal(t, []uuid.UUID{b.ID}, got.Friends)
		got, _ = s.GetUser(ctx, b.ID)
		assert.Empty(t, got.Friends, "friendship is one-directional")

		modified, err := s.PullFriendEverywhere(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), modified)

		_, _ = s.AddFriend(ctx, a.ID, c.ID)
		user, err := s.RemoveFriend(ctx, a.ID, c.ID)
		require.NoError(t, err)
		assert.Empty(t, user.Friends)

		_, err = s.RemoveFriend(ctx, uuid.New(), c.ID)
		assert.True(t, utils.IsNotFound(err))
	})

	t.Run("thoughts and reactions", func(t *testing.T) {
		s := newStore(t)
		th := newTestThought("bob", "hello")
		require.NoError(t, s.CreateThought(ctx, th))

		reaction := models.Reaction{
			ReactionID:   uuid.New(),
			ReactionBody: "nice!",
			Username:     "carol",
			CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
		}
		updated, err := s.PushReaction(ctx, th.ID, reaction)
		require.NoError(t, err)
		require.Len(t, updated.Reactions, 1)
		assert.Equal(t, reaction.ReactionID, updated.Reactions[0].ReactionID)

		updated, err = s.PullReaction(ctx, th.ID, uuid.New())
		require.NoError(t, err)
		assert.Len(t, updated.Reactions, 1, "unknown reaction id is a no-op")

		updated, err = s.PullReaction(ctx, th.ID, reaction.ReactionID)
		require.NoError(t, err)
		assert.Empty(t, updated.Reactions)

		_, err = s.PushReaction(ctx, uuid.New(), reaction)
		assert.True(t, utils.IsNotFound(err))

		text := "hello again"
		updated, err = s.UpdateThought(ctx, th.ID, models.ThoughtPatch{ThoughtText: &text})
		require.NoError(t, err)
		assert.Equal(t, "hello again", updated.ThoughtText)

		deleted, err := s.DeleteThought(ctx, th.ID)
		require.NoError(t, err)
		assert.Equal(t, th.ID, deleted.ID)

		_, err = s.DeleteThought(ctx, th.ID)
		assert.True(t, utils.IsNotFound(err))
	})

	t.Run("bulk thought operations", func(t *testing.T) {
		s := newStore(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, s.CreateThought(ctx, newTestThought("bob", "t")))
		}
		keep := newTestThought("dave", "mine")
		require.NoError(t, s.CreateThought(ctx, keep))

		renamed, err := s.RenameThoughtAuthor(ctx, "bob", "robert")
		require.NoError(t, err)
		assert.Equal(t, int64(3), renamed)

		deleted, err := s.DeleteThoughtsByUsername(ctx, "robert")
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)

		all, err := s.ListThoughts(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, keep.ID, all[0].ID)

		byID, err := s.GetThoughtsByIDs(ctx, []uuid.UUID{keep.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, byID, 1)
	})

	t.Run("delete user", func(t *testing.T) {
		s := newStore(t)
		u := newTestUser("gone")
		require.NoError(t, s.CreateUser(ctx, u))

		deleted, err := s.DeleteUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "gone", deleted.Username)

		_, err = s.DeleteUser(ctx, u.ID)
		assert.True(t, utils.IsNotFound(err))
	})
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := newTestUser("alice")
	require.NoError(t, s.CreateUser(ctx, u))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	got.Friends = append(got.Friends, uuid.New())

	again, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Friends)
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(context.Background(), &config.DatabaseConfig{Type: config.DatabaseMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	assert.False(t, s.SupportsTransactions())
}

func TestOpenUnknownType(t *testing.T) {
	_, err := Open(context.Background(), &config.DatabaseConfig{Type: "sqlite"})
	assert.Error(t, err)
}
