package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"netlibrarium/internal/database"
	"netlibrarium/internal/models"
	"netlibrarium/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *eventRecorder) Publish(event models.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) types() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type testEnv struct {
	engine  *Engine
	store   *database.MemoryStore
	metrics *utils.MetricsCollector
	events  *eventRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := database.NewMemoryStore()
	metrics := utils.NewMetricsCollector()
	events := &eventRecorder{}
	return &testEnv{
		engine:  NewEngine(store, metrics, events),
		store:   store,
		metrics: metrics,
		events:  events,
	}
}

func (env *testEnv) user(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := env.engine.CreateUser(context.Background(), CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return u
}

func (env *testEnv) thought(t *testing.T, username, text string) *models.Thought {
	t.Helper()
	th, err := env.engine.CreateThought(context.Background(), CreateThoughtInput{
		ThoughtText: text,
		Username:    username,
	})
	require.NoError(t, err)
	return th
}

func cascadeFailures(t *testing.T, mc *utils.MetricsCollector, step string) float64 {
	t.Helper()
	families, err := mc.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "netlibrarium_cascade_step_failures_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "step" && l.GetValue() == step {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestCreateUserRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.engine.CreateUser(ctx, CreateUserInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	profile, err := env.engine.GetUser(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.User.Username)
	assert.Equal(t, "alice@example.com", profile.User.Email)
	assert.Equal(t, 0, profile.User.FriendCount())
	assert.Empty(t, profile.Thoughts)
	assert.Empty(t, profile.Friends)
}

func TestCreateUserNormalizes(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.engine.CreateUser(context.Background(), CreateUserInput{Username: "  alice ", Email: " Alice@Example.COM "})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "alice@example.com", u.Email)
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateUserInput
	}{
		{"username too short", CreateUserInput{Username: "al", Email: "al@example.com"}},
		{"username too long", CreateUserInput{Username: strings.Repeat("a", 51), Email: "a@example.com"}},
		{"missing username", CreateUserInput{Email: "a@example.com"}},
		{"bad email", CreateUserInput{Username: "alice", Email: "not-an-email"}},
		{"missing email", CreateUserInput{Username: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engine.CreateUser(ctx, tt.input)
			require.Error(t, err)
			assert.True(t, utils.IsErrorCode(err, utils.ErrValidation), "got %v", err)
		})
	}

	n, err := env.engine.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCreateUserDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.user(t, "alice")

	_, err := env.engine.CreateUser(context.Background(), CreateUserInput{Username: "alice", Email: "other@example.com"})
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUniqueViolation))
	assert.Equal(t, 400, utils.HTTPStatus(err))
}

func TestCreateThoughtAppendsToAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")

	th := env.thought(t, "alice", "first")
	assert.Equal(t, 0, th.ReactionCount())

	got, err := env.store.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{th.ID}, got.Thoughts)
}

func TestCreateThoughtForUnknownUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	th := env.thought(t, "ghost", "nobody home")

	stored, err := env.engine.GetThought(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, "ghost", stored.Username)
	assert.Zero(t, cascadeFailures(t, env.metrics, "push_user_thought"))
}

func TestThoughtTextLength(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice")

	_, err := env.engine.CreateThought(ctx, CreateThoughtInput{ThoughtText: strings.Repeat("x", 281), Username: "alice"})
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation), "got %v", err)

	_, err = env.engine.CreateThought(ctx, CreateThoughtInput{ThoughtText: "", Username: "alice"})
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation), "got %v", err)

	th, err := env.engine.CreateThought(ctx, CreateThoughtInput{ThoughtText: strings.Repeat("x", 280), Username: "alice"})
	require.NoError(t, err)
	assert.Len(t, th.ThoughtText, 280)

	thoughts, err := env.engine.ListThoughts(ctx)
	require.NoError(t, err)
	assert.Len(t, thoughts, 1)
}

func TestDeleteUserCascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")

	env.thought(t, "alice", "one")
	env.thought(t, "alice", "two")
	keep := env.thought(t, "bob", "mine")

	_, err := env.engine.AddFriend(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	_, err = env.engine.AddFriend(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = env.engine.AddFriend(ctx, carol.ID, bob.ID)
	require.NoError(t, err)

	deleted, err := env.engine.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", deleted.Username)

	thoughts, err := env.engine.ListThoughts(ctx)
	require.NoError(t, err)
	require.Len(t, thoughts, 1)
	assert.Equal(t, keep.ID, thoughts[0].ID)

	b, err := env.store.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, b.Friends)

	c, err := env.store.GetUser(ctx, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, c.Friends)

	_, err = env.engine.DeleteUser(ctx, alice.ID)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUserNotFound))
	assert.Equal(t, "No such user exists", utils.PublicMessage(err))
}

func TestDeleteThoughtPullsFromAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	first := env.thought(t, "alice", "one")
	second := env.thought(t, "alice", "two")

	_, err := env.engine.DeleteThought(ctx, first.ID)
	require.NoError(t, err)

	got, err := env.store.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID}, got.Thoughts)

	_, err = env.engine.DeleteThought(ctx, first.ID)
	assert.True(t, utils.IsErrorCode(err, utils.ErrThoughtNotFound))
}

func TestAddFriend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	updated, err := env.engine.AddFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, updated.Friends)
	assert.Equal(t, 1, updated.FriendCount())

	_, err = env.engine.AddFriend(ctx, alice.ID, bob.ID)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrAlreadyFriends))
	assert.Equal(t, 409, utils.HTTPStatus(err))

	got, err := env.store.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, got.Friends)

	// One-directional.
	other, err := env.store.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, other.Friends)
}

func TestAddFriendErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")

	_, err := env.engine.AddFriend(ctx, alice.ID, alice.ID)
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))

	_, err = env.engine.AddFriend(ctx, alice.ID, uuid.New())
	assert.True(t, utils.IsErrorCode(err, utils.ErrUserNotFound))

	_, err = env.engine.AddFriend(ctx, uuid.New(), alice.ID)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUserNotFound))
}

func TestConcurrentAddFriendAppendsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.engine.AddFriend(ctx, alice.ID, bob.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if utils.IsErrorCode(err, utils.ErrAlreadyFriends) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)

	got, err := env.store.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{bob.ID}, got.Friends)
}

func TestRemoveFriend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	_, err := env.engine.AddFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	updated, err := env.engine.RemoveFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Friends)

	// Not a friend any more: unchanged, no error.
	updated, err = env.engine.RemoveFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Friends)

	_, err = env.engine.RemoveFriend(ctx, uuid.New(), bob.ID)
	assert.True(t, utils.IsNotFound(err))
}

func TestReactionRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.user(t, "alice")
	th := env.thought(t, "alice", "react to me")

	_, err := env.engine.AddReaction(ctx, th.ID, AddReactionInput{ReactionBody: "first", Username: "bob"})
	require.NoError(t, err)

	before, err := env.engine.GetThought(ctx, th.ID)
	require.NoError(t, err)
	require.Equal(t, 1, before.ReactionCount())

	withReaction, err := env.engine.AddReaction(ctx, th.ID, AddReactionInput{ReactionBody: "nice!", Username: "carol"})
	require.NoError(t, err)
	require.Equal(t, 2, withReaction.ReactionCount())
	added := withReaction.Reactions[len(withReaction.Reactions)-1]
	assert.Equal(t, "nice!", added.ReactionBody)
	assert.Equal(t, "carol", added.Username)
	assert.NotEqual(t, uuid.Nil, added.ReactionID)

	after, err := env.engine.RemoveReaction(ctx, th.ID, added.ReactionID)
	require.NoError(t, err)
	assert.Equal(t, before.ReactionCount(), after.ReactionCount())

	unchanged, err := env.engine.RemoveReaction(ctx, th.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, before.ReactionCount(), unchanged.ReactionCount())
}

func TestReactionValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	th := env.thought(t, "alice", "hi")

	_, err := env.engine.AddReaction(ctx, th.ID, AddReactionInput{ReactionBody: strings.Repeat("r", 281), Username: "bob"})
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))

	_, err = env.engine.AddReaction(ctx, th.ID, AddReactionInput{ReactionBody: "ok"})
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))

	_, err = env.engine.AddReaction(ctx, uuid.New(), AddReactionInput{ReactionBody: "ok", Username: "bob"})
	assert.True(t, utils.IsErrorCode(err, utils.ErrThoughtNotFound))
}

func TestUpdateUserRenamesThoughts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	th := env.thought(t, "alice", "mine")

	name := "alicia"
	updated, err := env.engine.UpdateUser(ctx, alice.ID, UpdateUserInput{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Username)
	assert.Equal(t, "alice@example.com", updated.Email)

	got, err := env.engine.GetThought(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", got.Username)

	// New thoughts land on the renamed user.
	next := env.thought(t, "alicia", "again")
	u, err := env.store.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{th.ID, next.ID}, u.Thoughts)
}

func TestUpdateUserValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	env.user(t, "bob")

	bad := "bad-email"
	_, err := env.engine.UpdateUser(ctx, alice.ID, UpdateUserInput{Email: &bad})
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))

	taken := "bob"
	_, err = env.engine.UpdateUser(ctx, alice.ID, UpdateUserInput{Username: &taken})
	assert.True(t, utils.IsErrorCode(err, utils.ErrUniqueViolation))

	name := "nobody"
	_, err = env.engine.UpdateUser(ctx, uuid.New(), UpdateUserInput{Username: &name})
	assert.True(t, utils.IsErrorCode(err, utils.ErrUserNotFound))

	same, err := env.engine.UpdateUser(ctx, alice.ID, UpdateUserInput{})
	require.NoError(t, err)
	assert.Equal(t, "alice", same.Username)
}

func TestUpdateThoughtMovesAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	th := env.thought(t, "alice", "draft")

	text := "final"
	updated, err := env.engine.UpdateThought(ctx, th.ID, UpdateThoughtInput{ThoughtText: &text})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.ThoughtText)
	assert.Equal(t, "alice", updated.Username)

	owner := "bob"
	updated, err = env.engine.UpdateThought(ctx, th.ID, UpdateThoughtInput{Username: &owner})
	require.NoError(t, err)
	assert.Equal(t, "bob", updated.Username)

	a, err := env.store.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, a.Thoughts)

	b, err := env.store.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{th.ID}, b.Thoughts)

	tooLong := strings.Repeat("x", 281)
	_, err = env.engine.UpdateThought(ctx, th.ID, UpdateThoughtInput{ThoughtText: &tooLong})
	assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))

	_, err = env.engine.UpdateThought(ctx, uuid.New(), UpdateThoughtInput{ThoughtText: &text})
	assert.True(t, utils.IsErrorCode(err, utils.ErrThoughtNotFound))
}

func TestScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	bob, err := env.engine.CreateUser(ctx, CreateUserInput{Username: "bob", Email: "bob@x.com"})
	require.NoError(t, err)
	th := env.thought(t, "bob", "hello")

	profile, err := env.engine.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, profile.Thoughts, 1)
	assert.Equal(t, "hello", profile.Thoughts[0].ThoughtText)

	_, err = env.engine.AddReaction(ctx, th.ID, AddReactionInput{ReactionBody: "nice!", Username: "carol"})
	require.NoError(t, err)
	got, err := env.engine.GetThought(ctx, th.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReactionCount())

	_, err = env.engine.DeleteUser(ctx, bob.ID)
	require.NoError(t, err)
	thoughts, err := env.engine.ListThoughts(ctx)
	require.NoError(t, err)
	assert.Empty(t, thoughts)
}

func TestListUsersPopulates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	env.thought(t, "alice", "one")
	_, err := env.engine.AddFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	list, err := env.engine.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.UserCount)
	require.Len(t, list.Users, 2)
	assert.Equal(t, "alice", list.Users[0].User.Username)
	require.Len(t, list.Users[0].Friends, 1)
	assert.Equal(t, "bob", list.Users[0].Friends[0].Username)
	require.Len(t, list.Users[0].Thoughts, 1)
	assert.Empty(t, list.Users[1].Thoughts)
}

// brokenFriendStore fails the friend-link cleanup step of deleteUser.
type brokenFriendStore struct {
	database.Store
	transactions bool
}

func (s *brokenFriendStore) PullFriendEverywhere(ctx context.Context, friendID uuid.UUID) (int64, error) {
	return 0, errors.New("connection reset by peer")
}

func (s *brokenFriendStore) SupportsTransactions() bool {
	return s.transactions
}

func TestDeleteUserBestEffortStep(t *testing.T) {
	store := database.NewMemoryStore()
	metrics := utils.NewMetricsCollector()
	eng := NewEngine(&brokenFriendStore{Store: store}, metrics, nil)
	ctx := context.Background()

	alice, err := eng.CreateUser(ctx, CreateUserInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	bob, err := eng.CreateUser(ctx, CreateUserInput{Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)
	_, err = eng.CreateThought(ctx, CreateThoughtInput{ThoughtText: "bye", Username: "alice"})
	require.NoError(t, err)
	_, err = eng.AddFriend(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	_, err = eng.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(1), cascadeFailures(t, metrics, "pull_friend_links"))

	// Earlier steps still happened.
	thoughts, err := store.ListThoughts(ctx)
	require.NoError(t, err)
	assert.Empty(t, thoughts)

	// The dangling link survives until reconciliation.
	b, err := store.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice.ID}, b.Friends)

	report, err := eng.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.DanglingFriendsRemoved)

	b, err = store.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, b.Friends)
}

func TestDeleteUserTransactionalStepFails(t *testing.T) {
	store := database.NewMemoryStore()
	metrics := utils.NewMetricsCollector()
	eng := NewEngine(&brokenFriendStore{Store: store, transactions: true}, metrics, nil)
	ctx := context.Background()

	alice, err := eng.CreateUser(ctx, CreateUserInput{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)

	_, err = eng.DeleteUser(ctx, alice.ID)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrDatabase))
	assert.Equal(t, 500, utils.HTTPStatus(err))
	assert.Zero(t, cascadeFailures(t, metrics, "pull_friend_links"))
}

func TestReconcile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	first := env.thought(t, "alice", "one")
	second := env.thought(t, "alice", "two")
	env.thought(t, "ghost", "orphan")
	env.thought(t, "bob", "fine")

	// Simulate cascades that stopped part way.
	require.NoError(t, env.store.PullUserThought(ctx, "alice", first.ID))
	require.NoError(t, env.store.SetUserFriends(ctx, bob.ID, []uuid.UUID{uuid.New(), alice.ID}))

	report, err := env.engine.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, &ReconcileReport{
		UsersScanned:           2,
		ThoughtListsRebuilt:    1,
		DanglingFriendsRemoved: 1,
		OrphanThoughts:         1,
	}, report)

	a, err := env.store.GetUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID, second.ID}, a.Thoughts)

	b, err := env.store.GetUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{alice.ID}, b.Friends)

	again, err := env.engine.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.ThoughtListsRebuilt)
	assert.Zero(t, again.DanglingFriendsRemoved)
}

func TestEventsPublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	th := env.thought(t, "alice", "hi")
	reacted, err := env.engine.AddReaction(ctx, th.ID, AddReactionInput{ReactionBody: "yo", Username: "bob"})
	require.NoError(t, err)
	_, err = env.engine.RemoveReaction(ctx, th.ID, reacted.Reactions[0].ReactionID)
	require.NoError(t, err)
	_, err = env.engine.AddFriend(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.engine.DeleteThought(ctx, th.ID)
	require.NoError(t, err)

	// Failed operations publish nothing.
	_, err = env.engine.AddFriend(ctx, alice.ID, bob.ID)
	require.Error(t, err)

	assert.Equal(t, []models.EventType{
		models.EventUserCreated,
		models.EventUserCreated,
		models.EventThoughtCreated,
		models.EventReactionAdded,
		models.EventReactionRemoved,
		models.EventFriendAdded,
		models.EventThoughtDeleted,
	}, env.events.types())

	for _, e := range env.events.events {
		assert.False(t, e.At.IsZero())
	}
}
