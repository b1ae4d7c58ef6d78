package database

import (
	"context"
	"sync"
	"time"

	"netlibrarium/internal/models"
	"netlibrarium/internal/utils"

	"github.com/google/uuid"
)

// MemoryStore keeps users and thoughts in process memory with the same
// per-call semantics as the MongoDB store, including username and email
// uniqueness. It does not support transactions. Used by tests and by
// DB_TYPE=memory.
type MemoryStore struct {
	mu sync.RWMutex

	users     map[uuid.UUID]*models.User
	userOrder []uuid.UUID

	thoughts     map[uuid.UUID]*models.Thought
	thoughtOrder []uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]*models.User),
		thoughts: make(map[uuid.UUID]*models.Thought),
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) SupportsTransactions() bool {
	return false
}

func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(user.ID, user.Username, user.Email); err != nil {
		return err
	}
	s.users[user.ID] = copyUser(user)
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	return copyUser(user), nil
}

func (s *MemoryStore) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, copyUser(user))
		}
	}
	return out, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		out = append(out, copyUser(s.users[id]))
	}
	return out, nil
}

func (s *MemoryStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewUserNotFoundError(id.String())
	}

	username, email := user.Username, user.Email
	if patch.Username != nil {
		username = *patch.Username
	}
	if patch.Email != nil {
		email = *patch.Email
	}
	if err := s.checkUnique(id, username, email); err != nil {
		return nil, err
	}

	user.Username = username
	user.Email = email
	user.UpdatedAt = now()
	return copyUser(user), nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewUserNotFoundError(id.String())
	}
	delete(s.users, id)
	s.userOrder = removeID(s.userOrder, id)
	return user, nil
}

func (s *MemoryStore) PushUserThought(ctx context.Context, username string, thoughtID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.userByUsername(username)
	if user == nil {
		return 0, nil
	}
	user.Thoughts = append(user.Thoughts, thoughtID)
	return 1, nil
}

func (s *MemoryStore) PullUserThought(ctx context.Context, username string, thoughtID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user := s.userByUsername(username); user != nil {
		user.Thoughts = removeID(user.Thoughts, thoughtID)
	}
	return nil
}

func (s *MemoryStore) AddFriend(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok || user.HasFriend(friendID) {
		return false, nil
	}
	user.Friends = append(user.Friends, friendID)
	user.UpdatedAt = now()
	return true, nil
}

func (s *MemoryStore) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, utils.NewUserNotFoundError(userID.String())
	}
	user.Friends = removeID(user.Friends, friendID)
	return copyUser(user), nil
}

func (s *MemoryStore) PullFriendEverywhere(ctx context.Context, friendID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	for _, user := range s.users {
		if user.HasFriend(friendID) {
			user.Friends = removeID(user.Friends, friendID)
			modified++
		}
	}
	return modified, nil
}

func (s *MemoryStore) SetUserThoughts(ctx context.Context, id uuid.UUID, thoughtIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return utils.NewUserNotFoundError(id.String())
	}
	user.Thoughts = append([]uuid.UUID{}, thoughtIDs...)
	return nil
}

func (s *MemoryStore) SetUserFriends(ctx context.Context, id uuid.UUID, friendIDs []uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return utils.NewUserNotFoundError(id.String())
	}
	user.Friends = append([]uuid.UUID{}, friendIDs...)
	return nil
}

func (s *MemoryStore) CreateThought(ctx context.Context, thought *models.Thought) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.thoughts[thought.ID] = copyThought(thought)
	s.thoughtOrder = append(s.thoughtOrder, thought.ID)
	return nil
}

func (s *MemoryStore) GetThought(ctx context.Context, id uuid.UUID) (*models.Thought, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thought, ok := s.thoughts[id]
	if !ok {
		return nil, utils.NewThoughtNotFoundError(id.String())
	}
	return copyThought(thought), nil
}

func (s *MemoryStore) GetThoughtsByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Thought, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Thought, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if thought, ok := s.thoughts[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, copyThought(thought))
		}
	}
	return out, nil
}

func (s *MemoryStore) ListThoughts(ctx context.Context) ([]*models.Thought, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Thought, 0, len(s.thoughtOrder))
	for _, id := range s.thoughtOrder {
		out = append(out, copyThought(s.thoughts[id]))
	}
	return out, nil
}

func (s *MemoryStore) UpdateThought(ctx context.Context, id uuid.UUID, patch models.ThoughtPatch) (*models.Thought, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	thought, ok := s.thoughts[id]
	if !ok {
		return nil, utils.NewThoughtNotFoundError(id.String())
	}
	if patch.ThoughtText != nil {
		thought.ThoughtText = *patch.ThoughtText
	}
	if patch.Username != nil {
		thought.Username = *patch.Username
	}
	return copyThought(thought), nil
}

func (s *MemoryStore) DeleteThought(ctx context.Context, id uuid.UUID) (*models.Thought, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	thought, ok := s.thoughts[id]
	if !ok {
		return nil, utils.NewThoughtNotFoundError(id.String())
	}
	delete(s.thoughts, id)
	s.thoughtOrder = removeID(s.thoughtOrder, id)
	return thought, nil
}

func (s *MemoryStore) DeleteThoughtsByUsername(ctx context.Context, username string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, thought := range s.thoughts {
		if thought.Username == username {
			delete(s.thoughts, id)
			s.thoughtOrder = removeID(s.thoughtOrder, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) RenameThoughtAuthor(ctx context.Context, oldUsername, newUsername string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var modified int64
	for _, thought := range s.thoughts {
		if thought.Username == oldUsername {
			thought.Username = newUsername
			modified++
		}
	}
	return modified, nil
}

func (s *MemoryStore) PushReaction(ctx context.Context, thoughtID uuid.UUID, reaction models.Reaction) (*models.Thought, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	thought, ok := s.thoughts[thoughtID]
	if !ok {
		return nil, utils.NewThoughtNotFoundError(thoughtID.String())
	}
	thought.Reactions = append(thought.Reactions, reaction)
	return copyThought(thought), nil
}

func (s *MemoryStore) PullReaction(ctx context.Context, thoughtID, reactionID uuid.UUID) (*models.Thought, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	thought, ok := s.thoughts[thoughtID]
	if !ok {
		return nil, utils.NewThoughtNotFoundError(thoughtID.String())
	}
	kept := thought.Reactions[:0]
	for _, r := range thought.Reactions {
		if r.ReactionID != reactionID {
			kept = append(kept, r)
		}
	}
	thought.Reactions = kept
	return copyThought(thought), nil
}

// checkUnique must be called with s.mu held.
func (s *MemoryStore) checkUnique(self uuid.UUID, username, email string) error {
	for id, other := range s.users {
		if id == self {
			continue
		}
		if other.Username == username {
			return utils.NewAppError(utils.ErrUniqueViolation, "A user with this username already exists", nil)
		}
		if other.Email == email {
			return utils.NewAppError(utils.ErrUniqueViolation, "A user with this email already exists", nil)
		}
	}
	return nil
}

// userByUsername must be called with s.mu held.
func (s *MemoryStore) userByUsername(username string) *models.User {
	for _, id := range s.userOrder {
		if user := s.users[id]; user.Username == username {
			return user
		}
	}
	return nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Thoughts = append([]uuid.UUID{}, u.Thoughts...)
	c.Friends = append([]uuid.UUID{}, u.Friends...)
	return &c
}

func copyThought(t *models.Thought) *models.Thought {
	c := *t
	c.Reactions = append([]models.Reaction{}, t.Reactions...)
	return &c
}

func now() time.Time {
	return time.Now().UTC()
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
