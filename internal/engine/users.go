package engine

import (
	"context"
	"strings"
	"time"

	"netlibrarium/internal/models"
	"netlibrarium/internal/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	usernameRules = "required,min=3,max=50"
	emailRules    = "required,email"
)

// CreateUserInput is the body of POST /users.
type CreateUserInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
}

// UpdateUserInput is the body of PUT /users/{userId}. Absent fields are left alone.
type UpdateUserInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

func normalizeUsername(s string) string {
	return strings.TrimSpace(s)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CreateUser stores a new user. Username and email uniqueness is left to the store.
func (e *Engine) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	defer e.track("create_user", time.Now())

	in.Username = normalizeUsername(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := e.checkStruct(in); err != nil {
		return nil, err
	}

	now := e.now()
	user := &models.User{
		ID:        uuid.New(),
		Username:  in.Username,
		Email:     in.Email,
		Thoughts:  []uuid.UUID{},
		Friends:   []uuid.UUID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreateUser(ctx, user); err != nil {
		return nil, storeError(err, "Failed to create user")
	}

	log.Debug().Str("userId", user.ID.String()).Str("username", user.Username).Msg("User created")
	e.publish(models.Event{Type: models.EventUserCreated, Username: user.Username, UserID: &user.ID})
	return user, nil
}

// GetUser returns the user with friends and thoughts resolved.
func (e *Engine) GetUser(ctx context.Context, id uuid.UUID) (*models.UserProfile, error) {
	defer e.track("get_user", time.Now())

	user, err := e.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeError(err, "Failed to load user")
	}
	profiles, err := e.populate(ctx, []*models.User{user})
	if err != nil {
		return nil, err
	}
	return profiles[0], nil
}

// ListUsers returns every user, populated, with the total user count.
func (e *Engine) ListUsers(ctx context.Context) (*models.UserList, error) {
	defer e.track("list_users", time.Now())

	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return nil, storeError(err, "Failed to list users")
	}
	profiles, err := e.populate(ctx, users)
	if err != nil {
		return nil, err
	}
	count, err := e.store.CountUsers(ctx)
	if err != nil {
		return nil, storeError(err, "Failed to count users")
	}
	return &models.UserList{Users: profiles, UserCount: count}, nil
}

// populate resolves friend and thought identifiers with one lookup per
// collection. Identifiers without a document are skipped; order is kept.
func (e *Engine) populate(ctx context.Context, users []*models.User) ([]*models.UserProfile, error) {
	var friendIDs, thoughtIDs []uuid.UUID
	for _, u := range users {
		friendIDs = append(friendIDs, u.Friends...)
		thoughtIDs = append(thoughtIDs, u.Thoughts...)
	}

	friends, err := e.store.GetUsersByIDs(ctx, friendIDs)
	if err != nil {
		return nil, storeError(err, "Failed to load friends")
	}
	thoughts, err := e.store.GetThoughtsByIDs(ctx, thoughtIDs)
	if err != nil {
		return nil, storeError(err, "Failed to load thoughts")
	}

	friendsByID := make(map[uuid.UUID]*models.User, len(friends))
	for _, f := range friends {
		friendsByID[f.ID] = f
	}
	thoughtsByID := make(map[uuid.UUID]*models.Thought, len(thoughts))
	for _, t := range thoughts {
		thoughtsByID[t.ID] = t
	}

	profiles := make([]*models.UserProfile, len(users))
	for i, u := range users {
		p := &models.UserProfile{
			User:     u,
			Friends:  make([]*models.User, 0, len(u.Friends)),
			Thoughts: make([]*models.Thought, 0, len(u.Thoughts)),
		}
		for _, id := range u.Friends {
			if f, ok := friendsByID[id]; ok {
				p.Friends = append(p.Friends, f)
			}
		}
		for _, id := range u.Thoughts {
			if t, ok := thoughtsByID[id]; ok {
				p.Thoughts = append(p.Thoughts, t)
			}
		}
		profiles[i] = p
	}
	return profiles, nil
}

// UpdateUser changes username and/or email. A username change is carried to
// the denormalised username on the user's thoughts so the thought list and
// the thoughts' authors keep matching.
func (e *Engine) UpdateUser(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*models.User, error) {
	defer e.track("update_user", time.Now())

	var patch models.UserPatch
	if in.Username != nil {
		username := normalizeUsername(*in.Username)
		if err := e.checkVar("username", username, usernameRules); err != nil {
			return nil, err
		}
		patch.Username = &username
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := e.checkVar("email", email, emailRules); err != nil {
			return nil, err
		}
		patch.Email = &email
	}

	current, err := e.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeError(err, "Failed to load user")
	}
	if patch.Empty() {
		return current, nil
	}

	var updated *models.User
	err = e.store.WithTransaction(ctx, func(ctx context.Context) error {
		u, err := e.store.UpdateUser(ctx, id, patch)
		if err != nil {
			return err
		}
		updated = u

		if u.Username == current.Username {
			return nil
		}
		return e.followUp("rename_thought_author", func() error {
			_, err := e.store.RenameThoughtAuthor(ctx, current.Username, u.Username)
			return err
		})
	})
	if err != nil {
		return nil, storeError(err, "Failed to update user")
	}

	e.publish(models.Event{Type: models.EventUserUpdated, Username: updated.Username, UserID: &updated.ID})
	return updated, nil
}

// DeleteUser removes the user, then every thought carrying their username,
// then their identifier from all friends lists.
func (e *Engine) DeleteUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	defer e.track("delete_user", time.Now())

	var deleted *models.User
	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		user, err := e.store.DeleteUser(ctx, id)
		if err != nil {
			return err
		}
		deleted = user

		err = e.followUp("delete_user_thoughts", func() error {
			n, err := e.store.DeleteThoughtsByUsername(ctx, user.Username)
			if err == nil {
				log.Debug().Str("username", user.Username).Int64("thoughts", n).Msg("Deleted thoughts of removed user")
			}
			return err
		})
		if err != nil {
			return err
		}

		return e.followUp("pull_friend_links", func() error {
			_, err := e.store.PullFriendEverywhere(ctx, id)
			return err
		})
	})
	if err != nil {
		if utils.IsNotFound(err) {
			return nil, utils.NewAppError(utils.ErrUserNotFound, "No such user exists", nil)
		}
		return nil, storeError(err, "Failed to delete user")
	}

	e.publish(models.Event{Type: models.EventUserDeleted, Username: deleted.Username, UserID: &deleted.ID})
	return deleted, nil
}

// AddFriend appends friendID to userID's friends. Only the initiating user's
// list changes.
func (e *Engine) AddFriend(ctx context.Context, userID, friendID uuid.UUID) (*models.User, error) {
	defer e.track("add_friend", time.Now())

	if userID == friendID {
		return nil, utils.NewValidationError("A user cannot add themselves as a friend")
	}

	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, friendLookupError(err)
	}
	if _, err := e.store.GetUser(ctx, friendID); err != nil {
		return nil, friendLookupError(err)
	}
	if user.HasFriend(friendID) {
		return nil, utils.NewAppError(utils.ErrAlreadyFriends, "Friend already added", nil)
	}

	added, err := e.store.AddFriend(ctx, userID, friendID)
	if err != nil {
		return nil, storeError(err, "Failed to add friend")
	}

	updated, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, friendLookupError(err)
	}
	if !added {
		// Lost a race with a concurrent add of the same friend.
		return nil, utils.NewAppError(utils.ErrAlreadyFriends, "Friend already added", nil)
	}

	e.publish(models.Event{Type: models.EventFriendAdded, Username: updated.Username, UserID: &updated.ID, FriendID: &friendID})
	return updated, nil
}

// RemoveFriend pulls friendID from userID's friends. Removing someone who is
// not a friend leaves the list unchanged.
func (e *Engine) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) (*models.User, error) {
	defer e.track("remove_friend", time.Now())

	user, err := e.store.RemoveFriend(ctx, userID, friendID)
	if err != nil {
		return nil, storeError(err, "Failed to remove friend")
	}

	e.publish(models.Event{Type: models.EventFriendRemoved, Username: user.Username, UserID: &user.ID, FriendID: &friendID})
	return user, nil
}

func friendLookupError(err error) error {
	if utils.IsNotFound(err) {
		return utils.NewAppError(utils.ErrUserNotFound, "User or friend not found", nil)
	}
	return storeError(err, "Failed to load user")
}
