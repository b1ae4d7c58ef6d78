package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is a registered author. Thoughts and Friends hold identifiers only;
// UserProfile carries the populated form.
type User struct {
	ID        uuid.UUID   `json:"_id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Thoughts  []uuid.UUID `json:"thoughts"`
	Friends   []uuid.UUID `json:"friends"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// FriendCount is derived from Friends and never stored.
func (u *User) FriendCount() int {
	return len(u.Friends)
}

// HasFriend reports whether id is present in u.Friends.
func (u *User) HasFriend(id uuid.UUID) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// HasThought reports whether id is present in u.Thoughts.
func (u *User) HasThought(id uuid.UUID) bool {
	for _, t := range u.Thoughts {
		if t == id {
			return true
		}
	}
	return false
}

type userJSON struct {
	ID          uuid.UUID   `json:"_id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Thoughts    []uuid.UUID `json:"thoughts"`
	Friends     []uuid.UUID `json:"friends"`
	FriendCount int         `json:"friendCount"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userJSON{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Thoughts:    nonNilIDs(u.Thoughts),
		Friends:     nonNilIDs(u.Friends),
		FriendCount: len(u.Friends),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	})
}

// UserProfile is a User with its thoughts and friends resolved to documents.
// Identifiers whose documents no longer exist are skipped; list order is kept.
type UserProfile struct {
	User     *User
	Thoughts []*Thought
	Friends  []*User
}

func (p UserProfile) MarshalJSON() ([]byte, error) {
	thoughts := p.Thoughts
	if thoughts == nil {
		thoughts = []*Thought{}
	}
	friends := p.Friends
	if friends == nil {
		friends = []*User{}
	}
	return json.Marshal(struct {
		ID          uuid.UUID  `json:"_id"`
		Username    string     `json:"username"`
		Email       string     `json:"email"`
		Thoughts    []*Thought `json:"thoughts"`
		Friends     []*User    `json:"friends"`
		FriendCount int        `json:"friendCount"`
		CreatedAt   time.Time  `json:"createdAt"`
		UpdatedAt   time.Time  `json:"updatedAt"`
	}{
		ID:          p.User.ID,
		Username:    p.User.Username,
		Email:       p.User.Email,
		Thoughts:    thoughts,
		Friends:     friends,
		FriendCount: len(p.User.Friends),
		CreatedAt:   p.User.CreatedAt,
		UpdatedAt:   p.User.UpdatedAt,
	})
}

// UserPatch lists the user fields a PUT may change. Nil means unchanged.
type UserPatch struct {
	Username *string
	Email    *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Email == nil
}

func nonNilIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

// UserList is the GET /users payload.
type UserList struct {
	Users     []*UserProfile `json:"users"`
	UserCount int64          `json:"userCount"`
}
