package models

import (
	"time"

	"github.com/google/uuid"
)

// EventType names an activity published after a successful mutation.
type EventType string

const (
	EventUserCreated     EventType = "user.created"
	EventUserUpdated     EventType = "user.updated"
	EventUserDeleted     EventType = "user.deleted"
	EventFriendAdded     EventType = "friend.added"
	EventFriendRemoved   EventType = "friend.removed"
	EventThoughtCreated  EventType = "thought.created"
	EventThoughtUpdated  EventType = "thought.updated"
	EventThoughtDeleted  EventType = "thought.deleted"
	EventReactionAdded   EventType = "reaction.added"
	EventReactionRemoved EventType = "reaction.removed"
)

// Event is an activity notification. Username is the user the activity
// concerns (a thought's author for thought and reaction events) and is
// used as the subscription topic.
type Event struct {
	Type       EventType  `json:"type"`
	Username   string     `json:"username,omitempty"`
	UserID     *uuid.UUID `json:"userId,omitempty"`
	ThoughtID  *uuid.UUID `json:"thoughtId,omitempty"`
	ReactionID *uuid.UUID `json:"reactionId,omitempty"`
	FriendID   *uuid.UUID `json:"friendId,omitempty"`
	At         time.Time  `json:"at"`
}
