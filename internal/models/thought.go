package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DisplayTimeFormat renders thought and reaction timestamps, e.g. "Mar 04, 2025 at 09:15 PM".
const DisplayTimeFormat = "Jan 02, 2006 at 03:04 PM"

// FormatTimestamp renders t in DisplayTimeFormat (UTC).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(DisplayTimeFormat)
}

// Thought is a short note. Username is a copy of the author's username,
// not a reference by identifier.
type Thought struct {
	ID          uuid.UUID
	ThoughtText string
	Username    string
	CreatedAt   time.Time
	Reactions   []Reaction
}

// ReactionCount is derived from Reactions and never stored.
func (t *Thought) ReactionCount() int {
	return len(t.Reactions)
}

func (t Thought) MarshalJSON() ([]byte, error) {
	reactions := t.Reactions
	if reactions == nil {
		reactions = []Reaction{}
	}
	return json.Marshal(struct {
		ID            uuid.UUID  `json:"_id"`
		ThoughtText   string     `json:"thoughtText"`
		Username      string     `json:"username"`
		CreatedAt     string     `json:"createdAt"`
		Reactions     []Reaction `json:"reactions"`
		ReactionCount int        `json:"reactionCount"`
	}{
		ID:            t.ID,
		ThoughtText:   t.ThoughtText,
		Username:      t.Username,
		CreatedAt:     FormatTimestamp(t.CreatedAt),
		Reactions:     reactions,
		ReactionCount: len(t.Reactions),
	})
}

// Reaction lives only inside its parent Thought. ReactionID is unique
// within that thought's Reactions and nowhere else.
type Reaction struct {
	ReactionID   uuid.UUID
	ReactionBody string
	Username     string
	CreatedAt    time.Time
}

func (r Reaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ReactionID   uuid.UUID `json:"reactionId"`
		ReactionBody string    `json:"reactionBody"`
		Username     string    `json:"username"`
		CreatedAt    string    `json:"createdAt"`
	}{
		ReactionID:   r.ReactionID,
		ReactionBody: r.ReactionBody,
		Username:     r.Username,
		CreatedAt:    FormatTimestamp(r.CreatedAt),
	})
}

// ThoughtPatch lists the thought fields a PUT may change. Nil means unchanged.
type ThoughtPatch struct {
	ThoughtText *string
	Username    *string
}

// Empty reports whether the patch changes nothing.
func (p ThoughtPatch) Empty() bool {
	return p.ThoughtText == nil && p.Username == nil
}
