package engine

import (
	"context"
	"time"

	"netlibrarium/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const thoughtTextRules = "required,min=1,max=280"

// CreateThoughtInput is the body of POST /thoughts.
type CreateThoughtInput struct {
	ThoughtText string `json:"thoughtText" validate:"required,min=1,max=280"`
	Username    string `json:"username" validate:"required"`
}

// UpdateThoughtInput is the body of PUT /thoughts/{thoughtId}. Absent fields are left alone.
type UpdateThoughtInput struct {
	ThoughtText *string `json:"thoughtText"`
	Username    *string `json:"username"`
}

// AddReactionInput is the body of POST /thoughts/{thoughtId}/reactions.
type AddReactionInput struct {
	ReactionBody string `json:"reactionBody" validate:"required,max=280"`
	Username     string `json:"username" validate:"required"`
}

// CreateThought stores the thought, then appends its id to the thoughts of
// the user with that username. No user with that username is not an error:
// the thought is kept and no list changes.
func (e *Engine) CreateThought(ctx context.Context, in CreateThoughtInput) (*models.Thought, error) {
	defer e.track("create_thought", time.Now())

	in.Username = normalizeUsername(in.Username)
	if err := e.checkStruct(in); err != nil {
		return nil, err
	}

	thought := &models.Thought{
		ID:          uuid.New(),
		ThoughtText: in.ThoughtText,
		Username:    in.Username,
		CreatedAt:   e.now(),
		Reactions:   []models.Reaction{},
	}

	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := e.store.CreateThought(ctx, thought); err != nil {
			return err
		}
		return e.followUp("push_user_thought", func() error {
			matched, err := e.store.PushUserThought(ctx, thought.Username, thought.ID)
			if err == nil && matched == 0 {
				log.Warn().Str("username", thought.Username).Str("thoughtId", thought.ID.String()).
					Msg("Thought created for a username with no user")
			}
			return err
		})
	})
	if err != nil {
		return nil, storeError(err, "Failed to create thought")
	}

	e.publish(models.Event{Type: models.EventThoughtCreated, Username: thought.Username, ThoughtID: &thought.ID})
	return thought, nil
}

func (e *Engine) GetThought(ctx context.Context, id uuid.UUID) (*models.Thought, error) {
	defer e.track("get_thought", time.Now())

	thought, err := e.store.GetThought(ctx, id)
	if err != nil {
		return nil, storeError(err, "Failed to load thought")
	}
	return thought, nil
}

func (e *Engine) ListThoughts(ctx context.Context) ([]*models.Thought, error) {
	defer e.track("list_thoughts", time.Now())

	thoughts, err := e.store.ListThoughts(ctx)
	if err != nil {
		return nil, storeError(err, "Failed to list thoughts")
	}
	return thoughts, nil
}

// UpdateThought changes text and/or author. Moving a thought to another
// username moves its id from the old author's list to the new one's.
func (e *Engine) UpdateThought(ctx context.Context, id uuid.UUID, in UpdateThoughtInput) (*models.Thought, error) {
	defer e.track("update_thought", time.Now())

	var patch models.ThoughtPatch
	if in.ThoughtText != nil {
		if err := e.checkVar("thoughtText", *in.ThoughtText, thoughtTextRules); err != nil {
			return nil, err
		}
		patch.ThoughtText = in.ThoughtText
	}
	if in.Username != nil {
		username := normalizeUsername(*in.Username)
		if err := e.checkVar("username", username, "required"); err != nil {
			return nil, err
		}
		patch.Username = &username
	}

	current, err := e.store.GetThought(ctx, id)
	if err != nil {
		return nil, storeError(err, "Failed to load thought")
	}
	if patch.Empty() {
		return current, nil
	}

	var updated *models.Thought
	err = e.store.WithTransaction(ctx, func(ctx context.Context) error {
		t, err := e.store.UpdateThought(ctx, id, patch)
		if err != nil {
			return err
		}
		updated = t

		if t.Username == current.Username {
			return nil
		}
		err = e.followUp("pull_user_thought", func() error {
			return e.store.PullUserThought(ctx, current.Username, id)
		})
		if err != nil {
			return err
		}
		return e.followUp("push_user_thought", func() error {
			_, err := e.store.PushUserThought(ctx, t.Username, id)
			return err
		})
	})
	if err != nil {
		return nil, storeError(err, "Failed to update thought")
	}

	e.publish(models.Event{Type: models.EventThoughtUpdated, Username: updated.Username, ThoughtID: &updated.ID})
	return updated, nil
}

// DeleteThought removes the thought, then its id from the author's list.
func (e *Engine) DeleteThought(ctx context.Context, id uuid.UUID) (*models.Thought, error) {
	defer e.track("delete_thought", time.Now())

	var deleted *models.Thought
	err := e.store.WithTransaction(ctx, func(ctx context.Context) error {
		thought, err := e.store.DeleteThought(ctx, id)
		if err != nil {
			return err
		}
		deleted = thought

		return e.followUp("pull_user_thought", func() error {
			return e.store.PullUserThought(ctx, thought.Username, thought.ID)
		})
	})
	if err != nil {
		return nil, storeError(err, "Failed to delete thought")
	}

	e.publish(models.Event{Type: models.EventThoughtDeleted, Username: deleted.Username, ThoughtID: &deleted.ID})
	return deleted, nil
}

// AddReaction embeds a new reaction with a generated id and timestamp. The
// reaction's username is not checked against the users collection.
func (e *Engine) AddReaction(ctx context.Context, thoughtID uuid.UUID, in AddReactionInput) (*models.Thought, error) {
	defer e.track("add_reaction", time.Now())

	in.Username = normalizeUsername(in.Username)
	if err := e.checkStruct(in); err != nil {
		return nil, err
	}

	reaction := models.Reaction{
		ReactionID:   uuid.New(),
		ReactionBody: in.ReactionBody,
		Username:     in.Username,
		CreatedAt:    e.now(),
	}
	thought, err := e.store.PushReaction(ctx, thoughtID, reaction)
	if err != nil {
		return nil, storeError(err, "Failed to add reaction")
	}

	e.publish(models.Event{
		Type:       models.EventReactionAdded,
		Username:   thought.Username,
		ThoughtID:  &thought.ID,
		ReactionID: &reaction.ReactionID,
	})
	return thought, nil
}

// RemoveReaction pulls the reaction with reactionID. An unknown reactionID
// leaves the thought unchanged.
func (e *Engine) RemoveReaction(ctx context.Context, thoughtID, reactionID uuid.UUID) (*models.Thought, error) {
	defer e.track("remove_reaction", time.Now())

	thought, err := e.store.PullReaction(ctx, thoughtID, reactionID)
	if err != nil {
		return nil, storeError(err, "Failed to remove reaction")
	}

	e.publish(models.Event{
		Type:       models.EventReactionRemoved,
		Username:   thought.Username,
		ThoughtID:  &thought.ID,
		ReactionID: &reactionID,
	})
	return thought, nil
}
