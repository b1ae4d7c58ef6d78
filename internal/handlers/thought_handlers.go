package handlers

import (
	"net/http"

	"netlibrarium/internal/engine"
	"netlibrarium/internal/engine/actors"
	"netlibrarium/internal/models"
)

// HandleListThoughts handles GET /api/thoughts
func (s *Server) HandleListThoughts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := s.requestContext(r)
		defer cancel()

		thoughts, err := actors.Ask[[]*models.Thought](ctx, s.Actors, &actors.ListThoughtsMsg{})
		if err != nil {
			respondError(w, r, err)
			return
		}
		if thoughts == nil {
			thoughts = []*models.Thought{}
		}
		respondJSON(w, http.StatusOK, thoughts)
	}
}

// HandleGetThought handles GET /api/thoughts/{thoughtId}
func (s *Server) HandleGetThought() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		thoughtID, err := pathID(r, "thoughtId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		thought, err := actors.Ask[*models.Thought](ctx, s.Actors, &actors.GetThoughtMsg{ThoughtID: thoughtID})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, thought)
	}
}

// HandleCreateThought handles POST /api/thoughts
func (s *Server) HandleCreateThought() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in engine.CreateThoughtInput
		if err := decodeBody(r, &in); err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		thought, err := actors.Ask[*models.Thought](ctx, s.Actors, &actors.CreateThoughtMsg{Input: in})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, thought)
	}
}

// HandleUpdateThought handles PUT /api/thoughts/{thoughtId}
func (s *Server) HandleUpdateThought() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		thoughtID, err := pathID(r, "thoughtId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		var in engine.UpdateThoughtInput
		if err := decodeBody(r, &in); err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		thought, err := actors.Ask[*models.Thought](ctx, s.Actors, &actors.UpdateThoughtMsg{ThoughtID: thoughtID, Input: in})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, thought)
	}
}

// HandleDeleteThought handles DELETE /api/thoughts/{thoughtId}
func (s *Server) HandleDeleteThought() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		thoughtID, err := pathID(r, "thoughtId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		if _, err := actors.Ask[*models.Thought](ctx, s.Actors, &actors.DeleteThoughtMsg{ThoughtID: thoughtID}); err != nil {
			respondError(w, r, err)
			return
		}
		respondMessage(w, http.StatusOK, "Thought successfully deleted!")
	}
}

// HandleAddReaction handles POST /api/thoughts/{thoughtId}/reactions
func (s *Server) HandleAddReaction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		thoughtID, err := pathID(r, "thoughtId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		var in engine.AddReactionInput
		if err := decodeBody(r, &in); err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		thought, err := actors.Ask[*models.Thought](ctx, s.Actors, &actors.AddReactionMsg{ThoughtID: thoughtID, Input: in})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, thought)
	}
}

// HandleRemoveReaction handles DELETE /api/thoughts/{thoughtId}/reactions/{reactionId}
func (s *Server) HandleRemoveReaction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		thoughtID, err := pathID(r, "thoughtId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		reactionID, err := pathID(r, "reactionId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		thought, err := actors.Ask[*models.Thought](ctx, s.Actors, &actors.RemoveReactionMsg{ThoughtID: thoughtID, ReactionID: reactionID})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, thought)
	}
}
