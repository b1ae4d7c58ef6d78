package handlers

import (
	"net/http"

	"netlibrarium/internal/engine"
	"netlibrarium/internal/engine/actors"
	"netlibrarium/internal/models"
)

// FriendRemovedResponse is returned by DELETE /users/{userId}/friends/{friendId}.
type FriendRemovedResponse struct {
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// HandleListUsers handles GET /api/users
func (s *Server) HandleListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := s.requestContext(r)
		defer cancel()

		list, err := actors.Ask[*models.UserList](ctx, s.Actors, &actors.ListUsersMsg{})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// HandleGetUser handles GET /api/users/{userId}
func (s *Server) HandleGetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "userId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		profile, err := actors.Ask[*models.UserProfile](ctx, s.Actors, &actors.GetUserMsg{UserID: userID})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, profile)
	}
}

// HandleCreateUser handles POST /api/users
func (s *Server) HandleCreateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in engine.CreateUserInput
		if err := decodeBody(r, &in); err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		user, err := actors.Ask[*models.User](ctx, s.Actors, &actors.CreateUserMsg{Input: in})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, user)
	}
}

// HandleUpdateUser handles PUT /api/users/{userId}
func (s *Server) HandleUpdateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "userId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		var in engine.UpdateUserInput
		if err := decodeBody(r, &in); err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		user, err := actors.Ask[*models.User](ctx, s.Actors, &actors.UpdateUserMsg{UserID: userID, Input: in})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, user)
	}
}

// HandleDeleteUser handles DELETE /api/users/{userId}
func (s *Server) HandleDeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "userId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		if _, err := actors.Ask[*models.User](ctx, s.Actors, &actors.DeleteUserMsg{UserID: userID}); err != nil {
			respondError(w, r, err)
			return
		}
		respondMessage(w, http.StatusOK, "User successfully deleted")
	}
}

// HandleAddFriend handles POST /api/users/{userId}/friends/{friendId}
func (s *Server) HandleAddFriend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "userId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		friendID, err := pathID(r, "friendId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		user, err := actors.Ask[*models.User](ctx, s.Actors, &actors.AddFriendMsg{UserID: userID, FriendID: friendID})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, user)
	}
}

// HandleRemoveFriend handles DELETE /api/users/{userId}/friends/{friendId}
func (s *Server) HandleRemoveFriend() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "userId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		friendID, err := pathID(r, "friendId")
		if err != nil {
			respondError(w, r, err)
			return
		}
		ctx, cancel := s.requestContext(r)
		defer cancel()

		user, err := actors.Ask[*models.User](ctx, s.Actors, &actors.RemoveFriendMsg{UserID: userID, FriendID: friendID})
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, FriendRemovedResponse{Message: "Friend removed successfully", User: user})
	}
}
