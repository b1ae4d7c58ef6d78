package engine

import (
	"context"
	"time"

	"netlibrarium/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReconcileReport summarises one reconciliation pass.
type ReconcileReport struct {
	UsersScanned           int `json:"usersScanned"`
	ThoughtListsRebuilt    int `json:"thoughtListsRebuilt"`
	DanglingFriendsRemoved int `json:"danglingFriendsRemoved"`
	// Thoughts whose username matches no user. Counted, never deleted.
	OrphanThoughts int `json:"orphanThoughts"`
}

// Reconcile repairs cross references left behind by cascades that stopped
// part way. Each user's thoughts list is rebuilt from the thoughts that carry
// their username, in creation order, and friend ids with no matching user
// are dropped. It is safe to run against a live store; a user changed while
// the pass runs is repaired on the next pass.
func (e *Engine) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	defer e.track("reconcile", time.Now())

	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return nil, storeError(err, "Failed to list users")
	}
	thoughts, err := e.store.ListThoughts(ctx)
	if err != nil {
		return nil, storeError(err, "Failed to list thoughts")
	}

	userIDs := make(map[uuid.UUID]struct{}, len(users))
	byUsername := make(map[string][]uuid.UUID, len(users))
	for _, u := range users {
		userIDs[u.ID] = struct{}{}
		byUsername[u.Username] = nil
	}

	report := &ReconcileReport{UsersScanned: len(users)}
	for _, t := range thoughts {
		if _, ok := byUsername[t.Username]; !ok {
			report.OrphanThoughts++
			continue
		}
		byUsername[t.Username] = append(byUsername[t.Username], t.ID)
	}

	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		want := byUsername[u.Username]
		if want == nil {
			want = []uuid.UUID{}
		}
		if !sameIDs(u.Thoughts, want) {
			if err := e.store.SetUserThoughts(ctx, u.ID, want); err != nil {
				return report, storeError(err, "Failed to rebuild thoughts list")
			}
			report.ThoughtListsRebuilt++
		}

		friends := liveFriends(u, userIDs)
		if removed := len(u.Friends) - len(friends); removed > 0 {
			if err := e.store.SetUserFriends(ctx, u.ID, friends); err != nil {
				return report, storeError(err, "Failed to prune friends list")
			}
			report.DanglingFriendsRemoved += removed
		}
	}

	log.Info().
		Int("users", report.UsersScanned).
		Int("thoughtListsRebuilt", report.ThoughtListsRebuilt).
		Int("danglingFriendsRemoved", report.DanglingFriendsRemoved).
		Int("orphanThoughts", report.OrphanThoughts).
		Msg("Reconciliation finished")
	return report, nil
}

func liveFriends(u *models.User, userIDs map[uuid.UUID]struct{}) []uuid.UUID {
	friends := make([]uuid.UUID, 0, len(u.Friends))
	for _, id := range u.Friends {
		if _, ok := userIDs[id]; ok {
			friends = append(friends, id)
		}
	}
	return friends
}

func sameIDs(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
