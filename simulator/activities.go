package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var thoughtTopics = []string{
	"gaming", "tech", "science", "music", "movies",
	"books", "sports", "food", "travel", "art",
}

var reactionBodies = []string{"nice!", "agreed", "hmm", "lol", "+1", "source?"}

type thoughtResponse struct {
	ID        uuid.UUID `json:"_id"`
	Reactions []struct {
		ReactionID uuid.UUID `json:"reactionId"`
		Username   string    `json:"username"`
	} `json:"reactions"`
}

// simulateActivities rolls each action once per user per tick and hands the
// hits to a fixed pool of workers.
func (s *Simulator) simulateActivities(ctx context.Context) {
	jobs := make(chan func(context.Context), s.config.NumUsers)

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				job(ctx)
			}
		}()
	}
	defer func() {
		close(jobs)
		wg.Wait()
	}()

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	perTick := s.config.TickInterval.Hours()
	actions := []struct {
		rate float64
		run  func(context.Context, *SimulatedUser)
	}{
		{s.config.ThoughtFrequency, s.postThought},
		{s.config.ReactionFrequency, s.addReaction},
		{s.config.UnreactFrequency, s.removeReaction},
		{s.config.FriendFrequency, s.addFriend},
		{s.config.DeleteFrequency, s.deleteThought},
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		for i := 0; i < len(s.users); i++ {
			user := s.pickUser()
			for _, action := range actions {
				if !s.roll(action.rate * perTick) {
					continue
				}
				run := action.run
				select {
				case jobs <- func(ctx context.Context) { run(ctx, user) }:
				case <-ctx.Done():
					return
				default:
					// Workers are saturated; skip rather than fall behind.
				}
			}
		}
	}
}

func (s *Simulator) roll(p float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64() < p
}

func (s *Simulator) postThought(ctx context.Context, user *SimulatedUser) {
	s.mu.Lock()
	text := fmt.Sprintf("thinking about %s #%d", thoughtTopics[s.rng.Intn(len(thoughtTopics))], s.rng.Intn(10000))
	s.mu.Unlock()

	resp, err := s.makeRequest(ctx, http.MethodPost, "/api/thoughts", map[string]string{
		"thoughtText": text,
		"username":    user.Username,
	})
	if err != nil {
		log.Debug().Err(err).Str("username", user.Username).Msg("Create thought failed")
		return
	}
	var created thoughtResponse
	if err := json.Unmarshal(resp, &created); err != nil {
		return
	}

	s.mu.Lock()
	user.Thoughts = append(user.Thoughts, created.ID)
	s.thoughts = append(s.thoughts, &simulatedThought{ID: created.ID, Author: user})
	s.mu.Unlock()

	s.stats.mu.Lock()
	s.stats.ThoughtsCreated++
	s.stats.mu.Unlock()
}

func (s *Simulator) addReaction(ctx context.Context, user *SimulatedUser) {
	s.mu.Lock()
	if len(s.thoughts) == 0 {
		s.mu.Unlock()
		return
	}
	target := s.thoughts[s.rng.Intn(len(s.thoughts))]
	body := reactionBodies[s.rng.Intn(len(reactionBodies))]
	s.mu.Unlock()

	resp, err := s.makeRequest(ctx, http.MethodPost, "/api/thoughts/"+target.ID.String()+"/reactions", map[string]string{
		"reactionBody": body,
		"username":     user.Username,
	})
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			s.forgetThought(target.ID)
		}
		return
	}
	var updated thoughtResponse
	if err := json.Unmarshal(resp, &updated); err != nil || len(updated.Reactions) == 0 {
		return
	}
	added := updated.Reactions[len(updated.Reactions)-1]

	s.mu.Lock()
	target.Reactions = append(target.Reactions, added.ReactionID)
	s.mu.Unlock()

	s.stats.mu.Lock()
	s.stats.ReactionsAdded++
	s.stats.mu.Unlock()
}

func (s *Simulator) removeReaction(ctx context.Context, user *SimulatedUser) {
	s.mu.Lock()
	var target *simulatedThought
	for _, t := range s.thoughts {
		if len(t.Reactions) > 0 {
			target = t
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return
	}
	reactionID := target.Reactions[0]
	target.Reactions = target.Reactions[1:]
	s.mu.Unlock()

	_, err := s.makeRequest(ctx, http.MethodDelete, "/api/thoughts/"+target.ID.String()+"/reactions/"+reactionID.String(), nil)
	if err != nil {
		return
	}
	s.stats.mu.Lock()
	s.stats.ReactionsRemoved++
	s.stats.mu.Unlock()
}

// addFriend befriends a Zipf-picked user, so popular users collect the most
// friends. Conflicts on existing friendships are expected.
func (s *Simulator) addFriend(ctx context.Context, user *SimulatedUser) {
	friend := s.pickUser()
	if friend == user {
		return
	}

	_, err := s.makeRequest(ctx, http.MethodPost, "/api/users/"+user.ID.String()+"/friends/"+friend.ID.String(), nil)
	if err != nil && !isStatus(err, http.StatusConflict) {
		return
	}

	s.mu.Lock()
	user.Friends[friend.ID] = true
	s.mu.Unlock()

	if err == nil {
		s.stats.mu.Lock()
		s.stats.FriendsAdded++
		s.stats.mu.Unlock()
	}
}

func (s *Simulator) deleteThought(ctx context.Context, user *SimulatedUser) {
	s.mu.Lock()
	if len(user.Thoughts) == 0 {
		s.mu.Unlock()
		return
	}
	id := user.Thoughts[0]
	user.Thoughts = user.Thoughts[1:]
	s.mu.Unlock()

	s.forgetThought(id)
	if _, err := s.makeRequest(ctx, http.MethodDelete, "/api/thoughts/"+id.String(), nil); err != nil {
		return
	}
	s.stats.mu.Lock()
	s.stats.ThoughtsDeleted++
	s.stats.mu.Unlock()
}

func (s *Simulator) forgetThought(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.thoughts {
		if t.ID == id {
			s.thoughts = append(s.thoughts[:i], s.thoughts[i+1:]...)
			return
		}
	}
}
