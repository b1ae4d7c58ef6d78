package simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// SimConfig sets the population and per-user activity rates. Frequencies are
// actions per user per hour.
type SimConfig struct {
	NumUsers          int
	SimulationTime    time.Duration
	ThoughtFrequency  float64
	ReactionFrequency float64
	UnreactFrequency  float64
	FriendFrequency   float64
	DeleteFrequency   float64
	ZipfS             float64
	TickInterval      time.Duration
	Workers           int
	EngineURL         string
}

// DefaultSimConfig is a light load against a local server.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		NumUsers:          50,
		SimulationTime:    5 * time.Minute,
		ThoughtFrequency:  60,
		ReactionFrequency: 120,
		UnreactFrequency:  20,
		FriendFrequency:   30,
		DeleteFrequency:   10,
		ZipfS:             1.07,
		TickInterval:      500 * time.Millisecond,
		Workers:           5,
		EngineURL:         "http://localhost:8080",
	}
}

type SimulationStats struct {
	mu               sync.RWMutex
	StartTime        time.Time
	TotalRequests    int64
	SuccessRequests  int64
	FailedRequests   int64
	Conflicts        int64
	AverageLatency   time.Duration
	ThoughtsCreated  int
	ThoughtsDeleted  int
	ReactionsAdded   int
	ReactionsRemoved int
	FriendsAdded     int
}

// SimulatedUser mirrors what the simulator knows about one server-side user.
type SimulatedUser struct {
	ID       uuid.UUID
	Username string
	Email    string
	Thoughts []uuid.UUID
	Friends  map[uuid.UUID]bool
}

// simulatedThought tracks a thought and the reactions the simulator added to it.
type simulatedThought struct {
	ID        uuid.UUID
	Author    *SimulatedUser
	Reactions []uuid.UUID
}

type Simulator struct {
	config   SimConfig
	stats    *SimulationStats
	users    []*SimulatedUser
	thoughts []*simulatedThought
	client   *http.Client
	rng      *rand.Rand
	zipf     *rand.Zipf
	mu       sync.Mutex
}

func NewSimulator(config SimConfig) *Simulator {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.TickInterval <= 0 {
		config.TickInterval = 500 * time.Millisecond
	}
	if config.ZipfS <= 1 {
		config.ZipfS = 1.07
	}
	return &Simulator{
		config: config,
		stats:  &SimulationStats{StartTime: time.Now()},
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run creates the users, then drives activity until ctx is done.
func (s *Simulator) Run(ctx context.Context) error {
	log.Info().Int("users", s.config.NumUsers).Str("engine", s.config.EngineURL).Msg("Starting simulation")

	if err := s.createUsers(ctx); err != nil {
		return errors.Wrap(err, "initialization failed")
	}
	if len(s.users) == 0 {
		return errors.New("no users could be created")
	}
	s.zipf = rand.NewZipf(s.rng, s.config.ZipfS, 1, uint64(len(s.users)-1))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.simulateActivities(ctx)
	}()
	go func() {
		defer wg.Done()
		s.collectMetrics(ctx)
	}()
	wg.Wait()
	return nil
}

func (s *Simulator) createUsers(ctx context.Context) error {
	jobs := make(chan int)
	results := make(chan *SimulatedUser)

	// Run ids are part of the names so repeated runs against one store do
	// not collide on the unique indexes.
	run := uuid.NewString()[:6]

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				user := &SimulatedUser{
					Username: fmt.Sprintf("sim_%s_%d", run, n),
					Email:    fmt.Sprintf("sim_%s_%d@test.com", run, n),
					Friends:  make(map[uuid.UUID]bool),
				}
				if err := s.registerUser(ctx, user); err != nil {
					log.Warn().Err(err).Str("username", user.Username).Msg("Failed to create user")
					continue
				}
				results <- user
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < s.config.NumUsers; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	for user := range results {
		s.users = append(s.users, user)
	}
	log.Info().Int("created", len(s.users)).Msg("Users created")
	return ctx.Err()
}

func (s *Simulator) registerUser(ctx context.Context, user *SimulatedUser) error {
	resp, err := s.makeRequest(ctx, http.MethodPost, "/api/users", map[string]string{
		"username": user.Username,
		"email":    user.Email,
	})
	if err != nil {
		return err
	}
	var created struct {
		ID uuid.UUID `json:"_id"`
	}
	if err := json.Unmarshal(resp, &created); err != nil {
		return errors.Wrap(err, "failed to parse user response")
	}
	user.ID = created.ID
	return nil
}

// pickUser returns a user with Zipf-distributed popularity: low indexes are
// picked far more often.
func (s *Simulator) pickUser() *SimulatedUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[int(s.zipf.Uint64())]
}

// apiError is a response with status >= 400.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

func isStatus(err error, status int) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// makeRequest sends a JSON request and returns the body of a successful response.
func (s *Simulator) makeRequest(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	var body io.Reader
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.EngineURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.recordRequest(start, err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err == nil && resp.StatusCode >= 400 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &msg)
		err = &apiError{Status: resp.StatusCode, Message: msg.Message}
	}
	s.recordRequest(start, err)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// recordRequest counts a finished request. Requests cut off by the end of
// the run are not counted.
func (s *Simulator) recordRequest(start time.Time, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()

	latency := time.Since(start)
	s.stats.TotalRequests++
	switch {
	case err == nil:
		s.stats.SuccessRequests++
	case isStatus(err, http.StatusConflict):
		s.stats.Conflicts++
	default:
		s.stats.FailedRequests++
	}

	totalLatency := s.stats.AverageLatency * time.Duration(s.stats.TotalRequests-1)
	s.stats.AverageLatency = (totalLatency + latency) / time.Duration(s.stats.TotalRequests)
}

func (s *Simulator) collectMetrics(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m := s.GetMetrics()
			log.Info().
				Float64("req_per_sec", m.RequestsPerSecond).
				Dur("avg_latency", m.AverageLatency).
				Int("thoughts", m.ThoughtsCreated).
				Int("reactions", m.ReactionsAdded).
				Int("friends", m.FriendsAdded).
				Int("errors", m.ErrorCount).
				Msg("Simulation progress")
		}
	}
}

// SimulationMetrics holds the metrics of the simulation
type SimulationMetrics struct {
	TotalUsers        int
	TotalRequests     int64
	ThoughtsCreated   int
	ThoughtsDeleted   int
	ReactionsAdded    int
	ReactionsRemoved  int
	FriendsAdded      int
	Conflicts         int
	AverageLatency    time.Duration
	ErrorCount        int
	RequestsPerSecond float64
}

// GetMetrics returns the current simulation metrics
func (s *Simulator) GetMetrics() SimulationMetrics {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	elapsed := time.Since(s.stats.StartTime)
	s.mu.Lock()
	totalUsers := len(s.users)
	s.mu.Unlock()

	return SimulationMetrics{
		TotalUsers:        totalUsers,
		TotalRequests:     s.stats.TotalRequests,
		ThoughtsCreated:   s.stats.ThoughtsCreated,
		ThoughtsDeleted:   s.stats.ThoughtsDeleted,
		ReactionsAdded:    s.stats.ReactionsAdded,
		ReactionsRemoved:  s.stats.ReactionsRemoved,
		FriendsAdded:      s.stats.FriendsAdded,
		Conflicts:         int(s.stats.Conflicts),
		AverageLatency:    s.stats.AverageLatency,
		ErrorCount:        int(s.stats.FailedRequests),
		RequestsPerSecond: float64(s.stats.TotalRequests) / elapsed.Seconds(),
	}
}
