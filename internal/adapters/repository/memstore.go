package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abelbejiga/cradle/internal/domain/model"
)

// In-memory Store implementation.
//
// Backs tests and dev mode. A single mutex serializes awards, which
// gives the same dedup and counter guarantees the MySQL store gets from
// its transaction and unique index. Leaderboard ordering is score DESC,
// then user ID ASC (deterministic).

// MemOption applies a configuration option to the MemStore.
type MemOption func(*MemStore)

// WithMemNow overrides the clock used for day bucketing and timestamps.
func WithMemNow(now func() time.Time) MemOption {
	return func(s *MemStore) {
		if now != nil {
			s.now = now
		}
	}
}

// MemStore implements Store in process memory.
type MemStore struct {
	mu sync.RWMutex

	users  map[string]model.User
	events map[string][]model.ScoreEvent // userID -> events, append order
	// signins tracks claimed (userID, day) buckets, mirroring the
	// unique index in the MySQL store.
	signins map[string]map[time.Time]struct{}

	activityCounts map[string]int64
	todoTotals     map[string]int64
	todoCompleted  map[string]int64

	now func() time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore(opts ...MemOption) *MemStore {
	s := &MemStore{
		users:          make(map[string]model.User),
		events:         make(map[string][]model.ScoreEvent),
		signins:        make(map[string]map[time.Time]struct{}),
		activityCounts: make(map[string]int64),
		todoTotals:     make(map[string]int64),
		todoCompleted:  make(map[string]int64),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Award appends a ledger event and increments the user's score under
// one lock acquisition.
func (s *MemStore) Award(ctx context.Context, p AwardParams) (model.ScoreEvent, error) {
	if p.UserID == "" || p.Reason == "" || p.Points <= 0 {
		return model.ScoreEvent{}, ErrInvalidAward
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[p.UserID]
	if !ok {
		return model.ScoreEvent{}, ErrNotFound
	}

	if p.Reason == model.ReasonDailySignIn {
		bucket := dayBucket(s.now())
		days := s.signins[p.UserID]
		if _, claimed := days[bucket]; claimed {
			return model.ScoreEvent{}, ErrDuplicateSignIn
		}
		if days == nil {
			days = make(map[time.Time]struct{})
			s.signins[p.UserID] = days
		}
		days[bucket] = struct{}{}
	}

	e := model.ScoreEvent{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		Score:     p.Points,
		Reason:    p.Reason,
		CreatedAt: s.now(),
	}
	if len(p.Metadata) > 0 {
		e.Metadata = make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			e.Metadata[k] = v
		}
	}

	s.events[p.UserID] = append(s.events[p.UserID], e)
	u.Score += p.Points
	s.users[p.UserID] = u

	return e, nil
}

// CreateUser inserts a user record.
func (s *MemStore) CreateUser(ctx context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return nil
}

// GetUser returns a user or ErrNotFound.
func (s *MemStore) GetUser(ctx context.Context, userID string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

// TopUsers returns users with score >= minScore, best first.
func (s *MemStore) TopUsers(ctx context.Context, minScore, limit int) ([]model.User, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		if u.Score >= minScore {
			users = append(users, u)
		}
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].Score != users[j].Score {
			return users[i].Score > users[j].Score
		}
		return users[i].ID < users[j].ID
	})

	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

// EventsByUser returns the user's most recent ledger events.
func (s *MemStore) EventsByUser(ctx context.Context, userID string, limit int) ([]model.ScoreEvent, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.events[userID]
	n := len(all)
	if n > limit {
		n = limit
	}

	// Events accumulate in append order; serve newest first.
	out := make([]model.ScoreEvent, 0, n)
	for i := len(all) - 1; i >= len(all)-n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// CountUsers returns the number of tracked users.
func (s *MemStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// CountActivities returns the number of logged activities for a user.
func (s *MemStore) CountActivities(ctx context.Context, userID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activityCounts[userID], nil
}

// CountTodos returns the number of to-do items for a user.
func (s *MemStore) CountTodos(ctx context.Context, userID string, completedOnly bool) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if completedOnly {
		return s.todoCompleted[userID], nil
	}
	return s.todoTotals[userID], nil
}

// SetActivityCount seeds the tracking-side activity count for a user.
func (s *MemStore) SetActivityCount(userID string, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activityCounts[userID] = n
}

// SetTodoCounts seeds the tracking-side to-do counts for a user.
func (s *MemStore) SetTodoCounts(userID string, total, completed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.todoTotals[userID] = total
	s.todoCompleted[userID] = completed
}
