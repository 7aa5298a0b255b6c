// Package service provides the scoring service that implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/abelbejiga/cradle/internal/adapters/cache"
	repository "github.com/abelbejiga/cradle/internal/adapters/repository"
	"github.com/abelbejiga/cradle/internal/domain/model"
	"github.com/abelbejiga/cradle/internal/domain/privacy"
	"github.com/abelbejiga/cradle/internal/domain/scoring"
	"github.com/abelbejiga/cradle/pkg/logger"
	"github.com/abelbejiga/cradle/pkg/metrics"
)

// Leaderboard and history defaults from the product rules.
const (
	defaultMinScore     = 10
	leaderboardCap      = 50
	defaultHistoryLimit = 20
)

// AlreadySignedInMessage is the expected-outcome message for a repeated
// daily sign-in. Callers render it as informational, not as a failure.
const AlreadySignedInMessage = "Already signed in today"

// AwardResult reports the outcome of an award call. Persistence errors
// surface here rather than as a returned error so callers always check
// the flag; Err carries the cause for logs and status mapping.
type AwardResult struct {
	Success bool   `json:"success"`
	Points  int    `json:"points,omitempty"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPointTable replaces the pricing rules.
func WithPointTable(table *scoring.PointTable) Option {
	return func(s *Service) {
		if table != nil {
			s.points = table
		}
	}
}

// WithBoardCache enables read-through caching of leaderboard queries.
func WithBoardCache(boards *cache.Board) Option {
	return func(s *Service) {
		s.boards = boards
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithLeaderboardCap bounds the number of leaderboard rows returned.
func WithLeaderboardCap(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.leaderboardCap = n
		}
	}
}

// Service owns the point-award rules and the read paths for
// leaderboard, history, and stats display.
type Service struct {
	store  repository.Store
	boards *cache.Board
	points *scoring.PointTable

	leaderboardCap int

	logger logger.Logger
}

// New constructs a Service over a store. Tests construct their own
// instance with an explicit point table instead of relying on shared
// defaults.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:          store,
		points:         scoring.NewPointTable(),
		leaderboardCap: leaderboardCap,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	return s
}

// AwardPoints persists one ledger event and the matching counter
// increment. The duplicate daily sign-in is returned as an expected
// outcome; any other store failure is logged and wrapped in the result.
func (s *Service) AwardPoints(ctx context.Context, userID string, points int, reason string, metadata map[string]string) AwardResult {
	_, err := s.store.Award(ctx, repository.AwardParams{
		UserID:   userID,
		Points:   points,
		Reason:   reason,
		Metadata: metadata,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSignIn) {
			metrics.RecordDuplicateSignIn()
			return AwardResult{Success: false, Message: AlreadySignedInMessage}
		}
		s.logger.Error(ctx, "award failed",
			logger.String("userID", userID),
			logger.String("reason", reason),
			logger.Int("points", points),
			logger.Error(err),
		)
		metrics.RecordAwardError()
		return AwardResult{Success: false, Err: fmt.Errorf("award %s: %w", reason, err)}
	}

	metrics.RecordAward(reason, points)
	s.invalidateBoards(ctx)

	s.logger.Debug(ctx, "points awarded",
		logger.String("userID", userID),
		logger.String("reason", reason),
		logger.Int("points", points),
	)
	return AwardResult{Success: true, Points: points}
}

// AwardActivityPoints prices an activity type and awards it. Unknown
// types get the fallback price; they are never rejected.
func (s *Service) AwardActivityPoints(ctx context.Context, userID, activityType string) AwardResult {
	points := s.points.ActivityPoints(activityType)
	return s.AwardPoints(ctx, userID, points, model.ReasonActivityLogged,
		map[string]string{"activityType": activityType})
}

// AwardTodoPoints prices a completed to-do by priority and awards it.
func (s *Service) AwardTodoPoints(ctx context.Context, userID, priority string) AwardResult {
	points := s.points.TodoPoints(priority)
	return s.AwardPoints(ctx, userID, points, model.ReasonTodoCompleted,
		map[string]string{"priority": priority})
}

// AwardDailySignIn grants the fixed daily bonus at most once per
// calendar day. The store's unique day bucket makes the check and the
// award a single atomic step.
func (s *Service) AwardDailySignIn(ctx context.Context, userID string) AwardResult {
	return s.AwardPoints(ctx, userID, s.points.DailySignInPoints(), model.ReasonDailySignIn, nil)
}

// CreateUser inserts a user record. Exposed for seeding and dev
// tooling; production accounts are provisioned outside this service.
func (s *Service) CreateUser(ctx context.Context, u model.User) error {
	if err := s.store.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// Leaderboard returns ranked, privacy-redacted users with score >=
// minScore. Ranks are positional: equal scores get consecutive distinct
// ranks. A negative minScore selects the default threshold.
func (s *Service) Leaderboard(ctx context.Context, minScore int) ([]model.LeaderboardEntry, error) {
	if minScore < 0 {
		minScore = defaultMinScore
	}
	metrics.RecordLeaderboardQuery()

	if s.boards != nil {
		if entries, err := s.boards.Get(ctx, minScore); err == nil {
			return entries, nil
		}
	}

	users, err := s.store.TopUsers(ctx, minScore, s.leaderboardCap)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	entries := make([]model.LeaderboardEntry, len(users))
	for i, u := range users {
		entries[i] = model.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      u.ID,
			DisplayName: privacy.DisplayName(u.DisplayName, u.ShowName),
			Score:       u.Score,
			MemberSince: u.CreatedAt,
		}
	}

	if s.boards != nil {
		if err := s.boards.Put(ctx, minScore, entries); err != nil {
			// Serving a fresh board beats failing on a cache write.
			s.logger.Warn(ctx, "leaderboard cache write failed", logger.Error(err))
		}
	}

	return entries, nil
}

// ScoreHistory returns the user's most recent awards, newest first,
// with metadata deserialized. A non-positive limit selects the default.
func (s *Service) ScoreHistory(ctx context.Context, userID string, limit int) ([]model.HistoryEntry, error) {
	if limit < 1 {
		limit = defaultHistoryLimit
	}

	events, err := s.store.EventsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("load score history: %w", err)
	}

	entries := make([]model.HistoryEntry, len(events))
	for i, e := range events {
		entries[i] = model.HistoryEntry{
			ID:        e.ID,
			Score:     e.Score,
			Reason:    e.Reason,
			Metadata:  e.Metadata,
			Timestamp: e.CreatedAt,
		}
	}
	return entries, nil
}

// UserStats aggregates the user's score and tracking counts. An unknown
// user reads as zero score rather than an error, matching the display
// contract.
func (s *Service) UserStats(ctx context.Context, userID string) (model.UserStats, error) {
	stats := model.UserStats{}

	u, err := s.store.GetUser(ctx, userID)
	switch {
	case err == nil:
		stats.TotalScore = u.Score
	case errors.Is(err, repository.ErrNotFound):
		// zero score
	default:
		return model.UserStats{}, fmt.Errorf("load user: %w", err)
	}

	if stats.ActivityCount, err = s.store.CountActivities(ctx, userID); err != nil {
		return model.UserStats{}, fmt.Errorf("count activities: %w", err)
	}
	if stats.CompletedTodos, err = s.store.CountTodos(ctx, userID, true); err != nil {
		return model.UserStats{}, fmt.Errorf("count completed todos: %w", err)
	}
	if stats.TotalTodos, err = s.store.CountTodos(ctx, userID, false); err != nil {
		return model.UserStats{}, fmt.Errorf("count todos: %w", err)
	}

	if stats.TotalTodos > 0 {
		stats.TodoCompletionRate = float64(stats.CompletedTodos) / float64(stats.TotalTodos) * 100
	}
	return stats, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()

	stats := map[string]interface{}{
		"leaderboardCap": s.leaderboardCap,
		"cacheEnabled":   s.boards != nil,
	}

	if n, err := s.store.CountUsers(ctx); err == nil {
		stats["totalUsers"] = n
		metrics.UpdateTotalUsers(int(n))
	}

	return stats
}

// invalidateBoards drops cached leaderboards after a successful award.
func (s *Service) invalidateBoards(ctx context.Context) {
	if s.boards == nil {
		return
	}
	if err := s.boards.Invalidate(ctx); err != nil {
		s.logger.Warn(ctx, "leaderboard cache invalidation failed", logger.Error(err))
	}
}
