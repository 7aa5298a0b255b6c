// Package model contains domain models passed between layers.
package model

import "time"

// Reason tags for score events. The ledger stores these verbatim.
const (
	ReasonActivityLogged = "activity_logged"
	ReasonTodoCompleted  = "todo_completed"
	ReasonDailySignIn    = "daily_signin"
)

// User is the account record the scoring service reads and increments.
// The rest of the user profile lives outside this service.
type User struct {
	ID          string
	DisplayName string
	// ShowName controls whether DisplayName may appear on the public board.
	ShowName  bool
	Score     int
	CreatedAt time.Time
}

// ScoreEvent is one immutable ledger entry: a single point award.
type ScoreEvent struct {
	ID     string
	UserID string
	Score  int
	Reason string
	// Metadata holds the award context, e.g. {"activityType":"feeding"}.
	// Stored serialized; nil when the award carried none.
	Metadata  map[string]string
	CreatedAt time.Time
}

// LeaderboardEntry is one row of the public board. DisplayName has
// already been privacy-redacted by the time it appears here.
type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	MemberSince time.Time `json:"member_since"`
}

// HistoryEntry is one row of a user's score history, newest first.
type HistoryEntry struct {
	ID        string            `json:"id"`
	Score     int               `json:"score"`
	Reason    string            `json:"reason"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// UserStats aggregates a user's scoring and tracking activity.
type UserStats struct {
	TotalScore         int     `json:"total_score"`
	ActivityCount      int64   `json:"activity_count"`
	CompletedTodos     int64   `json:"completed_todos"`
	TotalTodos         int64   `json:"total_todos"`
	TodoCompletionRate float64 `json:"todo_completion_rate"`
}
