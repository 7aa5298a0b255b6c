// Package repository defines the scoring store interface and errors.
package repository

import (
	"context"

	"github.com/abelbejiga/cradle/internal/domain/model"
)

// AwardParams carries everything needed to persist one point award.
type AwardParams struct {
	UserID   string
	Points   int
	Reason   string
	Metadata map[string]string
}

// Store provides read/write access to scoring state.
//
// Award is the only mutating operation: one ledger insert plus one
// counter increment, atomic with respect to failures and to concurrent
// awards for the same user. Everything else is a read.
type Store interface {
	// Award appends a ScoreEvent and increments the user's score in a
	// single transaction. Daily sign-in events carry a day bucket that
	// is unique per (user, reason, day); a same-day repeat returns
	// ErrDuplicateSignIn without granting points.
	Award(ctx context.Context, p AwardParams) (model.ScoreEvent, error)

	// CreateUser inserts a user record. Used by seeding and dev tooling;
	// production accounts are provisioned outside this service.
	CreateUser(ctx context.Context, u model.User) error

	// GetUser returns a user or ErrNotFound.
	GetUser(ctx context.Context, userID string) (model.User, error)

	// TopUsers returns users with score >= minScore, ordered by score
	// descending, capped at limit.
	TopUsers(ctx context.Context, minScore, limit int) ([]model.User, error)

	// EventsByUser returns the user's most recent events, newest first.
	EventsByUser(ctx context.Context, userID string, limit int) ([]model.ScoreEvent, error)

	// CountUsers returns the number of tracked users.
	CountUsers(ctx context.Context) (int64, error)

	// CountActivities returns the number of logged activities for a user.
	CountActivities(ctx context.Context, userID string) (int64, error)

	// CountTodos returns the number of to-do items for a user,
	// optionally restricted to completed ones.
	CountTodos(ctx context.Context, userID string, completedOnly bool) (int64, error)
}
