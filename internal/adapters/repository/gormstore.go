package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/abelbejiga/cradle/internal/domain/model"
	"github.com/abelbejiga/cradle/pkg/metrics"
)

// MySQL-backed Store implementation.
//
// Atomicity: Award runs the ledger insert and the counter increment in
// one transaction. Daily sign-in dedup rides on the composite unique
// index over (user_id, reason, day_bucket); the bucket column is only
// populated for daily_signin rows, so MySQL's NULL semantics keep other
// reasons out of the constraint.

// userRow mirrors the users table.
type userRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	DisplayName string `gorm:"size:191"`
	ShowName    bool
	Score       int `gorm:"index"`
	CreatedAt   time.Time
}

func (userRow) TableName() string { return "users" }

// scoreEventRow mirrors the score_events ledger table.
type scoreEventRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	UserID    string `gorm:"size:64;index;uniqueIndex:uq_signin_day"`
	Score     int
	Reason    string     `gorm:"size:32;uniqueIndex:uq_signin_day"`
	DayBucket *time.Time `gorm:"uniqueIndex:uq_signin_day"`
	Metadata  *string    `gorm:"size:1024"`
	CreatedAt time.Time  `gorm:"index"`
}

func (scoreEventRow) TableName() string { return "score_events" }

// activityRow and todoRow are owned by the tracking side of the
// product; this service only counts them for stats.
type activityRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	UserID    string `gorm:"size:64;index"`
	Type      string `gorm:"size:32"`
	CreatedAt time.Time
}

func (activityRow) TableName() string { return "activities" }

type todoRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	UserID    string `gorm:"size:64;index"`
	Priority  string `gorm:"size:16"`
	Completed bool
	CreatedAt time.Time
}

func (todoRow) TableName() string { return "todos" }

// GormOption applies a configuration option to the GormStore.
type GormOption func(*GormStore)

// WithNow overrides the clock used for day bucketing.
func WithNow(now func() time.Time) GormOption {
	return func(s *GormStore) {
		if now != nil {
			s.now = now
		}
	}
}

// GormStore implements Store on a gorm DB handle.
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// Dial opens a MySQL connection suitable for NewGormStore. Duplicated
// key errors are translated so the store can map them to
// ErrDuplicateSignIn.
func Dial(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return db, nil
}

// NewGormStore creates a MySQL-backed store.
func NewGormStore(db *gorm.DB, opts ...GormOption) *GormStore {
	s := &GormStore{
		db:  db,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Migrate creates or updates the tables this store touches. Intended
// for dev and test environments; production schemas are managed
// externally.
func (s *GormStore) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&userRow{},
		&scoreEventRow{},
		&activityRow{},
		&todoRow{},
	)
	if err != nil {
		return fmt.Errorf("migrate scoring tables: %w", err)
	}
	return nil
}

// Award appends one ledger event and increments the user's score inside
// a single transaction.
func (s *GormStore) Award(ctx context.Context, p AwardParams) (model.ScoreEvent, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreOpLatency("award", float64(time.Since(start).Milliseconds()))
	}()

	if p.UserID == "" || p.Reason == "" || p.Points <= 0 {
		return model.ScoreEvent{}, ErrInvalidAward
	}

	row := scoreEventRow{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		Score:     p.Points,
		Reason:    p.Reason,
		CreatedAt: s.now(),
	}
	if p.Reason == model.ReasonDailySignIn {
		bucket := dayBucket(s.now())
		row.DayBucket = &bucket
	}
	if len(p.Metadata) > 0 {
		raw, err := json.Marshal(p.Metadata)
		if err != nil {
			return model.ScoreEvent{}, fmt.Errorf("marshal award metadata: %w", err)
		}
		text := string(raw)
		row.Metadata = &text
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		res := tx.Model(&userRow{}).
			Where("id = ?", p.UserID).
			UpdateColumn("score", gorm.Expr("score + ?", p.Points))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.ScoreEvent{}, ErrDuplicateSignIn
		}
		if errors.Is(err, ErrNotFound) {
			return model.ScoreEvent{}, ErrNotFound
		}
		return model.ScoreEvent{}, fmt.Errorf("award points: %w", err)
	}

	return eventFromRow(row), nil
}

// CreateUser inserts a user record.
func (s *GormStore) CreateUser(ctx context.Context, u model.User) error {
	row := userRow{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		ShowName:    u.ShowName,
		Score:       u.Score,
		CreatedAt:   u.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = s.now()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser returns a user or ErrNotFound.
func (s *GormStore) GetUser(ctx context.Context, userID string) (model.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, fmt.Errorf("get user: %w", err)
	}
	return userFromRow(row), nil
}

// TopUsers returns users with score >= minScore, best first.
func (s *GormStore) TopUsers(ctx context.Context, minScore, limit int) ([]model.User, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreOpLatency("top_users", float64(time.Since(start).Milliseconds()))
	}()

	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	var rows []userRow
	err := s.db.WithContext(ctx).
		Where("score >= ?", minScore).
		Order("score DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query top users: %w", err)
	}

	users := make([]model.User, len(rows))
	for i, row := range rows {
		users[i] = userFromRow(row)
	}
	return users, nil
}

// EventsByUser returns the user's most recent ledger events.
func (s *GormStore) EventsByUser(ctx context.Context, userID string, limit int) ([]model.ScoreEvent, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	var rows []scoreEventRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query score events: %w", err)
	}

	events := make([]model.ScoreEvent, len(rows))
	for i, row := range rows {
		events[i] = eventFromRow(row)
	}
	return events, nil
}

// CountUsers returns the number of tracked users.
func (s *GormStore) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CountActivities returns the number of logged activities for a user.
func (s *GormStore) CountActivities(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&activityRow{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}

// CountTodos returns the number of to-do items for a user.
func (s *GormStore) CountTodos(ctx context.Context, userID string, completedOnly bool) (int64, error) {
	q := s.db.WithContext(ctx).Model(&todoRow{}).Where("user_id = ?", userID)
	if completedOnly {
		q = q.Where("completed = ?", true)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count todos: %w", err)
	}
	return n, nil
}

// dayBucket truncates t to local midnight.
func dayBucket(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func userFromRow(row userRow) model.User {
	return model.User{
		ID:          row.ID,
		DisplayName: row.DisplayName,
		ShowName:    row.ShowName,
		Score:       row.Score,
		CreatedAt:   row.CreatedAt,
	}
}

func eventFromRow(row scoreEventRow) model.ScoreEvent {
	e := model.ScoreEvent{
		ID:        row.ID,
		UserID:    row.UserID,
		Score:     row.Score,
		Reason:    row.Reason,
		CreatedAt: row.CreatedAt,
	}
	if row.Metadata != nil {
		// Unparseable metadata degrades to nil rather than failing the read.
		var md map[string]string
		if err := json.Unmarshal([]byte(*row.Metadata), &md); err == nil {
			e.Metadata = md
		}
	}
	return e
}
