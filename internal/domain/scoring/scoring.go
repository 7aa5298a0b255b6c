// Package scoring defines the point-pricing rules for awards.
package scoring

// Fallback applied when an activity type or to-do priority is not in
// the table. Unknown categories are priced, never rejected, so new
// activity kinds cannot block scoring.
const fallbackPoints = 1

const defaultDailySignInPoints = 2

// Option applies a configuration option to the PointTable.
type Option func(*PointTable)

// WithActivityPoints replaces the activity point table.
func WithActivityPoints(points map[string]int) Option {
	return func(t *PointTable) {
		t.activityPoints = make(map[string]int, len(points))
		for kind, p := range points {
			if p > 0 {
				t.activityPoints[kind] = p
			}
		}
	}
}

// WithTodoPoints replaces the to-do priority point table.
func WithTodoPoints(points map[string]int) Option {
	return func(t *PointTable) {
		t.todoPoints = make(map[string]int, len(points))
		for priority, p := range points {
			if p > 0 {
				t.todoPoints[priority] = p
			}
		}
	}
}

// WithDailySignInPoints sets the fixed daily sign-in bonus.
func WithDailySignInPoints(points int) Option {
	return func(t *PointTable) {
		if points > 0 {
			t.dailySignInPoints = points
		}
	}
}

// PointTable prices awards. It is immutable after construction; callers
// needing deterministic behavior construct their own rather than sharing
// a module-wide default.
type PointTable struct {
	activityPoints    map[string]int
	todoPoints        map[string]int
	dailySignInPoints int
}

// NewPointTable creates a point table with the product defaults,
// overridable through options.
func NewPointTable(opts ...Option) *PointTable {
	t := &PointTable{
		activityPoints: map[string]int{
			"feeding":     5,
			"sleep":       5,
			"diaper":      3,
			"poop":        3,
			"doctor":      10,
			"temperature": 8,
			"medication":  8,
			"vaccination": 15,
			"milestone":   20,
			"growth":      10,
		},
		todoPoints: map[string]int{
			"low":    3,
			"medium": 5,
			"high":   8,
		},
		dailySignInPoints: defaultDailySignInPoints,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// ActivityPoints returns the point value for an activity type.
func (t *PointTable) ActivityPoints(activityType string) int {
	if p, ok := t.activityPoints[activityType]; ok {
		return p
	}
	return fallbackPoints
}

// TodoPoints returns the point value for a to-do priority.
func (t *PointTable) TodoPoints(priority string) int {
	if p, ok := t.todoPoints[priority]; ok {
		return p
	}
	return fallbackPoints
}

// DailySignInPoints returns the fixed daily sign-in bonus.
func (t *PointTable) DailySignInPoints() int {
	return t.dailySignInPoints
}
