// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MySQLDSN is the connection string for the scoring database.
	// Ignored when UseMemoryStore is set.
	MySQLDSN string `koanf:"mysql_dsn"`

	// UseMemoryStore swaps the MySQL store for the in-memory one.
	// Meant for local development; state does not survive restarts.
	UseMemoryStore bool `koanf:"use_memory_store"`

	// AutoMigrate runs schema migration on startup (dev only).
	AutoMigrate bool `koanf:"auto_migrate"`

	// EnableDevEndpoints registers seeding routes like POST /dev/users.
	EnableDevEndpoints bool `koanf:"enable_dev_endpoints"`

	// RedisAddr enables the leaderboard cache when non-empty.
	RedisAddr string `koanf:"redis_addr"`

	// CacheTTLSeconds bounds leaderboard cache staleness.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// LeaderboardCap caps the number of rows a leaderboard query returns.
	LeaderboardCap int `koanf:"leaderboard_cap"`

	// ActivityPoints maps activity types to point values.
	ActivityPoints map[string]int `koanf:"activity_points"`

	// TodoPoints maps to-do priorities to point values.
	TodoPoints map[string]int `koanf:"todo_points"`

	// DailySignInPoints is the fixed once-per-day bonus.
	DailySignInPoints int `koanf:"daily_signin_points"`
}

// New creates a Config with product defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8080",
		MySQLDSN:           "cradle:cradle@tcp(127.0.0.1:3306)/cradle?parseTime=true",
		UseMemoryStore:     false,
		AutoMigrate:        false,
		EnableDevEndpoints: false,
		RedisAddr:          "",
		CacheTTLSeconds:    30,
		LeaderboardCap:     50,
		ActivityPoints: map[string]int{
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
		TodoPoints: map[string]int{
			"low":    3,
			"medium": 5,
			"high":   8,
		},
		DailySignInPoints: 2,
	}
}
