package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/abelbejiga/cradle/internal/adapters/cache"
	"github.com/abelbejiga/cradle/internal/adapters/http/api"
	repository "github.com/abelbejiga/cradle/internal/adapters/repository"
	app "github.com/abelbejiga/cradle/internal/app"
	"github.com/abelbejiga/cradle/internal/config"
	"github.com/abelbejiga/cradle/internal/domain/scoring"
	"github.com/abelbejiga/cradle/pkg/logger"
	"github.com/abelbejiga/cradle/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// we collect our own system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := buildStore(ctx, cfg, log)
	if err != nil {
		os.Stderr.WriteString("failed to set up store: " + err.Error() + "\n")
		return
	}

	opts := []app.Option{
		app.WithLogger(log),
		app.WithLeaderboardCap(cfg.LeaderboardCap),
		app.WithPointTable(scoring.NewPointTable(
			scoring.WithActivityPoints(cfg.ActivityPoints),
			scoring.WithTodoPoints(cfg.TodoPoints),
			scoring.WithDailySignInPoints(cfg.DailySignInPoints),
		)),
	}

	if cfg.RedisAddr != "" {
		rds := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rds.Ping(ctx).Err(); err != nil {
			os.Stderr.WriteString("failed to connect to redis: " + err.Error() + "\n")
			return
		}
		defer func() { _ = rds.Close() }()
		boards := cache.NewBoard(rds, cache.WithTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second))
		opts = append(opts, app.WithBoardCache(boards))
		log.Info(ctx, "leaderboard cache enabled", logger.String("redis_addr", cfg.RedisAddr))
	}

	svc := app.New(store, opts...)

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)
	if cfg.EnableDevEndpoints {
		log.Warn(ctx, "dev endpoints enabled; do not run this in production")
		apiServer.RegisterDev(ctx, mux, svc)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildStore wires the configured persistence backend.
func buildStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	if cfg.UseMemoryStore {
		log.Warn(ctx, "using in-memory store; state will not survive restarts")
		return repository.NewMemStore(), nil
	}

	db, err := repository.Dial(cfg.MySQLDSN)
	if err != nil {
		return nil, err
	}
	store := repository.NewGormStore(db)
	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			return nil, err
		}
		log.Info(ctx, "schema migration complete")
	}
	return store, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that refreshes service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// GetStats refreshes the gauges as a side effect.
			svc.GetStats()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
