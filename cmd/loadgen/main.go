// Command loadgen generates synthetic award traffic against a running
// scoring service and reads the leaderboard back. Useful for smoke
// testing a deployment and warming dashboards.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Default configuration constants.
const (
	defaultNumAwards = 1000
	defaultUsers     = 50
	defaultWorkers   = 8
	defaultTimeout   = 10 * time.Second
	maxRunDuration   = 5 * time.Minute
)

var activityTypes = []string{
	"feeding", "sleep", "diaper", "poop", "doctor",
	"temperature", "medication", "vaccination", "milestone", "growth",
}

var todoPriorities = []string{"low", "medium", "high"}

type generator struct {
	baseURL string
	client  *http.Client
	rng     *rand.Rand

	posted atomic.Int64
	failed atomic.Int64
}

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8080", "Base URL of the service")
		numAwards = flag.Int("awards", defaultNumAwards, "Number of awards to submit")
		numUsers  = flag.Int("users", defaultUsers, "Number of distinct user IDs to spread awards over")
		workers   = flag.Int("workers", defaultWorkers, "Number of concurrent workers")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), maxRunDuration)
	defer cancel()

	g := &generator{
		baseURL: *baseURL,
		client:  &http.Client{Timeout: *timeout},
		rng:     rand.New(rand.NewSource(*seed)), //nolint:gosec // load generation, not crypto
	}

	if err := g.run(ctx, *numAwards, *numUsers, *workers); err != nil {
		os.Stderr.WriteString("loadgen failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func (g *generator) run(ctx context.Context, numAwards, numUsers, workers int) error {
	userIDs := make([]string, numUsers)
	for i := range userIDs {
		userIDs[i] = fmt.Sprintf("loadgen-user-%04d", i)
	}

	// Seed users through the dev endpoint; requires the service to run
	// with dev endpoints enabled.
	for _, id := range userIDs {
		body := map[string]string{"id": id, "display_name": "Load Gen " + id}
		if err := g.post(ctx, "/dev/users", body); err != nil {
			return fmt.Errorf("seed user %s (is CRADLE_ENABLE_DEV_ENDPOINTS set?): %w", id, err)
		}
	}

	type job struct {
		endpoint string
		body     map[string]string
	}
	jobs := make(chan job, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := g.post(ctx, j.endpoint, j.body); err != nil {
					g.failed.Add(1)
					continue
				}
				g.posted.Add(1)
			}
		}()
	}

	start := time.Now()
	for i := 0; i < numAwards; i++ {
		userID := userIDs[g.rng.Intn(len(userIDs))]
		switch g.rng.Intn(3) {
		case 0:
			jobs <- job{"/scoring/activity", map[string]string{"user_id": userID, "activity_type": activityTypes[g.rng.Intn(len(activityTypes))]}}
		case 1:
			jobs <- job{"/scoring/todo", map[string]string{"user_id": userID, "priority": todoPriorities[g.rng.Intn(len(todoPriorities))]}}
		default:
			jobs <- job{"/scoring/daily-signin", map[string]string{"user_id": userID}}
		}
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(start)
	fmt.Printf("submitted %d awards (%d failed) in %s\n", g.posted.Load(), g.failed.Load(), elapsed.Round(time.Millisecond))

	return g.printLeaderboard(ctx)
}

func (g *generator) post(ctx context.Context, endpoint string, body map[string]string) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+endpoint, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s returned %d", endpoint, resp.StatusCode)
	}
	return nil
}

func (g *generator) printLeaderboard(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/scoring/leaderboard?min_score=1", nil)
	if err != nil {
		return err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	var entries []struct {
		Rank        int    `json:"rank"`
		DisplayName string `json:"display_name"`
		Score       int    `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return fmt.Errorf("decode leaderboard: %w", err)
	}

	fmt.Printf("leaderboard (%d entries):\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  %3d. %-20s %d\n", e.Rank, e.DisplayName, e.Score)
	}
	return nil
}
