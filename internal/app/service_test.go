package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	repository "github.com/abelbejiga/cradle/internal/adapters/repository"
	service "github.com/abelbejiga/cradle/internal/app"
	"github.com/abelbejiga/cradle/internal/domain/model"
	"github.com/abelbejiga/cradle/internal/domain/scoring"
	"github.com/abelbejiga/cradle/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// newFixture builds a service over a fresh in-memory store with a
// controllable clock.
func newFixture(now *time.Time) (*service.Service, *repository.MemStore) {
	store := repository.NewMemStore(repository.WithMemNow(func() time.Time { return *now }))
	svc := service.New(store, service.WithPointTable(scoring.NewPointTable()))
	return svc, store
}

func mustCreateUser(store *repository.MemStore, u model.User) {
	if err := store.CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
}

func TestService_AwardActivityPoints(t *testing.T) {
	Convey("Given a service with a known user", t, func() {
		now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local)
		svc, store := newFixture(&now)
		mustCreateUser(store, model.User{ID: "u1", DisplayName: "Jane Doe", ShowName: true})
		ctx := context.Background()

		Convey("When logging a vaccination", func() {
			res := svc.AwardActivityPoints(ctx, "u1", "vaccination")

			Convey("Then it grants exactly 15 points", func() {
				So(res.Success, ShouldBeTrue)
				So(res.Points, ShouldEqual, 15)
			})

			Convey("And the metadata survives the round-trip through history", func() {
				history, err := svc.ScoreHistory(ctx, "u1", 0)
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 1)
				So(history[0].Reason, ShouldEqual, model.ReasonActivityLogged)
				So(history[0].Metadata, ShouldResemble, map[string]string{"activityType": "vaccination"})
			})
		})

		Convey("When logging an unknown activity type", func() {
			res := svc.AwardActivityPoints(ctx, "u1", "unknown-type")

			Convey("Then it grants the 1-point fallback instead of rejecting", func() {
				So(res.Success, ShouldBeTrue)
				So(res.Points, ShouldEqual, 1)
			})
		})

		Convey("When awarding to a user that does not exist", func() {
			res := svc.AwardActivityPoints(ctx, "nobody", "feeding")

			Convey("Then the result carries the failure instead of panicking", func() {
				So(res.Success, ShouldBeFalse)
				So(errors.Is(res.Err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_AwardTodoPoints(t *testing.T) {
	Convey("Given a service with a known user", t, func() {
		now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local)
		svc, store := newFixture(&now)
		mustCreateUser(store, model.User{ID: "u1"})
		ctx := context.Background()

		Convey("When completing to-dos of each priority", func() {
			So(svc.AwardTodoPoints(ctx, "u1", "low").Points, ShouldEqual, 3)
			So(svc.AwardTodoPoints(ctx, "u1", "medium").Points, ShouldEqual, 5)
			So(svc.AwardTodoPoints(ctx, "u1", "high").Points, ShouldEqual, 8)
		})

		Convey("When completing a to-do with an unknown priority", func() {
			res := svc.AwardTodoPoints(ctx, "u1", "urgent")

			Convey("Then it grants the fallback point", func() {
				So(res.Success, ShouldBeTrue)
				So(res.Points, ShouldEqual, 1)
			})
		})
	})
}

func TestService_AwardDailySignIn(t *testing.T) {
	Convey("Given a service with a known user", t, func() {
		now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local)
		svc, store := newFixture(&now)
		mustCreateUser(store, model.User{ID: "u1"})
		ctx := context.Background()

		Convey("When signing in twice on the same day", func() {
			first := svc.AwardDailySignIn(ctx, "u1")
			now = now.Add(4 * time.Hour)
			second := svc.AwardDailySignIn(ctx, "u1")

			Convey("Then only the first sign-in grants the bonus", func() {
				So(first.Success, ShouldBeTrue)
				So(first.Points, ShouldEqual, 2)
				So(second.Success, ShouldBeFalse)
				So(second.Message, ShouldEqual, service.AlreadySignedInMessage)
				So(second.Err, ShouldBeNil)
			})

			Convey("And exactly one sign-in event exists", func() {
				history, err := svc.ScoreHistory(ctx, "u1", 0)
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 1)
				So(history[0].Reason, ShouldEqual, model.ReasonDailySignIn)
			})

			Convey("And the score was incremented exactly once", func() {
				u, err := store.GetUser(ctx, "u1")
				So(err, ShouldBeNil)
				So(u.Score, ShouldEqual, 2)
			})
		})

		Convey("When signing in again after midnight", func() {
			So(svc.AwardDailySignIn(ctx, "u1").Success, ShouldBeTrue)
			now = now.AddDate(0, 0, 1)
			res := svc.AwardDailySignIn(ctx, "u1")

			Convey("Then the new day grants a fresh bonus", func() {
				So(res.Success, ShouldBeTrue)
				So(res.Points, ShouldEqual, 2)
			})
		})
	})
}

func TestService_ScoreInvariant(t *testing.T) {
	Convey("Given a service with a known user", t, func() {
		now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local)
		svc, store := newFixture(&now)
		mustCreateUser(store, model.User{ID: "u1"})
		ctx := context.Background()

		Convey("When awarding a mixed sequence", func() {
			svc.AwardActivityPoints(ctx, "u1", "feeding")     // 5
			svc.AwardActivityPoints(ctx, "u1", "milestone")   // 20
			svc.AwardTodoPoints(ctx, "u1", "high")            // 8
			svc.AwardDailySignIn(ctx, "u1")                   // 2
			svc.AwardDailySignIn(ctx, "u1")                   // rejected
			svc.AwardActivityPoints(ctx, "u1", "not-a-thing") // 1

			Convey("Then the counter equals the sum of the ledger", func() {
				u, err := store.GetUser(ctx, "u1")
				So(err, ShouldBeNil)

				history, err := svc.ScoreHistory(ctx, "u1", 100)
				So(err, ShouldBeNil)

				sum := 0
				for _, e := range history {
					sum += e.Score
				}
				So(u.Score, ShouldEqual, sum)
				So(u.Score, ShouldEqual, 36)
			})
		})
	})
}

func TestService_Leaderboard(t *testing.T) {
	Convey("Given users with scores 50, 10, 9, and 100", t, func() {
		now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local)
		svc, store := newFixture(&now)
		ctx := context.Background()

		mustCreateUser(store, model.User{ID: "a", DisplayName: "Alice Smith", ShowName: true, Score: 50})
		mustCreateUser(store, model.User{ID: "b", DisplayName: "Bob Jones", ShowName: true, Score: 10})
		mustCreateUser(store, model.User{ID: "c", DisplayName: "Carol White", ShowName: true, Score: 9})
		mustCreateUser(store, model.User{ID: "d", DisplayName: "Dave Brown", ShowName: false, Score: 100})

		Convey("When reading the board with the default threshold", func() {
			entries, err := svc.Leaderboard(ctx, -1)

			Convey("Then scores below 10 are excluded", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 3)
			})

			Convey("And entries are ordered by score with positional ranks", func() {
				So(entries[0].Score, ShouldEqual, 100)
				So(entries[1].Score, ShouldEqual, 50)
				So(entries[2].Score, ShouldEqual, 10)
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Rank, ShouldEqual, 2)
				So(entries[2].Rank, ShouldEqual, 3)
			})

			Convey("And display names are privacy-redacted", func() {
				So(entries[0].DisplayName, ShouldEqual, "Anonymous") // opted out
				So(entries[1].DisplayName, ShouldEqual, "Alice S.")
				So(entries[2].DisplayName, ShouldEqual, "Bob J.")
			})
		})

		Convey("When reading the board with an explicit threshold", func() {
			entries, err := svc.Leaderboard(ctx, 51)

			Convey("Then only qualifying users appear", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].UserID, ShouldEqual, "d")
			})
		})
	})

	Convey("Given more qualifying users than the configured cap", t, func() {
		now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local)
		store := repository.NewMemStore(repository.WithMemNow(func() time.Time { return now }))
		svc := service.New(store, service.WithLeaderboardCap(2))
		ctx := context.Background()

		mustCreateUser(store, model.User{ID: "a", Score: 30})
		mustCreateUser(store, model.User{ID: "b", Score: 20})
		mustCreateUser(store, model.User{ID: "c", Score: 40})

		Convey("Then the board is capped", func() {
			entries, err := svc.Leaderboard(ctx, 10)
			So(err, ShouldBeNil)
			So(entries, ShouldHaveLength, 2)
			So(entries[0].UserID, ShouldEqual, "c")
			So(entries[1].UserID, ShouldEqual, "a")
		})
	})
}

func TestService_UserStats(t *testing.T) {
	Convey("Given a service with seeded tracking counts", t, func() {
		now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local)
		svc, store := newFixture(&now)
		ctx := context.Background()

		mustCreateUser(store, model.User{ID: "u1", Score: 42})
		store.SetActivityCount("u1", 12)
		store.SetTodoCounts("u1", 4, 3)

		Convey("When reading the user's stats", func() {
			stats, err := svc.UserStats(ctx, "u1")

			Convey("Then the aggregates line up", func() {
				So(err, ShouldBeNil)
				So(stats.TotalScore, ShouldEqual, 42)
				So(stats.ActivityCount, ShouldEqual, 12)
				So(stats.CompletedTodos, ShouldEqual, 3)
				So(stats.TotalTodos, ShouldEqual, 4)
				So(stats.TodoCompletionRate, ShouldEqual, 75.0)
			})
		})

		Convey("When the user has no to-dos at all", func() {
			mustCreateUser(store, model.User{ID: "u2"})
			stats, err := svc.UserStats(ctx, "u2")

			Convey("Then the completion rate is zero, not a division error", func() {
				So(err, ShouldBeNil)
				So(stats.TodoCompletionRate, ShouldEqual, 0)
			})
		})

		Convey("When the user is unknown", func() {
			stats, err := svc.UserStats(ctx, "nobody")

			Convey("Then the total score reads as zero", func() {
				So(err, ShouldBeNil)
				So(stats.TotalScore, ShouldEqual, 0)
			})
		})
	})
}

func TestService_ScoreHistory(t *testing.T) {
	Convey("Given a user with several awards", t, func() {
		now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
		svc, store := newFixture(&now)
		mustCreateUser(store, model.User{ID: "u1"})
		ctx := context.Background()

		for i, kind := range []string{"feeding", "sleep", "diaper"} {
			now = now.Add(time.Duration(i+1) * time.Minute)
			svc.AwardActivityPoints(ctx, "u1", kind)
		}

		Convey("When reading the history", func() {
			history, err := svc.ScoreHistory(ctx, "u1", 2)

			Convey("Then it is newest first and honors the limit", func() {
				So(err, ShouldBeNil)
				So(history, ShouldHaveLength, 2)
				So(history[0].Metadata["activityType"], ShouldEqual, "diaper")
				So(history[1].Metadata["activityType"], ShouldEqual, "sleep")
				So(history[0].Timestamp.After(history[1].Timestamp), ShouldBeTrue)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a service with a few users", t, func() {
		now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
		svc, store := newFixture(&now)
		mustCreateUser(store, model.User{ID: "u1"})
		mustCreateUser(store, model.User{ID: "u2"})

		Convey("When reading service stats", func() {
			stats := svc.GetStats()

			Convey("Then it reports the tracked-user count", func() {
				So(stats["totalUsers"], ShouldEqual, int64(2))
				So(stats["cacheEnabled"], ShouldEqual, false)
			})
		})
	})
}
