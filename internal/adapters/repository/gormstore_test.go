package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldrv "github.com/go-sql-driver/mysql"
	. "github.com/smartystreets/goconvey/convey"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	repository "github.com/abelbejiga/cradle/internal/adapters/repository"
	"github.com/abelbejiga/cradle/internal/domain/model"
)

func newMockStore(t *testing.T) (*repository.GormStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}

	fixed := time.Date(2025, 6, 1, 8, 0, 0, 0, time.Local)
	store := repository.NewGormStore(gdb, repository.WithNow(func() time.Time { return fixed }))
	return store, mock
}

func TestGormStore_Award(t *testing.T) {
	Convey("Given a MySQL-backed store", t, func() {
		store, mock := newMockStore(t)
		ctx := context.Background()

		params := repository.AwardParams{
			UserID:   "u1",
			Points:   5,
			Reason:   model.ReasonActivityLogged,
			Metadata: map[string]string{"activityType": "feeding"},
		}

		Convey("When the insert and increment both succeed", func() {
			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO `score_events`").
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec("UPDATE `users` SET").
				WithArgs(5, "u1").
				WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectCommit()

			e, err := store.Award(ctx, params)

			Convey("Then the transaction commits and the event is returned", func() {
				So(err, ShouldBeNil)
				So(e.UserID, ShouldEqual, "u1")
				So(e.Score, ShouldEqual, 5)
				So(e.Metadata["activityType"], ShouldEqual, "feeding")
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the counter increment matches no user", func() {
			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO `score_events`").
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec("UPDATE `users` SET").
				WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectRollback()

			_, err := store.Award(ctx, params)

			Convey("Then the whole award rolls back with not found", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the increment fails", func() {
			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO `score_events`").
				WillReturnResult(sqlmock.NewResult(1, 1))
			mock.ExpectExec("UPDATE `users` SET").
				WillReturnError(errors.New("deadlock"))
			mock.ExpectRollback()

			_, err := store.Award(ctx, params)

			Convey("Then the insert does not survive on its own", func() {
				So(err, ShouldNotBeNil)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When the parameters are invalid", func() {
			_, err := store.Award(ctx, repository.AwardParams{UserID: "u1", Points: -3, Reason: "x"})

			Convey("Then no SQL runs at all", func() {
				So(err, ShouldEqual, repository.ErrInvalidAward)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})
	})
}

func TestGormStore_DuplicateSignIn(t *testing.T) {
	Convey("Given a store where the sign-in unique index fires", t, func() {
		store, mock := newMockStore(t)
		ctx := context.Background()

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO `score_events`").
			WillReturnError(&mysqldrv.MySQLError{Number: 1062, Message: "Duplicate entry"})
		mock.ExpectRollback()

		Convey("When awarding the daily sign-in a second time", func() {
			_, err := store.Award(ctx, repository.AwardParams{
				UserID: "u1",
				Points: 2,
				Reason: model.ReasonDailySignIn,
			})

			Convey("Then the constraint surfaces as a duplicate sign-in", func() {
				So(err, ShouldEqual, repository.ErrDuplicateSignIn)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})
	})
}

func TestGormStore_GetUser(t *testing.T) {
	Convey("Given a MySQL-backed store", t, func() {
		store, mock := newMockStore(t)
		ctx := context.Background()

		Convey("When the user exists", func() {
			created := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
			mock.ExpectQuery("SELECT (.+) FROM `users`").
				WillReturnRows(sqlmock.NewRows(
					[]string{"id", "display_name", "show_name", "score", "created_at"}).
					AddRow("u1", "Jane Doe", true, 42, created))

			u, err := store.GetUser(ctx, "u1")

			Convey("Then the row maps onto the model", func() {
				So(err, ShouldBeNil)
				So(u.ID, ShouldEqual, "u1")
				So(u.DisplayName, ShouldEqual, "Jane Doe")
				So(u.ShowName, ShouldBeTrue)
				So(u.Score, ShouldEqual, 42)
			})
		})

		Convey("When the user does not exist", func() {
			mock.ExpectQuery("SELECT (.+) FROM `users`").
				WillReturnRows(sqlmock.NewRows([]string{"id"}))

			_, err := store.GetUser(ctx, "ghost")

			Convey("Then it reports not found", func() {
				So(err, ShouldEqual, repository.ErrNotFound)
			})
		})
	})
}

func TestGormStore_EventsByUser(t *testing.T) {
	Convey("Given a store with ledger rows", t, func() {
		store, mock := newMockStore(t)
		ctx := context.Background()

		Convey("When metadata is valid JSON", func() {
			md := `{"activityType":"vaccination"}`
			mock.ExpectQuery("SELECT (.+) FROM `score_events`").
				WillReturnRows(sqlmock.NewRows(
					[]string{"id", "user_id", "score", "reason", "metadata", "created_at"}).
					AddRow("e1", "u1", 15, model.ReasonActivityLogged, md, time.Now()))

			events, err := store.EventsByUser(ctx, "u1", 10)

			Convey("Then it is deserialized into the event", func() {
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 1)
				So(events[0].Metadata["activityType"], ShouldEqual, "vaccination")
			})
		})

		Convey("When metadata is corrupt", func() {
			mock.ExpectQuery("SELECT (.+) FROM `score_events`").
				WillReturnRows(sqlmock.NewRows(
					[]string{"id", "user_id", "score", "reason", "metadata", "created_at"}).
					AddRow("e1", "u1", 5, model.ReasonActivityLogged, "{broken", time.Now()))

			events, err := store.EventsByUser(ctx, "u1", 10)

			Convey("Then the event still comes back without metadata", func() {
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 1)
				So(events[0].Metadata, ShouldBeNil)
			})
		})

		Convey("When the limit is invalid", func() {
			_, err := store.EventsByUser(ctx, "u1", 0)
			So(err, ShouldEqual, repository.ErrInvalidLimit)
		})
	})
}
