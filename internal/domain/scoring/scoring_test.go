package scoring_test

import (
	"testing"

	scoring "github.com/abelbejiga/cradle/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPointTable_ActivityPoints(t *testing.T) {
	Convey("Given a point table with default pricing", t, func() {
		table := scoring.NewPointTable()

		Convey("When pricing known activity types", func() {
			Convey("Then each type gets its configured value", func() {
				So(table.ActivityPoints("feeding"), ShouldEqual, 5)
				So(table.ActivityPoints("sleep"), ShouldEqual, 5)
				So(table.ActivityPoints("diaper"), ShouldEqual, 3)
				So(table.ActivityPoints("poop"), ShouldEqual, 3)
				So(table.ActivityPoints("doctor"), ShouldEqual, 10)
				So(table.ActivityPoints("temperature"), ShouldEqual, 8)
				So(table.ActivityPoints("medication"), ShouldEqual, 8)
				So(table.ActivityPoints("vaccination"), ShouldEqual, 15)
				So(table.ActivityPoints("milestone"), ShouldEqual, 20)
				So(table.ActivityPoints("growth"), ShouldEqual, 10)
			})
		})

		Convey("When pricing an unknown activity type", func() {
			Convey("Then it falls back to 1 point instead of rejecting", func() {
				So(table.ActivityPoints("unknown-type"), ShouldEqual, 1)
				So(table.ActivityPoints(""), ShouldEqual, 1)
			})
		})
	})
}

func TestPointTable_TodoPoints(t *testing.T) {
	Convey("Given a point table with default pricing", t, func() {
		table := scoring.NewPointTable()

		Convey("When pricing known priorities", func() {
			So(table.TodoPoints("low"), ShouldEqual, 3)
			So(table.TodoPoints("medium"), ShouldEqual, 5)
			So(table.TodoPoints("high"), ShouldEqual, 8)
		})

		Convey("When pricing an unknown priority", func() {
			Convey("Then it falls back to 1 point", func() {
				So(table.TodoPoints("urgent"), ShouldEqual, 1)
			})
		})
	})
}

func TestPointTable_DailySignInPoints(t *testing.T) {
	Convey("Given a point table with default pricing", t, func() {
		table := scoring.NewPointTable()

		Convey("Then the daily sign-in bonus is 2", func() {
			So(table.DailySignInPoints(), ShouldEqual, 2)
		})
	})
}

func TestPointTable_Options(t *testing.T) {
	Convey("Given a point table with custom pricing", t, func() {
		table := scoring.NewPointTable(
			scoring.WithActivityPoints(map[string]int{"feeding": 7}),
			scoring.WithTodoPoints(map[string]int{"high": 12}),
			scoring.WithDailySignInPoints(4),
		)

		Convey("Then overrides replace the defaults", func() {
			So(table.ActivityPoints("feeding"), ShouldEqual, 7)
			So(table.TodoPoints("high"), ShouldEqual, 12)
			So(table.DailySignInPoints(), ShouldEqual, 4)
		})

		Convey("And types dropped from the override are priced at fallback", func() {
			So(table.ActivityPoints("sleep"), ShouldEqual, 1)
			So(table.TodoPoints("low"), ShouldEqual, 1)
		})

		Convey("And non-positive entries are ignored", func() {
			bad := scoring.NewPointTable(
				scoring.WithActivityPoints(map[string]int{"feeding": -5}),
				scoring.WithDailySignInPoints(0),
			)
			So(bad.ActivityPoints("feeding"), ShouldEqual, 1)
			So(bad.DailySignInPoints(), ShouldEqual, 2)
		})
	})
}
