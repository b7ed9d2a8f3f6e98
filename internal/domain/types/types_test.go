package types_test

import (
	"encoding/json"
	"testing"

	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
	types "github.com/osvo/club-world-cup-tracker/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStandings(t *testing.T) {
	Convey("Given model standings", t, func() {
		in := []model.Standing{
			{Participant: "Alice", Total: 10, Rank: 1},
			{Participant: "Bob", Total: 8, Rank: 2},
		}

		Convey("When converting them", func() {
			out := types.Standings(in)

			Convey("Then order and values are kept", func() {
				So(out, ShouldResemble, []types.StandingEntry{
					{Rank: 1, Participant: "Alice", Total: 10},
					{Rank: 2, Participant: "Bob", Total: 8},
				})
			})
		})

		Convey("When encoding an entry without colour", func() {
			b, err := json.Marshal(types.Standing(in[0]))

			Convey("Then the colour is omitted", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"rank":1,"participant":"Alice","total":10}`)
			})
		})
	})
}

func TestSeries(t *testing.T) {
	Convey("Given a model series", t, func() {
		in := []model.ParticipantSeries{{
			Participant: "Alice",
			Points: []model.SeriesPoint{
				{Date: "2024-01-01", Day: 8, Total: 8},
				{Date: "2024-01-08", Day: 2, Total: 10},
			},
		}}

		Convey("Then every point is carried over", func() {
			out := types.Series(in)
			So(len(out), ShouldEqual, 1)
			So(out[0].Participant, ShouldEqual, "Alice")
			So(out[0].Points, ShouldResemble, []types.SeriesPoint{
				{Date: "2024-01-01", Day: 8, Total: 8},
				{Date: "2024-01-08", Day: 2, Total: 10},
			})
		})

		Convey("Then an empty series encodes as an empty array", func() {
			b, err := json.Marshal(types.Points(nil))
			So(err, ShouldBeNil)
			So(string(b), ShouldEqual, "[]")
		})
	})
}

func TestMatches(t *testing.T) {
	Convey("Given a scored match", t, func() {
		actual := model.Score{Home: 2, Away: 1}
		in := []model.MatchPoints{{
			Index:  4,
			Date:   "2025-06-14",
			Home:   "HIL",
			Away:   "RMA",
			Actual: actual,
			Predictions: map[model.Participant]model.Prediction{
				"Alice": model.Predicted(actual),
				"Bob":   model.Predicted(model.Score{Home: 1, Away: 0}),
				"Carol": model.Absent(),
			},
			Points: map[model.Participant]model.PointValue{
				"Alice": model.PointsExact,
				"Bob":   model.PointsGoalDifference,
				"Carol": model.PointsNone,
			},
		}}

		Convey("When converting it", func() {
			out := types.Matches(in)

			Convey("Then the fixture is described", func() {
				So(len(out), ShouldEqual, 1)
				So(out[0].Index, ShouldEqual, 4)
				So(out[0].Score, ShouldEqual, "2-1")
				So(out[0].Home, ShouldEqual, "HIL")
			})

			Convey("Then each prediction names its rule", func() {
				So(out[0].Predictions["Alice"], ShouldResemble, types.PredictionEntry{Prediction: "2-1", Points: 5, Rule: "exact"})
				So(out[0].Predictions["Bob"], ShouldResemble, types.PredictionEntry{Prediction: "1-0", Points: 3, Rule: "goal_difference"})
				So(out[0].Predictions["Carol"], ShouldResemble, types.PredictionEntry{Points: 0, Rule: "absent"})
			})
		})
	})
}
