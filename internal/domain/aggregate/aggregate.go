// Package aggregate groups scored match records by date and folds them into
// per-participant cumulative series.
package aggregate

import (
	"slices"

	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
	"github.com/osvo/club-world-cup-tracker/internal/domain/scoring"
)

// Aggregation is the derived view of one set of records.
type Aggregation struct {
	// Dates are the distinct record dates, strictly increasing.
	Dates []string
	// Matches holds the points of every record, in input order.
	Matches []model.MatchPoints
	// Series holds one cumulative series per participant, in participant order,
	// each aligned 1:1 with Dates.
	Series []model.ParticipantSeries
}

// Aggregate scores every record and builds the cumulative series.
// Records are bucketed by date in a single pass.
func Aggregate(records []model.MatchRecord, participants []model.Participant) Aggregation {
	matches := make([]model.MatchPoints, len(records))
	buckets := make(map[string][]int, len(records))
	for i, r := range records {
		matches[i] = score(r, participants)
		buckets[r.Date] = append(buckets[r.Date], i)
	}

	dates := make([]string, 0, len(buckets))
	for d := range buckets {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	series := make([]model.ParticipantSeries, len(participants))
	for pi, p := range participants {
		series[pi] = model.ParticipantSeries{
			Participant: p,
			Points:      fold(p, dates, buckets, matches),
		}
	}

	return Aggregation{Dates: dates, Matches: matches, Series: series}
}

// score evaluates one record for every participant.
func score(r model.MatchRecord, participants []model.Participant) model.MatchPoints {
	preds := make(map[model.Participant]model.Prediction, len(participants))
	points := make(map[model.Participant]model.PointValue, len(participants))
	for _, p := range participants {
		pred := r.Predictions[p] // zero value is Absent
		preds[p] = pred
		points[p] = scoring.Evaluate(pred, r.Actual)
	}
	return model.MatchPoints{
		Index:       r.Index,
		Date:        r.Date,
		Home:        r.Home,
		Away:        r.Away,
		Actual:      r.Actual,
		Predictions: preds,
		Points:      points,
	}
}

// fold produces a fresh running-total slice for p over the sorted dates.
func fold(p model.Participant, dates []string, buckets map[string][]int, matches []model.MatchPoints) []model.SeriesPoint {
	out := make([]model.SeriesPoint, len(dates))
	total := 0
	for i, d := range dates {
		day := 0
		for _, mi := range buckets[d] {
			day += int(matches[mi].Points[p])
		}
		total += day
		out[i] = model.SeriesPoint{Date: d, Day: day, Total: total}
	}
	return out
}
