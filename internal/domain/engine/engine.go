// Package engine runs the scoring pipeline over one source table:
// normalize, aggregate, rank.
package engine

import (
	"errors"

	"github.com/osvo/club-world-cup-tracker/internal/domain/aggregate"
	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
	"github.com/osvo/club-world-cup-tracker/internal/domain/normalize"
	"github.com/osvo/club-world-cup-tracker/internal/domain/standings"
)

// Result is everything derived from one table. It is never mutated after
// Compute returns.
type Result struct {
	Participants []model.Participant
	Dates        []string
	Matches      []model.MatchPoints
	Series       []model.ParticipantSeries
	Standings    []model.Standing
}

// Compute scores table from scratch.
//
// A table without participant columns is not a failure: rows are still
// validated and the Result carries dates and matches but no series or
// standings. Any other problem aborts with a wrapped model error.
func Compute(table model.Table) (Result, error) {
	participants, err := normalize.Participants(table.Columns)
	if err != nil && !errors.Is(err, model.ErrEmptyParticipantSet) {
		return Result{}, err
	}

	records, err := normalize.Records(table, participants)
	if err != nil {
		return Result{}, err
	}

	agg := aggregate.Aggregate(records, participants)
	return Result{
		Participants: participants,
		Dates:        agg.Dates,
		Matches:      agg.Matches,
		Series:       agg.Series,
		Standings:    standings.Build(agg.Series, participants),
	}, nil
}

// SeriesOf returns the cumulative series of p.
func (r Result) SeriesOf(p model.Participant) (model.ParticipantSeries, bool) {
	for _, s := range r.Series {
		if s.Participant == p {
			return s, true
		}
	}
	return model.ParticipantSeries{}, false
}

// MatchesOn returns the scored matches played on date, in source order.
// An empty date returns every match.
func (r Result) MatchesOn(date string) []model.MatchPoints {
	if date == "" {
		return r.Matches
	}
	var out []model.MatchPoints
	for _, m := range r.Matches {
		if m.Date == date {
			out = append(out, m)
		}
	}
	return out
}
