package model

import "time"

// Table is a parsed tabular source: a header plus rows keyed by column name.
// The first four columns are date, home team, away team and actual score;
// every later column holds one participant's predictions.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// MatchRecord is one fixture with its result and every participant's prediction.
// Predictions has a key for every participant, absent or not.
type MatchRecord struct {
	Index       int    // row index in the source table
	Date        string // ISO date, lexically sortable
	Home        string
	Away        string
	Actual      Score
	Predictions map[Participant]Prediction
}

// MatchPoints holds what each participant predicted and earned for one
// source row.
type MatchPoints struct {
	Index       int
	Date        string
	Home        string
	Away        string
	Actual      Score
	Predictions map[Participant]Prediction
	Points      map[Participant]PointValue
}

// SeriesPoint is one step of a participant's cumulative series.
type SeriesPoint struct {
	Date  string
	Day   int // points earned on Date alone
	Total int // running total up to and including Date
}

// ParticipantSeries is a participant's cumulative series aligned with the
// sorted distinct dates of the dataset.
type ParticipantSeries struct {
	Participant Participant
	Points      []SeriesPoint
}

// Final returns the last running total, or 0 for an empty series.
func (s ParticipantSeries) Final() int {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Total
}

// Standing is a participant's final position.
type Standing struct {
	Participant Participant
	Total       int
	Rank        int
}

// RefreshRequest asks the service to re-ingest the source and recompute.
type RefreshRequest struct {
	ID          string    // unique id used in logs
	Reason      string    // "tick", "api", "startup", ...
	RequestedAt time.Time // enqueue time
}
