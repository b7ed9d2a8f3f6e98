// Package model contains domain models passed between layers.
package model

import "strconv"

// Score is a final or predicted scoreline.
type Score struct {
	Home int // goals scored by the home side
	Away int // goals scored by the away side
}

// GoalDifference returns home goals minus away goals.
func (s Score) GoalDifference() int {
	return s.Home - s.Away
}

// String renders the score in the "H-A" source form.
func (s Score) String() string {
	return strconv.Itoa(s.Home) + "-" + strconv.Itoa(s.Away)
}

// Prediction is a participant's guess for one fixture. The zero value is an
// absent prediction.
type Prediction struct {
	score   Score
	present bool
}

// Predicted wraps a submitted score.
func Predicted(s Score) Prediction {
	return Prediction{score: s, present: true}
}

// Absent returns a prediction that was never submitted.
func Absent() Prediction {
	return Prediction{}
}

// Score returns the predicted score and whether one was submitted.
func (p Prediction) Score() (Score, bool) {
	return p.score, p.present
}

// IsAbsent reports whether no prediction was submitted.
func (p Prediction) IsAbsent() bool {
	return !p.present
}

// String renders the prediction, using "" for an absent one.
func (p Prediction) String() string {
	if !p.present {
		return ""
	}
	return p.score.String()
}

// PointValue is the number of points one prediction earns.
type PointValue int

// The only point values a prediction can earn.
const (
	PointsNone           PointValue = 0
	PointsOutcome        PointValue = 2
	PointsGoalDifference PointValue = 3
	PointsExact          PointValue = 5
)

// Participant identifies a predictor by the name of their source column.
type Participant string
