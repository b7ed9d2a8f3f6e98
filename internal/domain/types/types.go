// Package types contains the read shapes shared by the HTTP API, the
// application service and the MCP tools.
package types

import (
	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
	"github.com/osvo/club-world-cup-tracker/internal/domain/scoring"
)

// StandingEntry is one row of the standings table.
type StandingEntry struct {
	Rank        int    `json:"rank"`
	Participant string `json:"participant"`
	Total       int    `json:"total"`
	Color       string `json:"color,omitempty"`
}

// SeriesPoint is one dated step of a cumulative series.
type SeriesPoint struct {
	Date  string `json:"date"`
	Day   int    `json:"day"`
	Total int    `json:"total"`
}

// SeriesEntry is a participant's cumulative series.
type SeriesEntry struct {
	Participant string        `json:"participant"`
	Color       string        `json:"color,omitempty"`
	Points      []SeriesPoint `json:"points"`
}

// PredictionEntry is one participant's prediction for a match and what it earned.
type PredictionEntry struct {
	Prediction string `json:"prediction,omitempty"`
	Points     int    `json:"points"`
	Rule       string `json:"rule"`
}

// MatchEntry is a scored fixture.
type MatchEntry struct {
	Index       int                        `json:"index"`
	Date        string                     `json:"date"`
	Home        string                     `json:"home"`
	Away        string                     `json:"away"`
	Score       string                     `json:"score"`
	Predictions map[string]PredictionEntry `json:"predictions"`
}

// ParticipantDetail is a participant's standing together with their series.
type ParticipantDetail struct {
	StandingEntry
	Points []SeriesPoint `json:"points"`
}

// Standings converts model standings.
func Standings(in []model.Standing) []StandingEntry {
	out := make([]StandingEntry, len(in))
	for i, s := range in {
		out[i] = Standing(s)
	}
	return out
}

// Standing converts one model standing.
func Standing(s model.Standing) StandingEntry {
	return StandingEntry{Rank: s.Rank, Participant: string(s.Participant), Total: s.Total}
}

// Series converts model series.
func Series(in []model.ParticipantSeries) []SeriesEntry {
	out := make([]SeriesEntry, len(in))
	for i, s := range in {
		out[i] = SeriesEntry{Participant: string(s.Participant), Points: Points(s.Points)}
	}
	return out
}

// Points converts the steps of one series.
func Points(in []model.SeriesPoint) []SeriesPoint {
	out := make([]SeriesPoint, len(in))
	for i, p := range in {
		out[i] = SeriesPoint{Date: p.Date, Day: p.Day, Total: p.Total}
	}
	return out
}

// Matches converts scored matches, naming the rule behind every award.
func Matches(in []model.MatchPoints) []MatchEntry {
	out := make([]MatchEntry, len(in))
	for i, m := range in {
		preds := make(map[string]PredictionEntry, len(m.Points))
		for p, pts := range m.Points {
			pred := m.Predictions[p]
			preds[string(p)] = PredictionEntry{
				Prediction: pred.String(),
				Points:     int(pts),
				Rule:       scoring.Classify(pred, m.Actual).String(),
			}
		}
		out[i] = MatchEntry{
			Index:       m.Index,
			Date:        m.Date,
			Home:        m.Home,
			Away:        m.Away,
			Score:       m.Actual.String(),
			Predictions: preds,
		}
	}
	return out
}

// SeriesView is every participant's series together with the date axis.
type SeriesView struct {
	Dates  []string      `json:"dates"`
	Series []SeriesEntry `json:"series"`
}
