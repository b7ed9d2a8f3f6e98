// Package normalize turns raw source rows into structured match records.
//
// The first four source columns are positional (date, home, away, actual
// score); every later column is a participant. Participants are resolved once
// from the header and threaded through every later step.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
)

// Positional column layout of the source.
const (
	colDate = iota
	colHome
	colAway
	colScore
	fixedColumns
)

// FieldColumns is the RowError field for header problems.
const FieldColumns = "columns"

// ParseScore parses a "<int>-<int>" prediction. Empty input is an absent
// prediction, not an error.
func ParseScore(raw string) (model.Prediction, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Absent(), nil
	}
	s, err := parsePair(raw)
	if err != nil {
		return model.Absent(), err
	}
	return model.Predicted(s), nil
}

// ParseActual parses a played result. Unlike a prediction it must be present.
func ParseActual(raw string) (model.Score, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Score{}, model.ErrMissingRequiredField
	}
	return parsePair(raw)
}

func parsePair(raw string) (model.Score, error) {
	home, away, ok := strings.Cut(raw, "-")
	if !ok {
		return model.Score{}, model.ErrMalformedScore
	}
	h, ok := parseGoals(home)
	if !ok {
		return model.Score{}, model.ErrMalformedScore
	}
	a, ok := parseGoals(away)
	if !ok {
		return model.Score{}, model.ErrMalformedScore
	}
	return model.Score{Home: h, Away: a}, nil
}

// parseGoals accepts only ASCII digits, so signs and a second "-" are rejected.
func parseGoals(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Participants resolves the ordered participant list from the header.
// A header with only the fixed columns yields ErrEmptyParticipantSet.
func Participants(columns []string) ([]model.Participant, error) {
	if len(columns) < fixedColumns {
		return nil, &model.RowError{
			Row:   model.HeaderRow,
			Field: FieldColumns,
			Value: strings.Join(columns, ","),
			Err:   fmt.Errorf("%w: need at least %d columns, got %d", model.ErrInvalidSchema, fixedColumns, len(columns)),
		}
	}

	seen := make(map[string]struct{}, len(columns))
	for i, name := range columns {
		if strings.TrimSpace(name) == "" {
			return nil, &model.RowError{
				Row:   model.HeaderRow,
				Field: FieldColumns,
				Err:   fmt.Errorf("%w: column %d has no name", model.ErrInvalidSchema, i),
			}
		}
		if _, dup := seen[name]; dup {
			return nil, &model.RowError{
				Row:   model.HeaderRow,
				Field: FieldColumns,
				Value: name,
				Err:   fmt.Errorf("%w: duplicate column", model.ErrInvalidSchema),
			}
		}
		seen[name] = struct{}{}
	}

	rest := columns[fixedColumns:]
	if len(rest) == 0 {
		return nil, model.ErrEmptyParticipantSet
	}
	out := make([]model.Participant, len(rest))
	for i, c := range rest {
		out[i] = model.Participant(c)
	}
	return out, nil
}

// Records converts every table row into a MatchRecord. The first bad row
// aborts the conversion and is reported as a *model.RowError.
func Records(table model.Table, participants []model.Participant) ([]model.MatchRecord, error) {
	if len(table.Columns) < fixedColumns {
		return nil, &model.RowError{
			Row:   model.HeaderRow,
			Field: FieldColumns,
			Err:   fmt.Errorf("%w: need at least %d columns, got %d", model.ErrInvalidSchema, fixedColumns, len(table.Columns)),
		}
	}
	dateCol := table.Columns[colDate]
	homeCol := table.Columns[colHome]
	awayCol := table.Columns[colAway]
	scoreCol := table.Columns[colScore]

	records := make([]model.MatchRecord, 0, len(table.Rows))
	for i, row := range table.Rows {
		date := strings.TrimSpace(row[dateCol])
		if date == "" {
			return nil, &model.RowError{Row: i, Field: dateCol, Err: model.ErrMissingRequiredField}
		}

		rawScore := row[scoreCol]
		actual, err := ParseActual(rawScore)
		if err != nil {
			return nil, &model.RowError{Row: i, Field: scoreCol, Value: strings.TrimSpace(rawScore), Err: err}
		}

		preds := make(map[model.Participant]model.Prediction, len(participants))
		for _, p := range participants {
			raw := row[string(p)]
			pred, err := ParseScore(raw)
			if err != nil {
				return nil, &model.RowError{Row: i, Field: string(p), Value: strings.TrimSpace(raw), Err: err}
			}
			preds[p] = pred
		}

		records = append(records, model.MatchRecord{
			Index:       i,
			Date:        date,
			Home:        strings.TrimSpace(row[homeCol]),
			Away:        strings.TrimSpace(row[awayCol]),
			Actual:      actual,
			Predictions: preds,
		})
	}
	return records, nil
}
