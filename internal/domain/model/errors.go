package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds raised while turning a source table into records.
var (
	ErrMalformedScore       = errors.New("malformed score")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrEmptyParticipantSet  = errors.New("no participant columns")
	ErrInvalidSchema        = errors.New("invalid schema")
)

// HeaderRow is the RowError.Row value for problems found in the header.
const HeaderRow = -1

// RowError locates a data problem: the 0-based data row (or HeaderRow) and
// the column that caused it.
type RowError struct {
	Row   int
	Field string
	Value string
	Err   error
}

func (e *RowError) Error() string {
	where := fmt.Sprintf("row %d", e.Row)
	if e.Row == HeaderRow {
		where = "header"
	}
	if e.Value != "" {
		return fmt.Sprintf("%s, field %q: %v: %q", where, e.Field, e.Err, e.Value)
	}
	return fmt.Sprintf("%s, field %q: %v", where, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
