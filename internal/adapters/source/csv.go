package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode reads a CSV document into a table. The first record is the header.
// Cells are trimmed, blank lines are skipped and short rows are padded with
// empty cells. Extra cells beyond the header are an error.
func Decode(r io.Reader) (model.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return model.Table{}, fmt.Errorf("%w: empty document", ErrDecode)
	}
	if err != nil {
		return model.Table{}, fmt.Errorf("%w: header: %v", ErrDecode, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	table := model.Table{Columns: columns}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Table{}, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		if blank(rec) {
			continue
		}
		if len(rec) > len(columns) {
			line, _ := cr.FieldPos(0)
			return model.Table{}, fmt.Errorf("%w: line %d has %d cells, header has %d", ErrDecode, line, len(rec), len(columns))
		}
		row := make(map[string]string, len(columns))
		for i, c := range columns {
			if i < len(rec) {
				row[c] = strings.TrimSpace(rec[i])
			} else {
				row[c] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Encode writes table back as CSV in column order.
func Encode(w io.Writer, table model.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Columns); err != nil {
		return err
	}
	rec := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, c := range table.Columns {
			rec[i] = row[c]
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
