// Package journey turns tokenized journey tables into records and derives the
// axis lists, filtered pivot grid and condensed-view highlights from them.
//
// Every function in this package is pure: identical inputs give identical
// outputs, and nothing here holds state between calls.
package journey

import (
	"strings"

	domain "journeygrid/domain/journey"
)

// HeaderIndex maps lower-cased, trimmed header text to its first column index
type HeaderIndex map[string]int

// NewHeaderIndex builds the case-insensitive column lookup for a header row
func NewHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := idx[key]; !seen {
			idx[key] = i
		}
	}
	return idx
}

// Column returns the index of the named column
func (h HeaderIndex) Column(name string) (int, bool) {
	i, ok := h[strings.ToLower(strings.TrimSpace(name))]
	return i, ok
}

// MapRecords converts a tokenized table into records. The first row is the header.
// Every registered field is populated on every record: absent columns and short
// rows yield the field kind's default. Rows are never rejected.
func MapRecords(rows [][]string, reg *domain.Registry) []domain.Record {
	if len(rows) == 0 {
		return []domain.Record{}
	}

	header := NewHeaderIndex(rows[0])
	specs := reg.Specs()
	columns := make([]int, len(specs))
	for i, s := range specs {
		col, ok := header.Column(s.Header)
		if !ok {
			col = -1
		}
		columns[i] = col
	}

	records := make([]domain.Record, 0, len(rows)-1)
	for n, cells := range rows[1:] {
		rec := reg.NewRecord()
		rec.Row = n + 1
		for i, s := range specs {
			col := columns[i]
			if col < 0 || col >= len(cells) {
				continue
			}
			s.Assign(&rec, cells[col])
		}
		records = append(records, rec)
	}
	return records
}

// TrimHeaders returns the header row with surrounding whitespace removed
func TrimHeaders(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}
