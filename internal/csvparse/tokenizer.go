// Package csvparse tokenizes delimited journey tables.
//
// The grammar is the quoting dialect spreadsheet "publish to web" exports produce:
// a '"' anywhere in an unquoted field opens a quoted section, '""' inside a
// quoted section is a literal quote, and CR, LF or CRLF end a row outside quotes.
// Tokenizing never fails; every input maps to some matrix of cells.
package csvparse

import "strings"

const bom = "\uFEFF"

type state int

const (
	unquoted state = iota
	quoted
)

// TokenizeRaw runs the state machine over text and returns every row, including
// blank ones. The in-progress field and row are flushed at end of input, so the
// result always has at least one row.
func TokenizeRaw(text string) [][]string {
	var (
		rows  [][]string
		row   []string
		field strings.Builder
		st    = unquoted
	)

	closeField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	closeRow := func() {
		closeField()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if st == quoted {
			if ch == '"' {
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
					continue
				}
				st = unquoted
				continue
			}
			field.WriteByte(ch)
			continue
		}

		switch ch {
		case '"':
			st = quoted
		case ',':
			closeField()
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			closeRow()
		case '\n':
			closeRow()
		default:
			field.WriteByte(ch)
		}
	}
	closeRow()
	return rows
}

// Tokenize strips a leading byte-order mark, tokenizes text and drops blank lines
// (rows made of a single empty cell). Rows with empty leading cells are kept.
func Tokenize(text string) [][]string {
	raw := TokenizeRaw(strings.TrimPrefix(text, bom))
	rows := raw[:0]
	for _, r := range raw {
		if IsBlankRow(r) {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

// IsBlankRow reports whether r is what a blank line tokenizes to
func IsBlankRow(r []string) bool {
	return len(r) == 0 || (len(r) == 1 && r[0] == "")
}

// Preview returns the first two lines of text after BOM removal, for diagnostics
func Preview(text string) string {
	text = strings.TrimPrefix(text, bom)
	first, rest, found := strings.Cut(text, "\n")
	if !found {
		return first
	}
	second, _, _ := strings.Cut(rest, "\n")
	return first + "\n" + second
}

// Quote renders one field in the dialect Tokenize reads, quoting only when needed
func Quote(field string) string {
	if !strings.ContainsAny(field, "\",\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Join renders rows back to text with LF row separators
func Join(rows [][]string) string {
	var b strings.Builder
	for _, r := range rows {
		for j, f := range r {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Quote(f))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
