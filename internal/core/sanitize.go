package core

// sanitize.go strips characters outside a fixed allow-list from table cells.
//
// The filter is an explicit per-rune check rather than a regular expression so
// the accepted set is obvious from the code: ASCII letters, ASCII digits and
// the space character, plus '-' for the hyphen column. Everything else is
// dropped in place and the survivors keep their relative order.

import "strings"

// SanitizedRow maps column names to cleaned cell values. Every header column
// of the source table has an entry.
type SanitizedRow map[string]string

// Sanitizer cleans table cells according to a Schema.
type Sanitizer struct {
	hyphenColumn string
}

// NewSanitizer creates a sanitizer for the schema's hyphen column.
func NewSanitizer(schema Schema) *Sanitizer {
	return &Sanitizer{hyphenColumn: schema.HyphenColumn()}
}

// Clean sanitizes a single cell value of the given column.
func (s *Sanitizer) Clean(column, value string) string {
	return CleanText(value, column == s.hyphenColumn)
}

// SanitizeTable sanitizes every cell of every row, preserving row order.
// Cells missing from short rows become empty strings.
func (s *Sanitizer) SanitizeTable(t *Table) []SanitizedRow {
	rows := make([]SanitizedRow, len(t.Rows))
	for i, row := range t.Rows {
		clean := make(SanitizedRow, len(t.Header))
		for pos, col := range t.Header {
			if _, dup := clean[col]; dup {
				continue
			}
			if pos >= len(row) {
				clean[col] = ""
				continue
			}
			clean[col] = s.Clean(col, row[pos])
		}
		rows[i] = clean
	}
	return rows
}

// CleanText removes every rune that is not an ASCII letter, ASCII digit or
// space (or hyphen when allowHyphen is set), then trims surrounding spaces.
// The result is a fixed point: CleanText(CleanText(s)) == CleanText(s).
func CleanText(text string, allowHyphen bool) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isAllowed(r, allowHyphen) {
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), " ")
}

func isAllowed(r rune, allowHyphen bool) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
		return true
	case r == '-':
		return allowHyphen
	}
	return false
}

// DigitsOnly keeps only the ASCII digits of s.
func DigitsOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
