package core

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		allowHyphen bool
		want        string
	}{
		{
			name:  "plain text unchanged",
			input: "Office light",
			want:  "Office light",
		},
		{
			name:  "punctuation removed",
			input: "2x4 LED!!",
			want:  "2x4 LED",
		},
		{
			name:  "hyphen dropped when not allowed",
			input: "45W-ish",
			want:  "45Wish",
		},
		{
			name:        "hyphen kept when allowed",
			input:       "2x4-LED!!",
			allowHyphen: true,
			want:        "2x4-LED",
		},
		{
			name:  "surrounding spaces trimmed",
			input: "  Troffer  ",
			want:  "Troffer",
		},
		{
			name:  "spaces exposed by removal are trimmed",
			input: "! Troffer !",
			want:  "Troffer",
		},
		{
			name:  "interior spaces kept",
			input: "A  B",
			want:  "A  B",
		},
		{
			name:  "tabs and newlines removed",
			input: "A\tB\nC",
			want:  "ABC",
		},
		{
			name:  "non-ASCII letters removed",
			input: "Lumière 40Ω",
			want:  "Lumire 40",
		},
		{
			name:  "replacement character removed",
			input: "Down\uFFFDlight",
			want:  "Downlight",
		},
		{
			name:  "only disallowed characters",
			input: "!!!",
			want:  "",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanText(tt.input, tt.allowHyphen)
			if got != tt.want {
				t.Errorf("CleanText(%q, %v) = %q, want %q", tt.input, tt.allowHyphen, got, tt.want)
			}
		})
	}
}

// sanitizeInputs covers ASCII, punctuation, whitespace and multi-byte text.
var sanitizeInputs = []string{
	"",
	" ",
	"2x4 LED!!",
	"45W-ish",
	"  --leading and trailing--  ",
	"a - b",
	"\"quoted\", with, commas",
	"Lumière Ω 40W",
	"tab\tnew\nline\rreturn",
	"emoji 💡 lamp",
	"- -",
	"\uFFFD\uFEFF",
}

func TestCleanText_Idempotent(t *testing.T) {
	for _, input := range sanitizeInputs {
		for _, allowHyphen := range []bool{false, true} {
			once := CleanText(input, allowHyphen)
			twice := CleanText(once, allowHyphen)
			if once != twice {
				t.Errorf("CleanText not idempotent for %q (hyphen=%v): %q then %q", input, allowHyphen, once, twice)
			}
		}
	}
}

func TestCleanText_AllowedCharactersOnly(t *testing.T) {
	for _, input := range sanitizeInputs {
		for _, allowHyphen := range []bool{false, true} {
			got := CleanText(input, allowHyphen)

			if len(got) > len(input) {
				t.Errorf("CleanText(%q) grew from %d to %d bytes", input, len(input), len(got))
			}
			if utf8.RuneCountInString(got) != len(got) {
				t.Errorf("CleanText(%q) = %q contains non-ASCII", input, got)
			}
			for _, r := range got {
				if !isAllowed(r, allowHyphen) {
					t.Errorf("CleanText(%q, %v) = %q contains %q", input, allowHyphen, got, r)
				}
			}
			if strings.HasPrefix(got, " ") || strings.HasSuffix(got, " ") {
				t.Errorf("CleanText(%q) = %q is not trimmed", input, got)
			}
		}
	}
}

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"45Wish", "45"},
		{"LED 12 5", "125"},
		{"no digits", ""},
		{"", ""},
		{"0", "0"},
		{"٣٤", ""}, // non-ASCII digits
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DigitsOnly(tt.input); got != tt.want {
				t.Errorf("DigitsOnly(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizer_Clean(t *testing.T) {
	s := NewSanitizer(DefaultSchema())

	if got := s.Clean(ColumnFixtureType, "2x4-LED!!"); got != "2x4-LED" {
		t.Errorf("Clean(Fixture Type) = %q, want hyphen kept", got)
	}
	if got := s.Clean(ColumnDescription, "Wall-wash"); got != "Wallwash" {
		t.Errorf("Clean(Description) = %q, want hyphen removed", got)
	}
	if got := s.Clean("Notes", "a-b"); got != "ab" {
		t.Errorf("Clean(extra column) = %q, want hyphen removed", got)
	}

	custom := NewSanitizer(NewSchema(DefaultColumns, ColumnDescription))
	if got := custom.Clean(ColumnDescription, "Wall-wash"); got != "Wall-wash" {
		t.Errorf("custom hyphen column: Clean = %q, want Wall-wash", got)
	}
}

func TestSanitizer_SanitizeTable(t *testing.T) {
	table := &Table{
		Header: []string{"Fixture Type", "Description", "Wattage", "Notes", "Description"},
		Rows: [][]string{
			{"A-1!", "Down light?", "12W", "keep-me", "ignored duplicate"},
			{"B"}, // short row
			{"C", "x", "5", "n", "dup", "extra cell"},
		},
	}

	rows := NewSanitizer(DefaultSchema()).SanitizeTable(table)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	first := rows[0]
	want := SanitizedRow{
		"Fixture Type": "A-1",
		"Description":  "Down light",
		"Wattage":      "12W",
		"Notes":        "keepme",
	}
	for col, v := range want {
		if first[col] != v {
			t.Errorf("row 1 %s = %q, want %q", col, first[col], v)
		}
	}
	if len(first) != 4 {
		t.Errorf("row 1 has %d columns, want 4 (duplicate header skipped)", len(first))
	}

	short := rows[1]
	if short["Fixture Type"] != "B" {
		t.Errorf("row 2 Fixture Type = %q, want B", short["Fixture Type"])
	}
	for _, col := range []string{"Description", "Wattage", "Notes"} {
		v, ok := short[col]
		if !ok || v != "" {
			t.Errorf("row 2 %s = %q (present=%v), want empty", col, v, ok)
		}
	}

	if rows[2]["Description"] != "x" {
		t.Errorf("row 3 Description = %q, want first occurrence x", rows[2]["Description"])
	}
}
