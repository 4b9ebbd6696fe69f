package core

// schema.go holds the table-level validation that gates every conversion.
//
// Header matching is exact: column names are compared case- and
// spelling-sensitively after the reader has stripped any BOM. Columns that
// are not required are allowed and ignored.

import (
	"slices"
	"strings"
)

// Default column names of the fixture upload template.
const (
	ColumnFixtureType = "Fixture Type"
	ColumnQtyType     = "Qty Type"
	ColumnSourceType  = "Source Type"
	ColumnDescription = "Description"
	ColumnWattage     = "Wattage"
)

// DefaultColumns lists the required columns in template order.
var DefaultColumns = []string{
	ColumnFixtureType,
	ColumnQtyType,
	ColumnSourceType,
	ColumnDescription,
	ColumnWattage,
}

// Schema is the immutable column configuration shared by the validator and
// the sanitizer. Build it once at startup with NewSchema or DefaultSchema.
type Schema struct {
	required     []string
	hyphenColumn string
}

// NewSchema creates a schema requiring the given columns. Values in
// hyphenColumn keep hyphens during sanitization.
func NewSchema(required []string, hyphenColumn string) Schema {
	return Schema{
		required:     slices.Clone(required),
		hyphenColumn: hyphenColumn,
	}
}

// DefaultSchema returns the fixture template schema.
func DefaultSchema() Schema {
	return NewSchema(DefaultColumns, ColumnFixtureType)
}

// Columns returns a copy of the required column names in order.
func (s Schema) Columns() []string {
	return slices.Clone(s.required)
}

// HyphenColumn returns the column whose values may contain hyphens.
func (s Schema) HyphenColumn() string {
	return s.hyphenColumn
}

// Validate checks that every required column appears in header.
// Returns a *SchemaError listing the missing columns in schema order.
func (s Schema) Validate(header []string) error {
	idx := MakeHeaderIndex(header)

	var missing []string
	for _, col := range s.required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// SchemaError reports required columns absent from an uploaded table.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// HeaderIndex maps exact column names to their position in a row.
type HeaderIndex map[string]int

// MakeHeaderIndex indexes a header row. When a name repeats, the first
// occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	return idx
}
