package core

// convert.go exposes the two pure operations the UI shell needs:
// MakeTemplate for the blank upload template and Convert for turning uploaded
// CSV bytes into a fixture library document.

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// TemplateFileName is the download name of the blank CSV template.
const TemplateFileName = "fixtureLibrary_template.csv"

// ResultFileName is the download name of a converted document.
const ResultFileName = "fixtureLibrary.xml"

// MakeTemplate returns a header-only CSV containing the schema's columns.
func MakeTemplate(schema Schema) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// Writing to a bytes.Buffer cannot fail.
	_ = w.Write(schema.Columns())
	w.Flush()
	return buf.Bytes()
}

// Convert turns CSV bytes into fixture library XML.
// A table lacking required columns returns a *SchemaError and no bytes.
func Convert(schema Schema, csvData []byte) ([]byte, error) {
	table, err := ReadCSV(bytes.NewReader(csvData))
	if err != nil {
		return nil, err
	}
	return ConvertTable(schema, table)
}

// ConvertTable validates, sanitizes and encodes an already parsed table.
func ConvertTable(schema Schema, table *Table) ([]byte, error) {
	lib, err := BuildTable(schema, table)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := lib.Encode(&buf); err != nil {
		return nil, fmt.Errorf("serialize fixture library: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildTable validates and sanitizes table and builds the document in memory.
func BuildTable(schema Schema, table *Table) (FixtureLibrary, error) {
	if err := schema.Validate(table.Header); err != nil {
		return FixtureLibrary{}, err
	}
	rows := NewSanitizer(schema).SanitizeTable(table)
	return BuildLibrary(rows), nil
}
