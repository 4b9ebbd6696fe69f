// Package core provides the business logic for converting fixture tables into
// fixture library XML documents.
//
// This package has no HTTP or UI dependencies. Web handlers, the CLI and tests
// all drive the same pipeline.
//
// # Pipeline
//
// A conversion is a single synchronous pass over an in-memory table:
//
//  1. Read: CSV (or the first worksheet of an XLSX workbook) becomes a [Table].
//     A UTF-8 byte order mark is dropped and invalid UTF-8 is repaired first.
//  2. Validate: [Schema.Validate] checks that every required column is present.
//     A missing column yields a [*SchemaError] and nothing else happens.
//  3. Sanitize: [Sanitizer.SanitizeTable] filters every cell through an
//     allow-list of ASCII letters, digits and space (plus hyphen for the
//     fixture type column) and trims the result.
//  4. Build: [BuildLibrary] maps each sanitized row to one [Fixture] in row
//     order. Most fixture fields are constants.
//  5. Encode: [FixtureLibrary.Encode] writes the XML declaration and document.
//
// [Convert] and [MakeTemplate] are the two pure entry points. [Service] wraps
// them with concurrency limiting, conversion history and logging for the
// server and CLI.
//
// # Error Handling
//
// The only domain failure is a schema mismatch ([*SchemaError]). Input errors
// ([ErrEmptyFile], [ErrUnsupportedFormat], malformed CSV or workbooks) and
// capacity errors ([ErrTooManyConversions]) are mapped to user-facing
// messages with support codes by [MapError]:
//
//   - VAL004: Missing required columns
//   - FILE001-FILE006: File size, format and encoding problems
//   - CNV001-CNV003: Conversion capacity and cancellation
//   - RATE001: Rate limiting
package core
