package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"testing"
)

// ============================================================================
// Sanitizer Benchmarks
// ============================================================================

// BenchmarkCleanText benchmarks the per-cell filter, the hot path of every
// conversion.
func BenchmarkCleanText(b *testing.B) {
	testCases := []string{
		"2x4 LED!!",
		"Office light",
		"45W-ish",
		"  Recessed downlight, 6\" aperture (dimmable)  ",
		"Lumière Ω 40W",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			CleanText(tc, false)
		}
	}
}

// BenchmarkCleanText_Clean benchmarks the common case: nothing to remove.
func BenchmarkCleanText_Clean(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CleanText("Office light", false)
	}
}

// ============================================================================
// Conversion Benchmarks
// ============================================================================

// generateLibraryCSV creates a fixture CSV with the given number of rows.
func generateLibraryCSV(rows int) []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write(append(DefaultColumns, "Notes"))
	for i := 0; i < rows; i++ {
		_ = w.Write([]string{
			fmt.Sprintf("T-%d!", i),
			"EA",
			"Catalog",
			fmt.Sprintf("Fixture #%d (2x4)", i),
			fmt.Sprintf("%dW-ish", 10+i%90),
			"some note, with comma",
		})
	}
	w.Flush()
	return buf.Bytes()
}

func benchmarkConvert(b *testing.B, rows int) {
	data := generateLibraryCSV(rows)
	schema := DefaultSchema()

	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Convert(schema, data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkConvert_100(b *testing.B)    { benchmarkConvert(b, 100) }
func BenchmarkConvert_10000(b *testing.B)  { benchmarkConvert(b, 10000) }
func BenchmarkConvert_100000(b *testing.B) { benchmarkConvert(b, 100000) }

// BenchmarkEncode isolates XML serialization from parsing.
func BenchmarkEncode(b *testing.B) {
	table, err := ReadCSV(bytes.NewReader(generateLibraryCSV(10000)))
	if err != nil {
		b.Fatal(err)
	}
	lib, err := BuildTable(DefaultSchema(), table)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := lib.Encode(io.Discard); err != nil {
			b.Fatal(err)
		}
	}
}
