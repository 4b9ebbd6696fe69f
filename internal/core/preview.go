package core

// preview.go answers "what will this upload turn into?" without producing a
// download: how many fixtures, which cells sanitization will alter, and the
// spread of the wattage column.

import (
	"slices"
	"strconv"

	"github.com/montanaflynn/stats"
)

// PreviewSummary contains the summary counts for an upload preview.
type PreviewSummary struct {
	TotalRows         int `json:"totalRows"`
	ChangedRows       int `json:"changedRows"`
	ChangedCells      int `json:"changedCells"`
	EmptyDescriptions int `json:"emptyDescriptions"`
	EmptyWattages     int `json:"emptyWattages"`
}

// RowPreview is one fixture as it will be written.
type RowPreview struct {
	ListPosition int               `json:"listPosition"`
	Values       map[string]string `json:"values"`
	LampType     string            `json:"lampType"`
	Wattage      string            `json:"fixtureWattage"`
}

// CellChange is a cell whose text sanitization alters.
type CellChange struct {
	ListPosition int    `json:"listPosition"`
	Column       string `json:"column"`
	Original     string `json:"original"`
	Sanitized    string `json:"sanitized"`
}

// WattageSummary describes the numeric fixture wattages of an upload.
// Rows whose wattage has no digits are not counted.
type WattageSummary struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Total  float64 `json:"total"`
}

// PreviewResponse is the complete result of an upload preview.
type PreviewResponse struct {
	FileName         string         `json:"fileName,omitempty"`
	Format           Format         `json:"format,omitempty"`
	Summary          PreviewSummary `json:"summary"`
	IgnoredColumns   []string       `json:"ignoredColumns"`
	Samples          []RowPreview   `json:"samples"`
	Changes          []CellChange   `json:"changes"`
	Wattage          WattageSummary `json:"wattage"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
}

// Sample limits
const (
	maxRowSamples    = 10
	maxChangeSamples = 20
)

// PreviewTable validates and sanitizes table and reports what conversion
// would produce. A missing required column returns a *SchemaError.
func PreviewTable(schema Schema, table *Table) (*PreviewResponse, error) {
	if err := schema.Validate(table.Header); err != nil {
		return nil, err
	}

	sanitizer := NewSanitizer(schema)
	rows := sanitizer.SanitizeTable(table)
	lib := BuildLibrary(rows)
	idx := MakeHeaderIndex(table.Header)

	resp := &PreviewResponse{
		Summary:        PreviewSummary{TotalRows: len(rows)},
		IgnoredColumns: ignoredColumns(schema, table.Header),
		Samples:        make([]RowPreview, 0, min(len(rows), maxRowSamples)),
		Changes:        []CellChange{},
	}

	var wattages stats.Float64Data
	for i, row := range rows {
		fixture := lib.Fixtures[i]
		position := i + 1

		rowChanged := false
		for pos, col := range table.Header {
			if idx[col] != pos || pos >= len(table.Rows[i]) {
				continue
			}
			original := table.Rows[i][pos]
			if original == row[col] {
				continue
			}
			rowChanged = true
			resp.Summary.ChangedCells++
			if len(resp.Changes) < maxChangeSamples {
				resp.Changes = append(resp.Changes, CellChange{
					ListPosition: position,
					Column:       col,
					Original:     original,
					Sanitized:    row[col],
				})
			}
		}
		if rowChanged {
			resp.Summary.ChangedRows++
		}

		if fixture.Description == "" {
			resp.Summary.EmptyDescriptions++
		}
		if fixture.FixtureWattage == "" {
			resp.Summary.EmptyWattages++
		} else if w, err := strconv.ParseFloat(fixture.FixtureWattage, 64); err == nil {
			wattages = append(wattages, w)
		}

		if len(resp.Samples) < maxRowSamples {
			resp.Samples = append(resp.Samples, RowPreview{
				ListPosition: position,
				Values:       row,
				LampType:     fixture.LampType,
				Wattage:      fixture.FixtureWattage,
			})
		}
	}

	resp.Wattage = summarizeWattage(wattages)
	return resp, nil
}

// summarizeWattage computes descriptive statistics. Empty input yields the
// zero summary.
func summarizeWattage(data stats.Float64Data) WattageSummary {
	if len(data) == 0 {
		return WattageSummary{}
	}

	// stats only errors on empty input, which is handled above.
	minW, _ := stats.Min(data)
	maxW, _ := stats.Max(data)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	total, _ := stats.Sum(data)

	return WattageSummary{
		Count:  len(data),
		Min:    minW,
		Max:    maxW,
		Mean:   mean,
		Median: median,
		Total:  total,
	}
}

// ignoredColumns lists header columns that are not part of the schema.
func ignoredColumns(schema Schema, header []string) []string {
	required := schema.Columns()
	ignored := []string{}
	for _, h := range header {
		if !slices.Contains(required, h) && !slices.Contains(ignored, h) {
			ignored = append(ignored, h)
		}
	}
	return ignored
}
