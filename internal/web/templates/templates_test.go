package templates

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fixturelib/internal/core"
)

func renderString(t *testing.T, fn func(*strings.Builder) error) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, fn(&b))
	return b.String()
}

func TestIndexPage(t *testing.T) {
	data := IndexData{
		Columns:          core.DefaultColumns,
		HyphenColumn:     core.ColumnFixtureType,
		TemplateFileName: core.TemplateFileName,
		ResultFileName:   core.ResultFileName,
		MaxFileSize:      10 << 20,
		Recent: []core.ConversionRecord{
			{
				FileName:  "<script>alert(1)</script>.csv",
				Rows:      3,
				Status:    core.StatusConverted,
				Duration:  12 * time.Millisecond,
				CreatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
			},
			{
				FileName:       "bad.csv",
				Status:         core.StatusRejected,
				MissingColumns: []string{"Wattage"},
			},
		},
	}

	html := renderString(t, func(b *strings.Builder) error {
		return IndexPage(data).Render(context.Background(), b)
	})

	assert.Contains(t, html, `<form action="/api/convert" method="post" enctype="multipart/form-data">`)
	assert.Contains(t, html, `href="/api/template"`)
	assert.Contains(t, html, "fixtureLibrary_template.csv")
	assert.Contains(t, html, "<code>Wattage</code>")
	assert.Contains(t, html, "10.0 MB")
	assert.Contains(t, html, "missing: Wattage")
	assert.Contains(t, html, "2026-03-01 09:30:00")
	assert.NotContains(t, html, "<script>", "file names must be escaped")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestIndexPage_NoHistory(t *testing.T) {
	html := renderString(t, func(b *strings.Builder) error {
		return IndexPage(IndexData{Columns: core.DefaultColumns}).Render(context.Background(), b)
	})
	assert.Contains(t, html, "No conversions yet.")
	assert.NotContains(t, html, "Maximum file size")
}

func TestRecentTable(t *testing.T) {
	records := []core.ConversionRecord{
		{
			FileName: "broken.csv",
			Status:   core.StatusFailed,
			Error:    "invalid csv: quoted field starting on line 2 is never closed",
		},
		{
			FileName: "ok.csv",
			Rows:     12,
			Status:   core.StatusConverted,
			Duration: 1500 * time.Microsecond,
		},
	}

	html := renderString(t, func(b *strings.Builder) error {
		return RecentTable(records).Render(context.Background(), b)
	})

	assert.Contains(t, html, `<td class="failed">failed</td>`)
	assert.Contains(t, html, "<td>File is not a valid CSV</td>")
	assert.NotContains(t, html, "never closed", "raw errors stay out of the page")
	assert.Contains(t, html, `<td class="converted">converted</td>`)
	assert.Contains(t, html, "<td>12</td>")
	assert.Contains(t, html, "<td>2ms</td>")
}

func TestErrorAlert(t *testing.T) {
	html := renderString(t, func(b *strings.Builder) error {
		return ErrorAlert("Uploaded file is missing required columns: Wattage", "Download the template", "VAL004").
			Render(context.Background(), b)
	})

	assert.True(t, strings.HasPrefix(html, `<div class="alert" role="alert">`))
	assert.Contains(t, html, "<strong>Uploaded file is missing required columns: Wattage</strong>")
	assert.Contains(t, html, "Code: VAL004")
}

func TestErrorPage(t *testing.T) {
	html := renderString(t, func(b *strings.Builder) error {
		return ErrorPage("File is not a valid CSV", "", "FILE002").Render(context.Background(), b)
	})

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "File is not a valid CSV")
	assert.Contains(t, html, `<a href="/">Back to upload</a>`)
	assert.NotContains(t, html, "<p></p>", "empty action is omitted")
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{10 << 20, "10.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatBytes(tt.in))
	}
}
