// Package templates holds the HTML components of the upload UI.
//
// Components are written in templ; run `templ generate` after editing a
// .templ file and commit the generated *_templ.go alongside it.
package templates

//go:generate templ generate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/fixturelib/internal/core"
)

// IndexData is the view model of the upload page.
type IndexData struct {
	Columns          []string
	HyphenColumn     string
	TemplateFileName string
	ResultFileName   string
	MaxFileSize      int64
	Recent           []core.ConversionRecord
}

// recordDetail is the Details cell of a history row.
func recordDetail(rec core.ConversionRecord) string {
	switch {
	case len(rec.MissingColumns) > 0:
		return "missing: " + strings.Join(rec.MissingColumns, ", ")
	case rec.Error != "":
		return core.MapError(errors.New(rec.Error)).Message
	default:
		return rec.Duration.Round(time.Millisecond).String()
	}
}

// FormatBytes renders a byte count with binary units, e.g. "10.0 MB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
