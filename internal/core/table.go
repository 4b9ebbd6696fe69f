package core

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyFile is returned when an upload has no header row.
var ErrEmptyFile = errors.New("empty file: no header row found")

// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// Format identifies how an uploaded table is encoded.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// zipMagic prefixes every XLSX workbook.
var zipMagic = []byte("PK\x03\x04")

// Table is a parsed upload: a header row and data rows in file order.
// Rows may be shorter or longer than the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// DetectFormat picks the table format from the file name, falling back to
// sniffing the leading bytes when the extension is missing or unknown.
func DetectFormat(fileName string, head []byte) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls", ".xlsm", ".ods", ".numbers":
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(fileName))
	}

	if bytes.HasPrefix(head, zipMagic) {
		return FormatXLSX, nil
	}
	return FormatCSV, nil
}

// ReadUpload detects the format of r and parses it into a Table.
func ReadUpload(fileName string, r io.Reader) (*Table, Format, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zipMagic))

	format, err := DetectFormat(fileName, head)
	if err != nil {
		return nil, "", err
	}

	table, err := ReadTable(br, format)
	return table, format, err
}

// ReadTable parses r in the given format.
func ReadTable(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatXLSX:
		return ReadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ReadCSV parses CSV text. The first record is the header; blank lines are
// skipped and records may have any number of fields. Stray quotes inside
// unquoted fields are kept as text, but a quoted field left open at the end
// of the input is rejected.
func ReadCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(NewTextReader(r))
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if line, open := unclosedQuote(data); open {
		return nil, fmt.Errorf("invalid csv: quoted field starting on line %d is never closed", line)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}

	return tableFromRecords(records)
}

// unclosedQuote reports whether a quoted field runs to the end of data, and
// the line it starts on. Quotes are read the way csv.Reader reads them with
// LazyQuotes: a quote opens a field only as its first byte, "" is an escaped
// quote, and a quote closes the field only before a comma, a line break or
// the end of input.
func unclosedQuote(data []byte) (int, bool) {
	line, openLine := 1, 0
	inQuotes, fieldStart := false, true

	for i := 0; i < len(data); i++ {
		c := data[i]
		if c == '\n' {
			line++
		}

		if inQuotes {
			if c != '"' {
				continue
			}
			if i+1 < len(data) && data[i+1] == '"' {
				i++
				continue
			}
			if i+1 == len(data) || data[i+1] == ',' || data[i+1] == '\n' || data[i+1] == '\r' {
				inQuotes = false
				fieldStart = false
			}
			continue
		}

		switch c {
		case '"':
			if fieldStart {
				inQuotes = true
				openLine = line
			}
			fieldStart = false
		case ',', '\n':
			fieldStart = true
		default:
			fieldStart = false
		}
	}

	return openLine, inQuotes
}

// ReadXLSX parses the first worksheet of an XLSX workbook.
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx workbook: read sheet %q: %w", sheets[0], err)
	}

	var records [][]string
	for _, row := range rows {
		if !isBlankRow(row) {
			records = append(records, row)
		}
	}

	return tableFromRecords(records)
}

func tableFromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	return &Table{
		Header: records[0],
		Rows:   records[1:],
	}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
