package core

// streaming.go prepares raw upload bytes for parsing.
//
// Spreadsheet exports frequently start with a UTF-8 byte order mark and
// sometimes contain Windows-1252 bytes. The text reader removes the BOM so the
// first header name matches exactly, and replaces invalid UTF-8 with U+FFFD,
// which the sanitizer later drops like any other disallowed character.

import (
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewTextReader wraps r with BOM removal and UTF-8 repair.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// CountingReader tracks how many bytes have been read through it.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader wraps r with a byte counter.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.BytesRead += int64(n)
	return n, err
}
