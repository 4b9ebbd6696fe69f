package core

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewTextReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "multi-byte text unchanged",
			input:    []byte("Lumière,Ω"),
			expected: "Lumière,Ω",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte("Down\xfflight"),
			expected: "Down�light",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewTextReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestNewTextReader_PartialBOM(t *testing.T) {
	result, err := io.ReadAll(NewTextReader(bytes.NewReader([]byte{0xEF, 0xBB, 'a', 'b', 'c'})))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utf8.Valid(result) {
		t.Errorf("output is not valid UTF-8: %q", result)
	}
	if !strings.HasSuffix(string(result), "abc") {
		t.Errorf("got %q, want trailing abc", result)
	}
}

func TestCountingReader(t *testing.T) {
	data := strings.Repeat("x", 10000)
	counter := NewCountingReader(strings.NewReader(data))

	n, err := io.Copy(io.Discard, counter)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != int64(len(data)) || counter.BytesRead != n {
		t.Errorf("BytesRead = %d, copied %d, want %d", counter.BytesRead, n, len(data))
	}
}
