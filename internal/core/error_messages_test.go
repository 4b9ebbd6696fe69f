package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "schema error lists missing columns",
			err:         &SchemaError{Missing: []string{"Description", "Wattage"}},
			wantCode:    "VAL004",
			wantMessage: "Uploaded file is missing required columns: Description, Wattage",
		},
		{
			name:        "wrapped schema error",
			err:         fmt.Errorf("convert lib.csv: %w", &SchemaError{Missing: []string{"Wattage"}}),
			wantCode:    "VAL004",
			wantMessage: "Uploaded file is missing required columns: Wattage",
		},
		{
			name:        "schema error without names",
			err:         &SchemaError{},
			wantCode:    "VAL004",
			wantMessage: MissingColumnsMessage,
		},
		{
			name:        "file too large maps correctly",
			err:         fmt.Errorf("%w: limit is 10 bytes", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the upload size limit",
		},
		{
			name:        "max bytes reader maps to file too large",
			err:         errors.New("http: request body too large"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the upload size limit",
		},
		{
			name:        "invalid csv maps correctly",
			err:         errors.New(`invalid csv: parse error on line 3, column 5: extraneous or missing " in quoted-field`),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV",
		},
		{
			name:        "no file maps correctly",
			err:         ErrNoFile,
			wantCode:    "FILE004",
			wantMessage: "No file was selected",
		},
		{
			name:        "empty file maps correctly",
			err:         ErrEmptyFile,
			wantCode:    "FILE005",
			wantMessage: "The uploaded file has no header row",
		},
		{
			name:        "unsupported format maps correctly",
			err:         fmt.Errorf("%w: .xls", ErrUnsupportedFormat),
			wantCode:    "FILE006",
			wantMessage: "File is neither CSV nor XLSX",
		},
		{
			name:        "busy limiter maps correctly",
			err:         ErrTooManyConversions,
			wantCode:    "CNV001",
			wantMessage: "System is busy processing other conversions",
		},
		{
			name:        "cancelled context maps correctly",
			err:         context.Canceled,
			wantCode:    "CNV002",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "deadline maps correctly",
			err:         context.DeadlineExceeded,
			wantCode:    "CNV003",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("INVALID CSV: bare quote"),
			wantCode:    "FILE002",
			wantMessage: "File is not a valid CSV",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&SchemaError{Missing: []string{"Wattage"}})

	expected := "Uploaded file is missing required columns: Wattage (Code: VAL004). Download the template and copy your data into it"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "schema error is user facing",
			err:  &SchemaError{Missing: []string{"Wattage"}},
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("read upload: %w", ErrEmptyFile)
		userErr := NewUserError(techErr)

		if userErr.Error() != "The uploaded file has no header row" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, ErrEmptyFile) {
			t.Error("Unwrap() should return original error")
		}
	})
}
