// Package core error codes.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL004 - Missing column: Uploaded file is missing required columns
//	         Action: Download the template and copy your data into it
//	         Patterns: *SchemaError, "missing required column"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the upload size limit
//	          Action: Split the library into smaller files
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Invalid CSV: File is not a valid CSV
//	          Action: Save the file as comma-separated values
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: File contains invalid characters
//	          Action: Save file as UTF-8 encoding
//	          Patterns: "encoding error"
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV or XLSX file to upload
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: The uploaded file has no header row
//	          Action: Start from the downloadable template
//	          Patterns: "empty file"
//
//	FILE006 - Unsupported file: File is neither CSV nor XLSX
//	          Action: Export the sheet as .csv or .xlsx
//	          Patterns: "unsupported file type", "invalid xlsx"
//
// # Conversion Errors (CNV001-CNV099)
//
//	CNV001 - System busy: Too many conversions in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many conversions"
//
//	CNV002 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	CNV003 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones. A *SchemaError anywhere in the chain is
// checked before any pattern so the message can name the missing columns.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFileTooLarge is returned when an upload exceeds the configured size.
var ErrFileTooLarge = errors.New("file too large")

// ErrNoFile is returned when a request carries no upload.
var ErrNoFile = errors.New("no file provided")

// MissingColumnsMessage is the user-visible rejection text for schema failures.
const MissingColumnsMessage = "Uploaded file is missing required columns."

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var missingColumnsMessage = UserMessage{
	Message: MissingColumnsMessage,
	Action:  "Download the template and copy your data into it",
	Code:    "VAL004",
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Validation Errors (VAL004)
	// =========================================================================
	{
		pattern: "missing required column",
		msg:     missingColumnsMessage,
	},

	// =========================================================================
	// File Errors (FILE001-FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the upload size limit",
			Action:  "Split the library into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the upload size limit",
			Action:  "Split the library into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Save the file as comma-separated values",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV or XLSX file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file has no header row",
			Action:  "Start from the downloadable template",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "File is neither CSV nor XLSX",
			Action:  "Export the sheet as .csv or .xlsx",
			Code:    "FILE006",
		},
	},
	{
		pattern: "invalid xlsx",
		msg: UserMessage{
			Message: "Workbook could not be read",
			Action:  "Export the sheet as .csv or re-save it as .xlsx",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Conversion Errors (CNV001-CNV003)
	// =========================================================================
	{
		pattern: "too many conversions",
		msg: UserMessage{
			Message: "System is busy processing other conversions",
			Action:  "Please wait a moment and try again",
			Code:    "CNV001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "CNV002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "CNV003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// Support staff should check application logs for the original technical
// error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A *SchemaError yields VAL004 with the missing column names appended.
// Otherwise the first matching pattern wins, falling back to ERR000.
//
// Example:
//
//	msg := MapError(&SchemaError{Missing: []string{"Wattage"}})
//	// msg.Code == "VAL004"
//	// msg.Message == "Uploaded file is missing required columns: Wattage"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		msg := missingColumnsMessage
		if len(schemaErr.Missing) > 0 {
			msg.Message = strings.TrimSuffix(MissingColumnsMessage, ".") + ": " +
				strings.Join(schemaErr.Missing, ", ")
		}
		return msg
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
