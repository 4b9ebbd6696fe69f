package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//   - Formatted for the client (HTMX fragment, JSON, HTML page, or plain text)
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err), optionally with an explicit status
//  3. Error is wrapped in a core.UserError carrying the user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered in appropriate format for the client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/fixturelib/internal/core"
	"github.com/JonMunkholm/fixturelib/internal/logging"
	"github.com/JonMunkholm/fixturelib/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error          string   `json:"error"`
	Message        string   `json:"message"`
	Action         string   `json:"action,omitempty"`
	Code           string   `json:"code"`
	MissingColumns []string `json:"missingColumns,omitempty"`
}

// statusForError picks the HTTP status for a conversion error.
func statusForError(err error) int {
	var schemaErr *core.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrTooManyConversions):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case core.IsUserFacing(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError handles error responses with user-friendly messages, using
// the status chosen by statusForError.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	s.respondErrorStatus(w, r, err, statusForError(err))
}

// respondErrorStatus logs the technical error server-side and returns an
// appropriate response based on the request type.
func (s *Server) respondErrorStatus(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userErr := core.NewUserError(err)
	userMsg := userErr.User

	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError && !errors.Is(err, core.ErrTooManyConversions) {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", userErr.Technical.Error(),
		"code", userMsg.Code,
	)

	if errors.Is(err, core.ErrTooManyConversions) {
		w.Header().Set("Retry-After", "5")
	}

	switch {
	case isHTMX(r):
		s.renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		respondErrorJSON(w, userErr, statusCode)
	case wantsHTML(r):
		s.renderErrorPage(w, r, userMsg, statusCode)
	default:
		respondErrorText(w, userMsg, statusCode)
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, err *core.UserError, statusCode int) {
	msg := err.User
	resp := ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}

	var schemaErr *core.SchemaError
	if errors.As(err, &schemaErr) {
		resp.MissingColumns = schemaErr.Missing
	}

	writeJSON(w, statusCode, resp)
}

// respondErrorText writes a plain text error response.
func respondErrorText(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func (s *Server) renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		slog.Error("render error partial", "error", err)
	}
}

// renderErrorPage renders a full error page for browser form posts.
func (s *Server) renderErrorPage(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		slog.Error("render error page", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
// API routes default to JSON unless the client asks for HTML.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")

	if strings.Contains(accept, "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}

	return strings.HasPrefix(r.URL.Path, "/api/") && !strings.Contains(accept, "text/html")
}

// wantsHTML checks if the client is a browser expecting a page.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
