package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/JonMunkholm/fixturelib/internal/core"
	"github.com/JonMunkholm/fixturelib/internal/logging"
	"github.com/JonMunkholm/fixturelib/internal/web/templates"
)

// uploadOverhead leaves room for multipart boundaries and part headers on
// top of the configured file size.
const uploadOverhead = 1 << 20

// multipartMemory is how much of a multipart form is buffered in memory
// before spilling to temporary files.
const multipartMemory = 32 << 20

const xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	recent, err := s.service.RecentConversions(r.Context(), 0)
	if err != nil {
		logging.FromContext(r.Context()).Warn("load recent conversions", "error", err)
	}

	schema := s.service.Schema()
	page := templates.IndexPage(templates.IndexData{
		Columns:          schema.Columns(),
		HyphenColumn:     schema.HyphenColumn(),
		TemplateFileName: core.TemplateFileName,
		ResultFileName:   core.ResultFileName,
		MaxFileSize:      s.cfg.Upload.MaxFileSize,
		Recent:           recent,
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status      string             `json:"status"`
	Conversions core.LimiterStatus `json:"conversions"`
}

// handleHealth reports liveness and conversion slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Conversions: s.service.LimiterStatus(),
	})
}

// handleTemplate downloads the header-only CSV template.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(core.TemplateFileName))
	if _, err := w.Write(s.service.Template()); err != nil {
		logging.FromContext(r.Context()).Warn("write template", "error", err)
	}
}

// handleConvert converts an uploaded table and returns the XML document as
// a download.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	file, fileName, cleanup, err := s.openUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer cleanup()

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.service.ConvertUpload(ctx, fileName, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(core.ResultFileName))
	w.Header().Set("X-Conversion-ID", result.ID)
	w.Header().Set("X-Fixture-Count", strconv.Itoa(result.Rows))
	if _, err := w.Write(result.XML); err != nil {
		logging.FromContext(ctx).Warn("write converted document", "conversion_id", result.ID, "error", err)
	}
}

// handlePreview analyzes an uploaded table and returns a JSON summary.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, fileName, cleanup, err := s.openUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	defer cleanup()

	resp, err := s.service.PreviewUpload(r.Context(), fileName, file)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HistoryResponse is the body of GET /api/history.
type HistoryResponse struct {
	Conversions []core.ConversionRecord `json:"conversions"`
}

// handleHistory lists recent conversions, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 0)

	records, err := s.service.RecentConversions(r.Context(), limit)
	if err != nil {
		s.respondErrorStatus(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{Conversions: records})
}

// openUpload returns the uploaded file from a multipart form field "file",
// or the raw request body for CSV and XLSX content types. The caller must
// call cleanup when done.
func (s *Server) openUpload(w http.ResponseWriter, r *http.Request) (io.Reader, string, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+uploadOverhead)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, "", nil, uploadFormError(err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
			return nil, "", nil, fmt.Errorf("%w: %v", core.ErrNoFile, err)
		}
		cleanup := func() {
			file.Close()
			_ = r.MultipartForm.RemoveAll()
		}
		return file, filepath.Base(header.Filename), cleanup, nil

	case "text/csv", "text/plain", "application/octet-stream", xlsxMediaType:
		name := filepath.Base(r.URL.Query().Get("filename"))
		if name == "." || name == "/" {
			name = "upload.csv"
			if mediaType == xlsxMediaType {
				name = "upload.xlsx"
			}
		}
		return r.Body, name, func() {}, nil

	default:
		return nil, "", nil, fmt.Errorf("%w: content type %q", core.ErrNoFile, mediaType)
	}
}

// uploadFormError maps multipart parsing failures to core errors.
func uploadFormError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
	}
	return fmt.Errorf("%w: invalid form: %v", core.ErrNoFile, err)
}

// attachment builds a Content-Disposition header for a download.
func attachment(fileName string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
