package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fixturelib/internal/config"
	"github.com/JonMunkholm/fixturelib/internal/core"
)

const validCSV = "Fixture Type,Qty Type,Source Type,Description,Wattage\n" +
	"A-1 (2x4),EA,Catalog,Troffer,32.5W\n" +
	"B,EA,Catalog,Downlight,12\n"

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           0,
			RequestTimeout: 5 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize:   1 << 20,
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
		},
		Rate: config.RateLimitConfig{Enabled: false},
		Security: config.SecurityConfig{
			EnableCSP: true,
		},
		Fixture: config.FixtureConfig{
			RequiredColumns: core.DefaultColumns,
			HyphenColumn:    core.ColumnFixtureType,
			HistoryLimit:    10,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	svc := core.NewService(core.DefaultSchema(), core.Options{
		History:       core.NewMemoryHistory(cfg.Fixture.HistoryLimit),
		HistoryLimit:  cfg.Fixture.HistoryLimit,
		MaxFileSize:   cfg.Upload.MaxFileSize,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
	})
	return NewServer(svc, cfg)
}

func multipartUpload(t *testing.T, field, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHandleIndex(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `action="/api/convert"`)
	assert.Contains(t, rec.Body.String(), "No conversions yet.")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, contentSecurityPolicy, rec.Header().Get("Content-Security-Policy"))
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Conversions.MaxConcurrent)
}

func TestHandleTemplate(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/template", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=fixtureLibrary_template.csv`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Fixture Type,Qty Type,Source Type,Description,Wattage\n", rec.Body.String())
}

func TestHandleConvert_Multipart(t *testing.T) {
	s := newTestServer(t, testConfig())
	body, contentType := multipartUpload(t, "file", "library.csv", validCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=fixtureLibrary.xml`, rec.Header().Get("Content-Disposition"))
	assert.NotEmpty(t, rec.Header().Get("X-Conversion-ID"))
	assert.Equal(t, "2", rec.Header().Get("X-Fixture-Count"))

	want, err := core.Convert(core.DefaultSchema(), []byte(validCSV))
	require.NoError(t, err)
	assert.Equal(t, string(want), rec.Body.String())
}

func TestHandleConvert_RawBody(t *testing.T) {
	s := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/convert?filename=raw.csv", strings.NewReader(validCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "<fixtureType>A-1 2x4</fixtureType>")

	history := serve(s, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, history.Code)
	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(history.Body.Bytes(), &resp))
	require.Len(t, resp.Conversions, 1)
	assert.Equal(t, "raw.csv", resp.Conversions[0].FileName)
	assert.Equal(t, core.StatusConverted, resp.Conversions[0].Status)
}

func TestHandleConvert_MissingColumns(t *testing.T) {
	s := newTestServer(t, testConfig())
	body, contentType := multipartUpload(t, "file", "bad.csv", "Fixture Type,Wattage\nA,1\n")

	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(s, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VAL004", resp.Code)
	assert.Equal(t, []string{"Qty Type", "Source Type", "Description"}, resp.MissingColumns)
	assert.Equal(t, "Download the template and copy your data into it", resp.Action)
}

func TestHandleConvert_MissingColumnsHTMX(t *testing.T) {
	s := newTestServer(t, testConfig())
	body, contentType := multipartUpload(t, "file", "bad.csv", "Wattage\n1\n")

	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("HX-Request", "true")
	rec := serve(s, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="alert"`)
	assert.Contains(t, rec.Body.String(), "VAL004")
}

func TestHandleConvert_BrowserGetsErrorPage(t *testing.T) {
	s := newTestServer(t, testConfig())
	body, contentType := multipartUpload(t, "file", "library.xls", "hello")

	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := serve(s, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!doctype html>")
	assert.Contains(t, rec.Body.String(), "FILE006")
}

func TestHandleConvert_NoFile(t *testing.T) {
	s := newTestServer(t, testConfig())
	body, contentType := multipartUpload(t, "other", "library.csv", validCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(s, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FILE004", resp.Code)
}

func TestHandleConvert_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 64
	s := newTestServer(t, cfg)

	big := validCSV + strings.Repeat("C,EA,Catalog,Filler,1\n", 20)
	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(big))
	req.Header.Set("Content-Type", "text/csv")
	rec := serve(s, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FILE001", resp.Code)
}

func TestHandlePreview(t *testing.T) {
	s := newTestServer(t, testConfig())
	body, contentType := multipartUpload(t, "file", "library.csv", validCSV)

	req := httptest.NewRequest(http.MethodPost, "/api/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(s, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp core.PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "library.csv", resp.FileName)
	assert.Equal(t, 2, resp.Summary.TotalRows)
	assert.Equal(t, 2, resp.Wattage.Count)
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, cfg)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(validCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec = serve(s, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = serve(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// The template download, the upload page and health checks stay public.
	for _, path := range []string{"/api/template", "/", "/healthz"} {
		rec = serve(s, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestConvertRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, ConvertLimit: 1}
	s := newTestServer(t, cfg)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/convert", strings.NewReader(validCSV))
		req.Header.Set("Content-Type", "text/csv")
		return serve(s, req)
	}

	assert.Equal(t, http.StatusOK, send().Code)
	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"schema", &core.SchemaError{Missing: []string{"Wattage"}}, http.StatusUnprocessableEntity},
		{"too large", core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"unsupported", core.ErrUnsupportedFormat, http.StatusUnsupportedMediaType},
		{"busy", core.ErrTooManyConversions, http.StatusServiceUnavailable},
		{"empty", core.ErrEmptyFile, http.StatusBadRequest},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
