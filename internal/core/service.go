package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/fixturelib/internal/logging"
	"github.com/google/uuid"
)

// HistoryWriteTimeout bounds how long recording one conversion may take.
var HistoryWriteTimeout = 5 * time.Second

// DefaultHistoryLimit is the number of records RecentConversions returns
// when no limit is configured.
const DefaultHistoryLimit = 25

// Options configures a Service. Zero values select defaults.
type Options struct {
	// History receives one record per conversion attempt.
	// Defaults to an in-memory ring of HistoryLimit records.
	History History
	// HistoryLimit is the default size of RecentConversions.
	HistoryLimit int
	// MaxFileSize rejects larger uploads with ErrFileTooLarge. Zero disables the check.
	MaxFileSize int64
	// MaxConcurrent and MaxWait configure the conversion limiter.
	MaxConcurrent int
	MaxWait       time.Duration
}

// Service wraps the conversion pipeline with concurrency limiting,
// conversion history and logging. It is shared by the web server and CLI.
type Service struct {
	schema       Schema
	limiter      *ConversionLimiter
	history      History
	historyLimit int
	maxFileSize  int64
}

// ConversionResult is a successfully converted upload.
type ConversionResult struct {
	ID       string
	FileName string
	Format   Format
	Rows     int
	XML      []byte
	Duration time.Duration
}

// NewService creates a new Service for schema.
func NewService(schema Schema, opts Options) *Service {
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.History == nil {
		opts.History = NewMemoryHistory(opts.HistoryLimit)
	}

	return &Service{
		schema:       schema,
		limiter:      NewConversionLimiter(opts.MaxConcurrent, opts.MaxWait),
		history:      opts.History,
		historyLimit: opts.HistoryLimit,
		maxFileSize:  opts.MaxFileSize,
	}
}

// Schema returns the column configuration the service validates against.
func (s *Service) Schema() Schema {
	return s.schema
}

// Template returns the header-only CSV template.
func (s *Service) Template() []byte {
	return MakeTemplate(s.schema)
}

// ConvertUpload reads an uploaded CSV or XLSX table and converts it to
// fixture library XML. Every attempt is recorded in the conversion history.
func (s *Service) ConvertUpload(ctx context.Context, fileName string, r io.Reader) (*ConversionResult, error) {
	if err := s.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	id := uuid.New().String()
	logger := logging.WithFields(ctx, "conversion_id", id, "file", fileName)
	logger.Info("conversion started")
	start := time.Now()

	rec := ConversionRecord{
		ID:        id,
		FileName:  fileName,
		CreatedAt: start.UTC(),
	}
	rec.IPAddress, rec.UserAgent = ClientFromContext(ctx)

	table, format, err := s.readUpload(fileName, r)
	rec.Format = format
	if err != nil {
		rec.Duration = time.Since(start)
		s.recordFailure(ctx, rec, err)
		logger.Warn("conversion failed", "error", err, "duration", rec.Duration)
		return nil, err
	}
	rec.Rows = len(table.Rows)

	data, err := ConvertTable(s.schema, table)
	rec.Duration = time.Since(start)
	if err != nil {
		s.recordFailure(ctx, rec, err)
		logger.Warn("conversion rejected", "error", err, "format", format, "rows", rec.Rows)
		return nil, err
	}

	rec.Status = StatusConverted
	s.record(ctx, rec)

	logger.Info("conversion completed",
		"format", format,
		"fixtures", rec.Rows,
		"bytes", len(data),
		"duration", rec.Duration,
	)

	return &ConversionResult{
		ID:       id,
		FileName: fileName,
		Format:   format,
		Rows:     rec.Rows,
		XML:      data,
		Duration: rec.Duration,
	}, nil
}

// PreviewUpload analyzes an upload without converting it or recording
// history.
func (s *Service) PreviewUpload(ctx context.Context, fileName string, r io.Reader) (*PreviewResponse, error) {
	if err := s.acquireSlot(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	start := time.Now()

	table, format, err := s.readUpload(fileName, r)
	if err != nil {
		return nil, err
	}

	resp, err := PreviewTable(s.schema, table)
	if err != nil {
		return nil, err
	}

	resp.FileName = fileName
	resp.Format = format
	resp.ProcessingTimeMs = time.Since(start).Milliseconds()

	logging.FromContext(ctx).Debug("preview generated",
		"file", fileName,
		"rows", resp.Summary.TotalRows,
		"changed_cells", resp.Summary.ChangedCells,
	)

	return resp, nil
}

// RecentConversions returns the newest history records. A non-positive
// limit uses the configured history limit.
func (s *Service) RecentConversions(ctx context.Context, limit int) ([]ConversionRecord, error) {
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}

	records, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load conversion history: %w", err)
	}
	if records == nil {
		records = []ConversionRecord{}
	}
	return records, nil
}

// LimiterStatus reports conversion slot usage for health checks.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForConversions blocks until in-flight conversions finish or ctx ends.
func (s *Service) WaitForConversions(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// acquireSlot takes a free conversion slot immediately when one exists and
// otherwise queues on the limiter.
func (s *Service) acquireSlot(ctx context.Context) error {
	if s.limiter.TryAcquire() {
		return nil
	}

	status := s.limiter.Status()
	logging.FromContext(ctx).Info("waiting for conversion slot",
		"active", status.Active,
		"max_concurrent", status.MaxConcurrent,
	)
	if err := s.limiter.Acquire(ctx); err != nil {
		logging.FromContext(ctx).Warn("no conversion slot", "error", err)
		return err
	}
	return nil
}

// readUpload parses r, enforcing the configured size limit.
func (s *Service) readUpload(fileName string, r io.Reader) (*Table, Format, error) {
	if s.maxFileSize <= 0 {
		return ReadUpload(fileName, r)
	}

	counter := NewCountingReader(io.LimitReader(r, s.maxFileSize+1))
	table, format, err := ReadUpload(fileName, counter)
	if counter.BytesRead > s.maxFileSize {
		return nil, format, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, s.maxFileSize)
	}
	return table, format, err
}

func (s *Service) recordFailure(ctx context.Context, rec ConversionRecord, err error) {
	rec.Status = StatusFailed
	rec.Error = err.Error()

	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		rec.Status = StatusRejected
		rec.MissingColumns = schemaErr.Missing
	}

	s.record(ctx, rec)
}

// record stores rec even when the request context has been cancelled.
// History failures are logged, never returned.
func (s *Service) record(ctx context.Context, rec ConversionRecord) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), HistoryWriteTimeout)
	defer cancel()

	if err := s.history.Record(writeCtx, rec); err != nil {
		logging.FromContext(ctx).Error("record conversion history failed",
			"conversion_id", rec.ID,
			"error", err,
		)
	}
}
