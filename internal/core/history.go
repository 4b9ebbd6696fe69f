package core

import (
	"context"
	"sync"
	"time"
)

// ConversionStatus is the outcome of one conversion attempt.
type ConversionStatus string

const (
	StatusConverted ConversionStatus = "converted"
	StatusRejected  ConversionStatus = "rejected" // schema check failed
	StatusFailed    ConversionStatus = "failed"   // unreadable or oversized input
)

// ConversionRecord describes one conversion attempt for the history views.
type ConversionRecord struct {
	ID             string           `json:"id"`
	FileName       string           `json:"fileName"`
	Format         Format           `json:"format,omitempty"`
	Rows           int              `json:"rows"`
	Status         ConversionStatus `json:"status"`
	MissingColumns []string         `json:"missingColumns,omitempty"`
	Error          string           `json:"error,omitempty"`
	IPAddress      string           `json:"ipAddress,omitempty"`
	UserAgent      string           `json:"userAgent,omitempty"`
	Duration       time.Duration    `json:"durationNs"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// History stores conversion records. Implementations must be safe for
// concurrent use.
type History interface {
	Record(ctx context.Context, rec ConversionRecord) error
	Recent(ctx context.Context, limit int) ([]ConversionRecord, error)
}

// MemoryHistory keeps the most recent records in a fixed-size ring.
type MemoryHistory struct {
	mu      sync.Mutex
	records []ConversionRecord
	next    int
	full    bool
}

// NewMemoryHistory creates a ring holding up to capacity records.
func NewMemoryHistory(capacity int) *MemoryHistory {
	if capacity <= 0 {
		capacity = 1
	}
	return &MemoryHistory{records: make([]ConversionRecord, capacity)}
}

// Record implements History.
func (h *MemoryHistory) Record(_ context.Context, rec ConversionRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records[h.next] = rec
	h.next = (h.next + 1) % len(h.records)
	if h.next == 0 {
		h.full = true
	}
	return nil
}

// Recent implements History, newest first.
func (h *MemoryHistory) Recent(_ context.Context, limit int) ([]ConversionRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	size := h.next
	if h.full {
		size = len(h.records)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]ConversionRecord, 0, limit)
	for i := 1; i <= limit; i++ {
		pos := (h.next - i + len(h.records)) % len(h.records)
		out = append(out, h.records[pos])
	}
	return out, nil
}
