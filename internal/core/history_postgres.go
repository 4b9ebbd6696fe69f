package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

const createHistoryTable = `
CREATE TABLE IF NOT EXISTS conversion_history (
	id              UUID PRIMARY KEY,
	file_name       TEXT NOT NULL,
	format          TEXT,
	row_count       INTEGER NOT NULL DEFAULT 0,
	status          TEXT NOT NULL,
	missing_columns TEXT[] NOT NULL DEFAULT '{}',
	error           TEXT,
	ip_address      TEXT,
	user_agent      TEXT,
	duration_ms     BIGINT NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS conversion_history_created_at_idx
	ON conversion_history (created_at DESC);`

const insertHistory = `
INSERT INTO conversion_history
	(id, file_name, format, row_count, status, missing_columns, error, ip_address, user_agent, duration_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const selectRecentHistory = `
SELECT id, file_name, format, row_count, status, missing_columns, error, ip_address, user_agent, duration_ms, created_at
FROM conversion_history
ORDER BY created_at DESC
LIMIT $1`

// PostgresHistory persists conversion records in PostgreSQL.
type PostgresHistory struct {
	db DBTX
}

// NewPostgresHistory creates a history store backed by db.
// Call EnsureSchema once before use.
func NewPostgresHistory(db DBTX) *PostgresHistory {
	return &PostgresHistory{db: db}
}

// EnsureSchema creates the history table if it does not exist.
func (h *PostgresHistory) EnsureSchema(ctx context.Context) error {
	if _, err := h.db.Exec(ctx, createHistoryTable); err != nil {
		return fmt.Errorf("create conversion_history: %w", err)
	}
	return nil
}

// Record implements History.
func (h *PostgresHistory) Record(ctx context.Context, rec ConversionRecord) error {
	missing := rec.MissingColumns
	if missing == nil {
		missing = []string{}
	}

	_, err := h.db.Exec(ctx, insertHistory,
		ToPgUUID(rec.ID),
		rec.FileName,
		ToPgText(string(rec.Format)),
		rec.Rows,
		string(rec.Status),
		missing,
		ToPgText(rec.Error),
		ToPgText(rec.IPAddress),
		ToPgText(rec.UserAgent),
		rec.Duration.Milliseconds(),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert conversion record: %w", err)
	}
	return nil
}

// Recent implements History, newest first.
func (h *PostgresHistory) Recent(ctx context.Context, limit int) ([]ConversionRecord, error) {
	rows, err := h.db.Query(ctx, selectRecentHistory, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversion history: %w", err)
	}
	defer rows.Close()

	var records []ConversionRecord
	for rows.Next() {
		var (
			id                             pgtype.UUID
			format, errText, ip, userAgent pgtype.Text
			durationMs                     int64
			rec                            ConversionRecord
		)
		if err := rows.Scan(&id, &rec.FileName, &format, &rec.Rows, &rec.Status,
			&rec.MissingColumns, &errText, &ip, &userAgent, &durationMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversion record: %w", err)
		}

		rec.ID = PgUUIDToString(id)
		rec.Format = Format(format.String)
		rec.Error = errText.String
		rec.IPAddress = ip.String
		rec.UserAgent = userAgent.String
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read conversion history: %w", err)
	}

	return records, nil
}

// ToPgText converts a string to pgtype.Text.
// Returns invalid (NULL) if the string is empty.
func ToPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgUUID converts a string to pgtype.UUID.
// Returns invalid if the string is empty or not a valid UUID.
func ToPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

// PgUUIDToString converts a pgtype.UUID to its string representation.
// Returns empty string if the UUID is invalid.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
