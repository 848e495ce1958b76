package store

import (
	"context"
	"fmt"
	"time"
)

// RequestRecord is a logged query execution request.
type RequestRecord struct {
	Seq         int64 // assigned by the store
	ID          string
	SessionID   string
	Model       string
	Query       string
	Risky       bool
	Confirmed   bool // risky query the user chose to run anyway
	RequestedAt time.Time
}

// LogRequest appends rec to the request log.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - a request logged twice
// keeps its first row.
func (s *Store) LogRequest(ctx context.Context, rec RequestRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("log request: id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_log (id, session_id, model, query, risky, confirmed, requested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.SessionID,
		rec.Model,
		rec.Query,
		rec.Risky,
		rec.Confirmed,
		formatTime(rec.RequestedAt),
	)
	if err != nil {
		return fmt.Errorf("log request %s: %w", rec.ID, err)
	}
	return nil
}

// ListRequests returns up to limit requests, newest first. A limit of
// zero or less returns every request.
func (s *Store) ListRequests(ctx context.Context, limit int) ([]RequestRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, session_id, model, query, risky, confirmed, requested_at
		FROM query_log
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}
	defer rows.Close()

	recs := []RequestRecord{}
	for rows.Next() {
		var rec RequestRecord
		var requested string
		if err := rows.Scan(&rec.Seq, &rec.ID, &rec.SessionID, &rec.Model, &rec.Query,
			&rec.Risky, &rec.Confirmed, &requested); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		if rec.RequestedAt, err = parseTime(requested); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return recs, nil
}
