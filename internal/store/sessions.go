package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/qbuilder/internal/session"
)

// SessionRecord is a saved session.
type SessionRecord struct {
	Name      string
	Document  session.Document
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionInfo describes a saved session without its document.
type SessionInfo struct {
	Name      string
	ID        string
	Model     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveSession inserts or replaces the session called rec.Name.
// CreatedAt of an existing session is kept; UpdatedAt is set from the
// store clock.
func (s *Store) SaveSession(ctx context.Context, rec SessionRecord) error {
	if rec.Name == "" {
		return fmt.Errorf("save session: name is required")
	}
	docJSON, err := marshalDocument(rec.Document)
	if err != nil {
		return fmt.Errorf("save session %q: %w", rec.Name, err)
	}
	now := formatTime(s.now())

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (name, id, model, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			id = excluded.id,
			model = excluded.model,
			document = excluded.document,
			updated_at = excluded.updated_at
	`,
		rec.Name,
		rec.Document.ID,
		rec.Document.Model,
		docJSON,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("save session %q: %w", rec.Name, err)
	}
	return nil
}

// LoadSession returns the session called name, or ErrNotFound.
func (s *Store) LoadSession(ctx context.Context, name string) (SessionRecord, error) {
	var docJSON, created, updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT document, created_at, updated_at
		FROM sessions
		WHERE name = ?
	`, name).Scan(&docJSON, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("load session %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("load session %q: %w", name, err)
	}

	rec := SessionRecord{Name: name}
	if rec.Document, err = unmarshalDocument(docJSON); err != nil {
		return SessionRecord{}, fmt.Errorf("load session %q: %w", name, err)
	}
	if rec.CreatedAt, err = parseTime(created); err != nil {
		return SessionRecord{}, err
	}
	if rec.UpdatedAt, err = parseTime(updated); err != nil {
		return SessionRecord{}, err
	}
	return rec, nil
}

// ListSessions returns all saved sessions ordered by name.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, id, model, created_at, updated_at
		FROM sessions
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	infos := []SessionInfo{}
	for rows.Next() {
		var info SessionInfo
		var created, updated string
		if err := rows.Scan(&info.Name, &info.ID, &info.Model, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if info.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if info.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return infos, nil
}

// DeleteSession removes the session called name, or returns ErrNotFound.
func (s *Store) DeleteSession(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete session %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("delete session %q: %w", name, ErrNotFound)
	}
	return nil
}
