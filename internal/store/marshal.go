package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/qbuilder/internal/session"
)

// marshalDocument converts a session document to JSON TEXT for storage.
func marshalDocument(doc session.Document) (string, error) {
	data, err := session.Marshal(doc, session.FormatJSON)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	// Encoder adds a trailing newline, remove it
	return strings.TrimSpace(string(data)), nil
}

func unmarshalDocument(data string) (session.Document, error) {
	doc, err := session.Unmarshal([]byte(data), session.FormatJSON)
	if err != nil {
		return session.Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	return doc, nil
}

// Timestamps are stored as RFC 3339 UTC text so they sort lexically.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
