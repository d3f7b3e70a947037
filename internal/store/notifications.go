package store

import (
	"context"
	"fmt"
	"time"
)

// Notification is an engine-emitted message for downstream consumers.
// The engine only records these; rendering and delivery live elsewhere.
type Notification struct {
	ID        int64
	Kind      string
	Title     string
	Body      string
	CreatedAt time.Time
}

// AppendNotification records a notification.
func (s *Store) AppendNotification(ctx context.Context, kind, title, body string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (kind, title, body, created_at) VALUES (?, ?, ?, ?)`,
		kind, title, body, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the newest notifications first.
func (s *Store) ListNotifications(ctx context.Context, limit int) ([]Notification, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, title, body, created_at
		FROM notifications ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var createdAt string
		if err := rows.Scan(&n.ID, &n.Kind, &n.Title, &n.Body, &createdAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			n.CreatedAt = t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
