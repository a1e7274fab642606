// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Event log levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event represents an event log row.
type Event struct {
	ID        int64         `json:"id"`
	Level     string        `json:"level"`
	Message   string        `json:"message"`
	UserID    sql.NullInt64 `json:"user_id,omitempty"`
	URL       string        `json:"url"`
	Metadata  string        `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}

const createEvent = `
INSERT INTO events (level, message, user_id, url, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

// CreateEventParams holds the parameters for CreateEvent.
type CreateEventParams struct {
	Level     string
	Message   string
	UserID    sql.NullInt64
	URL       string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent appends a row to the event log.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	_, err := q.db.ExecContext(ctx, createEvent,
		arg.Level, arg.Message, arg.UserID, arg.URL, arg.Metadata, arg.CreatedAt)
	return err
}

const listRecentEvents = `
SELECT id, level, message, user_id, url, metadata, created_at
FROM events ORDER BY id DESC LIMIT ?
`

// ListRecentEvents returns the newest events, most recent first.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, listRecentEvents, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Message, &e.UserID, &e.URL, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
