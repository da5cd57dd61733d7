package store

import (
	"fmt"
	"time"
)

// maxDetailSize caps the detail text stored with an event.
const maxDetailSize = 1024

// Event kinds recorded in graph_events.
const (
	EventAdd   = "add"
	EventReset = "reset"
)

// Event is one recorded change to the stored graph.
type Event struct {
	ID        int64  `json:"id" yaml:"id"`
	Kind      string `json:"kind" yaml:"kind"`
	NodeID    *int64 `json:"node_id,omitempty" yaml:"node_id,omitempty"`
	Detail    string `json:"detail" yaml:"detail"`
	CreatedAt int64  `json:"created_at" yaml:"created_at"`
}

func recordEvent(q querier, kind string, nodeID *int64, detail string) error {
	if len(detail) > maxDetailSize {
		detail = detail[:maxDetailSize]
	}
	_, err := q.Exec(`
		INSERT INTO graph_events (kind, node_id, detail, created_at)
		VALUES (?, ?, ?, ?)
	`, kind, nodeID, detail, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record %s event: %w", kind, err)
	}
	return nil
}

// RecentEvents returns the most recent events, newest first.
func (db *DB) RecentEvents(limit int) ([]Event, error) {
	rows, err := db.Query(`
		SELECT id, kind, node_id, detail, created_at
		FROM graph_events ORDER BY created_at DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var evs []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.NodeID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evs = append(evs, e)
	}
	return evs, rows.Err()
}

// EventCount returns the number of recorded events.
func (db *DB) EventCount() (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM graph_events").Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}
