package events

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// EventLog persists events to SQLite. Times are stored in UTC so that range
// filters compare correctly.
type EventLog struct {
	db *sql.DB
}

// NewEventLog creates a new event log.
func NewEventLog(db *sql.DB) *EventLog {
	return &EventLog{db: db}
}

// Append persists an event and returns its ID.
func (l *EventLog) Append(e Event) (int64, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return 0, fmt.Errorf("marshal %s: %w", e.EventType(), err)
	}

	result, err := l.db.Exec(`
		INSERT INTO events (event_type, entity_type, entity_id, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.EventType(), e.EntityType(), e.EntityID(), string(payload), e.OccurredAt().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", e.EventType(), err)
	}
	return result.LastInsertId()
}

// RawEvent is a persisted event with its JSON payload.
type RawEvent struct {
	ID         int64
	EventType  string
	EntityType string
	EntityID   int64
	Payload    string
	OccurredAt time.Time
	CreatedAt  time.Time
}

// Query filters persisted events. Zero fields match everything.
type Query struct {
	Types      []string
	EntityType string
	EntityID   int64 // only used with EntityType
	Since      time.Time
	Oldest     bool // ascending order; newest first otherwise
	Limit      int
	Offset     int
}

func (q Query) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if len(q.Types) > 0 {
		conds = append(conds, "event_type IN (?"+strings.Repeat(", ?", len(q.Types)-1)+")")
		for _, t := range q.Types {
			args = append(args, t)
		}
	}
	if q.EntityType != "" {
		conds = append(conds, "entity_type = ?")
		args = append(args, q.EntityType)
		if q.EntityID != 0 {
			conds = append(conds, "entity_id = ?")
			args = append(args, q.EntityID)
		}
	}
	if !q.Since.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, q.Since.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Find returns the events matching q.
func (l *EventLog) Find(q Query) ([]RawEvent, error) {
	where, args := q.where()
	query := `SELECT id, event_type, entity_type, entity_id, payload, occurred_at, created_at FROM events` + where
	if q.Oldest {
		query += " ORDER BY id ASC"
	} else {
		query += " ORDER BY id DESC"
	}
	if q.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []RawEvent
	for rows.Next() {
		var e RawEvent
		if err := rows.Scan(&e.ID, &e.EventType, &e.EntityType, &e.EntityID, &e.Payload, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns how many events match q, ignoring its paging.
func (l *EventLog) Count(q Query) (int, error) {
	where, args := q.where()
	var n int
	if err := l.db.QueryRow(`SELECT COUNT(*) FROM events`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// Timeline returns every event for one entity, oldest first.
func (l *EventLog) Timeline(entityType string, entityID int64) ([]RawEvent, error) {
	return l.Find(Query{EntityType: entityType, EntityID: entityID, Oldest: true})
}

// PruneBefore removes events that occurred before cutoff.
func (l *EventLog) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := l.db.Exec(`DELETE FROM events WHERE occurred_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return result.RowsAffected()
}
