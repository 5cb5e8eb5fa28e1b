package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/tartan-home-core/internal/house"
)

// Repository stores snapshots and events.
type Repository interface {
	SaveSnapshot(ctx context.Context, s house.State, at time.Time) (*Snapshot, error)
	ListSnapshots(ctx context.Context, houseName string, limit int) ([]Snapshot, error)
	RecordEvents(ctx context.Context, c house.Commit) error
	ListEvents(ctx context.Context, filter EventFilter) (*EventPage, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SQLiteRepository implements Repository on the house_snapshots and
// house_events tables.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// SaveSnapshot stores the rendered view of s.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, s house.State, at time.Time) (*Snapshot, error) {
	if s.Name == "" {
		return nil, ErrHouseRequired
	}
	view := s.View()
	snap := &Snapshot{
		ID:          "snap-" + uuid.NewString(),
		House:       s.Name,
		Door:        view.Door,
		DoorLock:    view.DoorLock,
		AlarmArmed:  s.Alarm.Armed,
		Temperature: view.Temperature,
		Humidity:    view.Humidity,
		State:       view,
		CreatedAt:   at.UTC(),
	}

	stateJSON, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("marshalling snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO house_snapshots
		 (id, house, door, door_lock, alarm_armed, temperature, humidity, state_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.House, snap.Door, snap.DoorLock, boolToInt(snap.AlarmArmed),
		snap.Temperature, snap.Humidity, string(stateJSON), formatTime(snap.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns the most recent snapshots of a house, newest first.
func (r *SQLiteRepository) ListSnapshots(ctx context.Context, houseName string, limit int) ([]Snapshot, error) {
	if houseName == "" {
		return nil, ErrHouseRequired
	}
	limit = clampLimit(limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, house, door, door_lock, alarm_armed, temperature, humidity, state_json, created_at
		 FROM house_snapshots
		 WHERE house = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		houseName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	snaps := make([]Snapshot, 0, limit)
	for rows.Next() {
		var s Snapshot
		var armed int
		var stateJSON, createdAt string
		if err := rows.Scan(&s.ID, &s.House, &s.Door, &s.DoorLock, &armed,
			&s.Temperature, &s.Humidity, &stateJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(stateJSON), &s.State); err != nil {
			return nil, fmt.Errorf("unmarshalling snapshot: %w", err)
		}
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing snapshot timestamp %q: %w", createdAt, err)
		}
		s.AlarmArmed = armed != 0
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return snaps, nil
}

// RecordEvents stores the event lines of one commit in a single transaction.
func (r *SQLiteRepository) RecordEvents(ctx context.Context, c house.Commit) error {
	if c.House == "" {
		return ErrHouseRequired
	}
	if len(c.Lines) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	at := formatTime(c.At)
	for _, line := range c.Lines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO house_events (house, rule, clamped, line, created_at) VALUES (?, ?, ?, ?, ?)`,
			c.House, string(c.Rule), boolToInt(c.Clamped), line, at,
		); err != nil {
			return fmt.Errorf("inserting event: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing events: %w", err)
	}
	return nil
}

// ListEvents returns a page of events for a house, newest first.
func (r *SQLiteRepository) ListEvents(ctx context.Context, filter EventFilter) (*EventPage, error) {
	if filter.House == "" {
		return nil, ErrHouseRequired
	}
	filter.Limit = clampLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM house_events WHERE house = ?", filter.House,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting events: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, house, rule, clamped, line, created_at
		 FROM house_events
		 WHERE house = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		filter.House, filter.Limit, filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var clamped int
		var createdAt string
		if err := rows.Scan(&e.ID, &e.House, &e.Rule, &clamped, &e.Line, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing event timestamp %q: %w", createdAt, err)
		}
		e.Clamped = clamped != 0
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	return &EventPage{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Prune deletes snapshots and events older than olderThan.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, ErrInvalidRetention
	}
	cutoff := formatTime(r.now().Add(-olderThan))

	var deleted int64
	for _, table := range []string{"house_snapshots", "house_events"} {
		result, err := r.db.ExecContext(ctx,
			"DELETE FROM "+table+" WHERE created_at < ?", //nolint:gosec // table name from fixed list
			cutoff,
		)
		if err != nil {
			return deleted, fmt.Errorf("pruning %s: %w", table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return deleted, fmt.Errorf("checking rows affected: %w", err)
		}
		deleted += n
	}
	return deleted, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
