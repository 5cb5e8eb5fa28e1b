package history

import (
	"errors"
	"time"

	"github.com/nerrad567/tartan-home-core/internal/house"
)

var (
	// ErrHouseRequired is returned when a query or write has no house.
	ErrHouseRequired = errors.New("history: house is required")

	// ErrInvalidRetention is returned when pruning with a non-positive age.
	ErrInvalidRetention = errors.New("history: retention must be positive")
)

const (
	defaultLimit = 50
	maxLimit     = 200

	// timeLayout sorts lexically, unlike RFC3339Nano.
	timeLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// Snapshot is a stored copy of one house's rendered state.
type Snapshot struct {
	ID          string     `json:"id"`
	House       string     `json:"house"`
	Door        string     `json:"door"`
	DoorLock    string     `json:"doorLock"`
	AlarmArmed  bool       `json:"alarmArmed"`
	Temperature int        `json:"temperature"`
	Humidity    int        `json:"humidity"`
	State       house.View `json:"state"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Event is one persisted event log line.
type Event struct {
	ID        int64     `json:"id"`
	House     string    `json:"house"`
	Rule      string    `json:"rule"`
	Clamped   bool      `json:"clamped"`
	Line      string    `json:"line"`
	CreatedAt time.Time `json:"created_at"`
}

// EventFilter controls which events to return.
type EventFilter struct {
	House  string
	Limit  int // default 50, max 200
	Offset int
}

// EventPage is a page of events, newest first.
type EventPage struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err == nil {
		return t, nil
	}
	if t, rfcErr := time.Parse(time.RFC3339, value); rfcErr == nil {
		return t, nil
	}
	return time.Time{}, err
}
