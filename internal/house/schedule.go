package house

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is a wall-clock time encoded as HHMM (0000-2359).
type TimeOfDay int

const (
	maxHour     = 23
	maxMinute   = 59
	hourDivisor = 100
	maxHHMMLen  = 4
)

// NewTimeOfDay validates an HHMM integer.
func NewTimeOfDay(hhmm int) (TimeOfDay, error) {
	t := TimeOfDay(hhmm)
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTime, hhmm)
	}
	return t, nil
}

// ParseTimeOfDay parses "HHMM" (leading zeros optional, so "615" is 06:15).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxHHMMLen {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return NewTimeOfDay(n)
}

// Valid reports whether t is within 0000-2359 with minutes below 60.
func (t TimeOfDay) Valid() bool {
	if t < 0 {
		return false
	}
	return int(t)/hourDivisor <= maxHour && int(t)%hourDivisor <= maxMinute
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / hourDivisor }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % hourDivisor }

// String formats t as four digits.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%04d", int(t))
}

// Contains reports whether current lies in the window [start, end).
// A window whose start is after its end wraps past midnight.
// A window with start equal to end is empty.
func Contains(current, start, end TimeOfDay) bool {
	if start <= end {
		return current >= start && current < end
	}
	return current >= start || current < end
}

// InWindow parses three HHMM strings and reports whether current lies
// in the window [start, end), wrapping past midnight when start > end.
func InWindow(current, start, end string) (bool, error) {
	c, err := ParseTimeOfDay(current)
	if err != nil {
		return false, err
	}
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return false, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return false, err
	}
	return Contains(c, s, e), nil
}

// InNightWindow reports whether the state's current time lies in its
// night window.
func (s State) InNightWindow() bool {
	return Contains(s.CurrentTime, s.Night.Start, s.Night.End)
}
