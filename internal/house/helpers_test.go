package house

import (
	"testing"
	"time"
)

const (
	testLockPasscode  = "1234"
	testAlarmPasscode = "4321"
)

var testNow = time.Date(2026, time.March, 1, 22, 30, 0, 0, time.UTC)

func testSettings() Settings {
	s := DefaultSettings()
	s.LockPasscode = testLockPasscode
	s.AlarmPasscode = testAlarmPasscode
	return s
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// testState returns a fresh state with test passcodes.
func testState() State {
	return NewState("alpha", testSettings())
}

// occupiedOpen returns an occupied house with the door unlocked and open.
func occupiedOpen() State {
	s := testState()
	s.Occupancy.Proximity = ProximityOccupied
	s.Access.Lock = LockUnlocked
	s.Access.Door = DoorOpen
	return s
}

// cycle normalizes fields over s and evaluates the policy.
func cycle(s State, fields Fields, now time.Time) Result {
	in := Normalize(s, fields)
	return Evaluate(in, in.Next.InNightWindow(), now)
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock(testNow))}, opts...)
	return NewStore("alpha", testSettings(), opts...)
}

func mustApply(t *testing.T, st *Store, fields Fields) State {
	t.Helper()
	s, err := st.ApplyUpdate(fields)
	if err != nil {
		t.Fatalf("ApplyUpdate(%v) error = %v", fields, err)
	}
	return s
}

func assertAccess(t *testing.T, s State, lock LockState, door DoorState) {
	t.Helper()
	if s.Access.Lock != lock || s.Access.Door != door {
		t.Errorf("access = %s/%s, want %s/%s", s.Access.Lock, s.Access.Door, lock, door)
	}
}
