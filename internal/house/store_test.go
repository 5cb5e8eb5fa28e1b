package house

import (
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"sync"
	"testing"
)

// Scenario A: passcode-gated LOCK with the door initially open.
func TestStore_LockWithPasscode(t *testing.T) {
	st := newTestStore(t)
	s := mustApply(t, st, Fields{FieldLockRequest: "UNLOCK", FieldLockPasscode: "1234"})
	assertAccess(t, s, LockUnlocked, DoorOpen)

	s = mustApply(t, st, Fields{FieldLockRequest: "LOCK", FieldLockPasscode: "1234"})
	assertAccess(t, s, LockLocked, DoorClosed)
}

// Scenario B: keyless arrival needs no passcode.
func TestStore_KeylessArrival(t *testing.T) {
	st := newTestStore(t)
	s := mustApply(t, st, Fields{FieldKeylessEntry: true, FieldArrivingProximity: "arriving"})
	assertAccess(t, s, LockUnlocked, DoorOpen)
}

func TestStore_TickAfterKeylessKeepsLock(t *testing.T) {
	st := newTestStore(t)
	mustApply(t, st, Fields{FieldKeylessEntry: "on", FieldArrivingProximity: "arriving"})

	s := mustApply(t, st, Fields{FieldLockRequest: "LOCK", FieldLockPasscode: "1234"})
	assertAccess(t, s, LockLocked, DoorClosed)

	for i := 0; i < 3; i++ {
		s, err := st.Tick()
		if err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		assertAccess(t, s, LockLocked, DoorClosed)
	}
}

func TestStore_DoorCloseHonoursElectronicOperation(t *testing.T) {
	st := newTestStore(t)
	mustApply(t, st, Fields{FieldLockRequest: "UNLOCK", FieldLockPasscode: "1234"})
	mustApply(t, st, Fields{FieldElectronicOperation: "off"})

	s := mustApply(t, st, Fields{FieldDoor: "closed"})
	assertAccess(t, s, LockUnlocked, DoorOpen)

	s = mustApply(t, st, Fields{FieldDoor: "closed", FieldLockPasscode: "1234"})
	assertAccess(t, s, LockUnlocked, DoorOpen)
}

// Scenario C: an occupant leaving during the night window locks up.
func TestStore_NightLockOnDeparture(t *testing.T) {
	st := newTestStore(t)
	s := mustApply(t, st, Fields{
		FieldProximity:    "occupied",
		FieldLockRequest:  "UNLOCK",
		FieldLockPasscode: "1234",
		FieldNightLock:    "on",
		FieldCurrentTime:  "2300",
	})
	assertAccess(t, s, LockUnlocked, DoorOpen)

	s = mustApply(t, st, Fields{FieldProximity: "vacant"})
	assertAccess(t, s, LockLocked, DoorClosed)
}

// Scenario D: the clock advancing into the window triggers enforcement
// with no explicit request.
func TestStore_NightLockWhenClockEntersWindow(t *testing.T) {
	st := newTestStore(t)
	mustApply(t, st, Fields{
		FieldProximity:    "occupied",
		FieldLockRequest:  "UNLOCK",
		FieldLockPasscode: "1234",
		FieldNightLock:    "on",
		FieldNightStart:   "2230",
		FieldNightEnd:     "0615",
		FieldCurrentTime:  "1800",
	})

	s := mustApply(t, st, Fields{FieldProximity: "vacant", FieldCurrentTime: "2215"})
	assertAccess(t, s, LockUnlocked, DoorOpen)

	s = mustApply(t, st, Fields{FieldCurrentTime: "2230"})
	assertAccess(t, s, LockLocked, DoorClosed)
}

// Scenario E: an explicit LOCK during an intrusion with an occupant
// inside is overridden.
func TestStore_IntruderOverridesLock(t *testing.T) {
	st := newTestStore(t)
	mustApply(t, st, Fields{
		FieldProximity:    "occupied",
		FieldLockRequest:  "UNLOCK",
		FieldLockPasscode: "1234",
		FieldIntruderMode: "on",
	})

	s := mustApply(t, st, Fields{
		FieldIntruderDetected: "on",
		FieldLockRequest:      "LOCK",
		FieldLockPasscode:     "1234",
	})
	if s.Access.Lock != LockUnlocked {
		t.Errorf("Lock = %v, want unlock", s.Access.Lock)
	}
	if v := s.View(); v.PanelMessage != PanelIntruderMessage {
		t.Errorf("PanelMessage = %q, want %q", v.PanelMessage, PanelIntruderMessage)
	}
}

// Scenario F: below target the heater runs and the dehumidifier is forced off.
func TestStore_HeatsBelowTarget(t *testing.T) {
	st := newTestStore(t)
	s := mustApply(t, st, Fields{FieldHumidifier: "on", FieldTargetTemp: 75})

	c := s.Climate
	if !c.HeaterOn || c.ChillerOn || c.DehumidifierOn {
		t.Errorf("heater/chiller/dehumidifier = %v/%v/%v, want true/false/false",
			c.HeaterOn, c.ChillerOn, c.DehumidifierOn)
	}
	if c.CurrentTemp != 71 {
		t.Errorf("CurrentTemp = %d, want 71", c.CurrentTemp)
	}
}

func TestStore_EmptyUpdateIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	mustApply(t, st, Fields{
		FieldProximity:    "occupied",
		FieldKeylessEntry: "on",
		FieldNightLock:    "on",
		FieldCurrentTime:  "2300",
	})

	first := mustApply(t, st, nil)
	second := mustApply(t, st, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second empty update changed state:\n%+v\n%+v", first, second)
	}
}

func TestStore_EventLogAppendOnly(t *testing.T) {
	st := newTestStore(t)
	s1 := mustApply(t, st, Fields{FieldLockRequest: "UNLOCK", FieldLockPasscode: "1234"})
	s2 := mustApply(t, st, Fields{FieldLockRequest: "LOCK", FieldLockPasscode: "0000"})

	if len(s2.EventLog) <= len(s1.EventLog) {
		t.Fatalf("log did not grow: %d -> %d", len(s1.EventLog), len(s2.EventLog))
	}
	for i := range s1.EventLog {
		if s1.EventLog[i] != s2.EventLog[i] {
			t.Errorf("line %d rewritten: %q -> %q", i, s1.EventLog[i], s2.EventLog[i])
		}
	}
	last := s2.EventLog[len(s2.EventLog)-1]
	if !strings.Contains(last, "Rejected LOCK request: invalid passcode") {
		t.Errorf("last line = %q, want rejection note", last)
	}
	if !strings.HasPrefix(last, "[Mar 01,2026 22:30]: ") {
		t.Errorf("last line = %q, want timestamp prefix", last)
	}
	assertAccess(t, s2, LockUnlocked, DoorOpen)
}

func TestStore_GetStateReturnsCopy(t *testing.T) {
	st := newTestStore(t)
	mustApply(t, st, Fields{FieldLockRequest: "UNLOCK", FieldLockPasscode: "1234"})

	s := st.GetState()
	s.EventLog[0] = "tampered"
	s.Access.Lock = LockLocked

	again := st.GetState()
	if again.EventLog[0] == "tampered" || again.Access.Lock != LockUnlocked {
		t.Error("GetState exposed internal state")
	}
}

func TestStore_InvariantsHoldForRandomUpdates(t *testing.T) {
	pool := []Fields{
		{FieldLockRequest: "LOCK", FieldLockPasscode: "1234"},
		{FieldLockRequest: "UNLOCK", FieldLockPasscode: "1234"},
		{FieldLockRequest: "LOCK", FieldLockPasscode: "9999"},
		{FieldDoor: "closed"},
		{FieldDoor: "open"},
		{FieldProximity: "occupied"},
		{FieldProximity: "vacant"},
		{FieldArrivingProximity: "arriving"},
		{FieldArrivingProximity: "not_arriving"},
		{FieldKeylessEntry: "on"},
		{FieldKeylessEntry: "off"},
		{FieldNightLock: "on"},
		{FieldCurrentTime: "2300"},
		{FieldCurrentTime: "1200"},
		{FieldIntruderMode: "on"},
		{FieldIntruderDetected: "on"},
		{FieldIntruderDetected: "off"},
		{FieldElectronicOperation: "off"},
		{FieldElectronicOperation: "on"},
		{FieldAlarmArmed: "on"},
		{FieldAlarmArmed: "off", FieldAlarmPasscode: "4321"},
		{FieldTargetTemp: 60},
		{FieldTargetTemp: 80},
		{FieldHumidifier: "on"},
		{FieldHumidity: 99},
		{FieldLight: "on"},
		nil,
	}

	rng := rand.New(rand.NewSource(42))
	st := newTestStore(t)
	for i := 0; i < 2000; i++ {
		fields := pool[rng.Intn(len(pool))]
		s, err := st.ApplyUpdate(fields)
		if err != nil {
			t.Fatalf("step %d ApplyUpdate(%v) error = %v", i, fields, err)
		}
		if err := CheckInvariants(s); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !s.Occupancy.Empty() && s.Intrusion.SensorMode && s.Intrusion.Detected && s.Access.Lock != LockUnlocked {
			t.Fatalf("step %d: occupant locked in during intrusion", i)
		}
	}
}

func TestStore_ConcurrentUpdatesAreSerialised(t *testing.T) {
	var commits []Commit
	st := newTestStore(t, WithObserver(ObserverFunc(func(c Commit) {
		commits = append(commits, c)
	})))

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if _, err := st.ApplyUpdate(Fields{FieldTargetTemp: 60 + i%20}); err != nil {
				t.Errorf("ApplyUpdate() error = %v", err)
			}
		}(i)
		go func() {
			defer wg.Done()
			if err := CheckInvariants(st.GetState()); err != nil {
				t.Errorf("reader saw inconsistent state: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(commits) != writers {
		t.Fatalf("commits = %d, want %d", len(commits), writers)
	}
	for i := 1; i < len(commits); i++ {
		if !reflect.DeepEqual(commits[i].Prev, commits[i-1].Next) {
			t.Fatalf("commit %d did not start from commit %d's state", i, i-1)
		}
	}
	if !reflect.DeepEqual(st.GetState(), commits[len(commits)-1].Next) {
		t.Error("final state differs from last commit")
	}
}

func TestStore_ObserverSeesLinesAndRule(t *testing.T) {
	var got Commit
	st := newTestStore(t, WithObserver(ObserverFunc(func(c Commit) { got = c })))
	st.AddObserver(ObserverFunc(func(c Commit) {
		if c.House != "alpha" {
			t.Errorf("House = %q, want alpha", c.House)
		}
	}))

	mustApply(t, st, Fields{FieldKeylessEntry: "on", FieldArrivingProximity: "arriving"})

	if got.Rule != RuleKeyless {
		t.Errorf("Rule = %v, want keyless", got.Rule)
	}
	if len(got.Lines) == 0 {
		t.Error("commit carried no event lines")
	}
	if !got.At.Equal(testNow) {
		t.Errorf("At = %v, want %v", got.At, testNow)
	}
}

func TestNewStore_ZeroSettingsTakeDefaults(t *testing.T) {
	st := NewStore("plain", Settings{}, WithClock(fixedClock(testNow)))
	s := st.GetState()

	if s.Alarm.DelaySeconds != DefaultAlarmDelay {
		t.Errorf("DelaySeconds = %d, want %d", s.Alarm.DelaySeconds, DefaultAlarmDelay)
	}
	if s.Climate.TargetTemp != DefaultTargetTemp || s.Climate.Humidity != DefaultHumidity {
		t.Errorf("climate = %+v, want defaults", s.Climate)
	}
	if s.Night.Start != DefaultNightStart || s.Night.End != DefaultNightEnd {
		t.Errorf("night = %v-%v, want defaults", s.Night.Start, s.Night.End)
	}
}

func TestCheckInvariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*State)
	}{
		{"locked but open", func(s *State) { s.Access.Door = DoorOpen }},
		{"unlocked but closed", func(s *State) { s.Access.Lock = LockUnlocked }},
		{"heater and chiller", func(s *State) { s.Climate.HeaterOn, s.Climate.ChillerOn = true, true }},
		{"heater and dehumidifier", func(s *State) { s.Climate.HeaterOn, s.Climate.DehumidifierOn = true, true }},
		{"occupant trapped", func(s *State) {
			s.Occupancy.Proximity = ProximityOccupied
			s.Intrusion.SensorMode, s.Intrusion.Detected = true, true
		}},
		{"active while disarmed", func(s *State) { s.Alarm.Active = true }},
		{"humidity out of range", func(s *State) { s.Climate.Humidity = -1 }},
	}

	if err := CheckInvariants(testState()); err != nil {
		t.Fatalf("initial state: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testState()
			tt.mutate(&s)
			if err := CheckInvariants(s); !errors.Is(err, ErrInvariantViolation) {
				t.Errorf("CheckInvariants() = %v, want ErrInvariantViolation", err)
			}
		})
	}
}
