package house

import "fmt"

// CheckInvariants verifies that s is safe to commit. A failure means
// the evaluator produced an impossible state.
func CheckInvariants(s State) error {
	if (s.Access.Lock == LockLocked) != (s.Access.Door == DoorClosed) {
		return fmt.Errorf("%w: lock=%s door=%s", ErrInvariantViolation, s.Access.Lock, s.Access.Door)
	}
	if !s.Occupancy.Empty() && s.Intrusion.SensorMode && s.Intrusion.Detected && s.Access.Lock == LockLocked {
		return fmt.Errorf("%w: occupant locked in during intrusion", ErrInvariantViolation)
	}
	c := s.Climate
	if c.HeaterOn && c.ChillerOn {
		return fmt.Errorf("%w: heater and chiller both on", ErrInvariantViolation)
	}
	if c.HeaterOn && c.DehumidifierOn {
		return fmt.Errorf("%w: dehumidifier on with heater", ErrInvariantViolation)
	}
	if c.Humidity < MinHumidity || c.Humidity > MaxHumidity {
		return fmt.Errorf("%w: humidity %d", ErrInvariantViolation, c.Humidity)
	}
	if s.Alarm.Active && !s.Alarm.Armed {
		return fmt.Errorf("%w: alarm active while disarmed", ErrInvariantViolation)
	}
	if s.Alarm.DelaySeconds < 0 {
		return fmt.Errorf("%w: negative alarm delay", ErrInvariantViolation)
	}
	if !s.CurrentTime.Valid() || !s.Night.Start.Valid() || !s.Night.End.Valid() {
		return fmt.Errorf("%w: time of day out of range", ErrInvariantViolation)
	}
	return nil
}
