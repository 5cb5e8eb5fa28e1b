package house

import (
	"fmt"
	"time"
)

// Rule identifies which lock policy set the lock in a cycle.
type Rule string

// Lock policy rules in precedence order.
const (
	RuleNone       Rule = "none"
	RuleExplicit   Rule = "explicit"
	RuleManualDoor Rule = "manual_door"
	RuleKeyless    Rule = "keyless"
	RuleNightLock  Rule = "night_lock"
)

// Result is the outcome of one policy evaluation.
type Result struct {
	State State

	// Rule is the lock policy that set the lock, or RuleNone.
	Rule Rule

	// Clamped is true when the intruder-safety clamp overrode the lock.
	Clamped bool

	// Notes holds rejection and advisory notes for the event log.
	Notes []string
}

// Evaluate computes the next access, alarm and light configuration.
//
// It is a pure function of the intent, the night-window result and the
// evaluation time. The lock rules are tried in precedence order and the
// first one that sets the lock wins. The intruder-safety clamp is
// applied afterwards and overrides every rule.
func Evaluate(in Intent, inNightWindow bool, now time.Time) Result {
	r := Result{
		State: in.Next.Clone(),
		Rule:  RuleNone,
		Notes: append([]string(nil), in.Notes...),
	}

	r.Rule = evaluateLock(&r, in, inNightWindow)
	applyIntruderClamp(&r)
	evaluateLight(&r, in)
	evaluateAlarm(&r, in, now)

	r.State.Intrusion.PanelWarning = r.State.Intrusion.SensorMode && r.State.Intrusion.Detected
	return r
}

func (r *Result) note(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

func lockDoor(a *Access) {
	a.Lock = LockLocked
	a.Door = DoorClosed
}

func unlockDoor(a *Access) {
	a.Lock = LockUnlocked
	a.Door = DoorOpen
}

func evaluateLock(r *Result, in Intent, inNightWindow bool) Rule {
	next := &r.State

	if in.Lock != LockRequestNone && lockAllowed(r, in, string(in.Lock)) {
		if in.Lock == LockRequestLock {
			lockDoor(&next.Access)
		} else {
			unlockDoor(&next.Access)
		}
		return RuleExplicit
	}

	// Closing the door locks it, so it passes the same gates as LOCK.
	if in.Door != nil {
		switch {
		case *in.Door == DoorClosed && next.Access.Door == DoorOpen:
			if lockAllowed(r, in, "door close") {
				lockDoor(&next.Access)
				return RuleManualDoor
			}
		case *in.Door == DoorOpen && next.Access.Lock == LockLocked:
			r.note("Cannot open door while it is locked")
		}
	}

	if in.Arrival {
		if next.Access.KeylessEntry {
			unlockDoor(&next.Access)
			return RuleKeyless
		}
		r.note("Arrival detected, keyless entry is disabled")
	}

	if next.Night.Enabled && inNightWindow && vacated(in) {
		lockDoor(&next.Access)
		return RuleNightLock
	}

	return RuleNone
}

// lockAllowed checks the electronic-operation and passcode gates on a
// request that changes the lock, and records a rejection note when one
// fails.
func lockAllowed(r *Result, in Intent, action string) bool {
	access := r.State.Access
	switch {
	case !access.ElectronicOperation:
		r.note("Rejected %s request: electronic operation is disabled", action)
		return false
	case !ValidPasscode(in.LockPasscode):
		r.note("Rejected %s request: malformed passcode", action)
		return false
	case access.Passcode == "" || in.LockPasscode != access.Passcode:
		r.note("Rejected %s request: invalid passcode", action)
		return false
	}
	return true
}

// vacated reports whether the house counts as unattended for the night
// lock: nobody home, or an arrival that has just completed.
func vacated(in Intent) bool {
	if in.Next.Occupancy.Empty() {
		return true
	}
	return in.Prev.Occupancy.Arriving == ArrivalArriving &&
		in.Next.Occupancy.Arriving == ArrivalNotArriving
}

// applyIntruderClamp never leaves an occupant locked in during an
// intrusion. The door is opened with the lock so the lock/door
// invariant holds.
func applyIntruderClamp(r *Result) {
	s := &r.State
	if s.Occupancy.Empty() || !s.Intrusion.SensorMode || !s.Intrusion.Detected {
		return
	}
	if s.Access.Lock == LockUnlocked {
		return
	}
	unlockDoor(&s.Access)
	r.Clamped = true
	r.note("Intruder detected with occupant inside, lock held open")
}

func evaluateLight(r *Result, in Intent) {
	if in.Light == nil {
		return
	}
	if *in.Light && r.State.Occupancy.Empty() {
		r.note("Cannot turn on light, house is empty")
		return
	}
	r.State.Light = *in.Light
}

func evaluateAlarm(r *Result, in Intent, now time.Time) {
	a := &r.State.Alarm

	if in.Arm != nil {
		if *in.Arm {
			a.Armed = true
		} else if a.Armed || a.Active {
			disarm(r, in)
		}
	}

	if !a.Armed || !alarmTriggered(r.State) {
		a.TriggeredAt = time.Time{}
		return
	}
	if a.TriggeredAt.IsZero() {
		a.TriggeredAt = now
	}
	if !a.Active && now.Sub(a.TriggeredAt) >= time.Duration(a.DelaySeconds)*time.Second {
		a.Active = true
	}
}

func disarm(r *Result, in Intent) {
	a := &r.State.Alarm
	switch {
	case !ValidPasscode(in.AlarmPasscode):
		r.note("Rejected alarm disarm: malformed passcode")
	case r.State.Occupancy.Empty():
		r.note("Cannot disarm alarm, house is empty")
	case a.Passcode == "" || in.AlarmPasscode != a.Passcode:
		r.note("Rejected alarm disarm: invalid passcode")
	default:
		a.Armed = false
		a.Active = false
		a.TriggeredAt = time.Time{}
	}
}

// alarmTriggered reports whether a trigger condition is present: the
// door standing open in an empty house, or the intruder sensor firing.
func alarmTriggered(s State) bool {
	if s.Intrusion.Detected {
		return true
	}
	return s.Access.Door == DoorOpen && s.Occupancy.Empty()
}
