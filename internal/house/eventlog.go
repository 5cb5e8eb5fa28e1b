package house

import (
	"fmt"
	"time"
)

// TimestampLayout is the layout of the timestamp prefix on event lines.
const TimestampLayout = "Jan 02,2006 15:04"

// Stamp prefixes each message with the timestamp at.
func Stamp(at time.Time, msgs []string) []string {
	if len(msgs) == 0 {
		return nil
	}
	prefix := "[" + at.Format(TimestampLayout) + "]: "
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = prefix + m
	}
	return lines
}

// Diff returns one human-readable message per visible field that
// differs between prev and next. Unchanged fields produce nothing.
// Simulated readings (time, temperature, humidity) are not logged.
func Diff(prev, next State) []string {
	var out []string
	add := func(format string, args ...any) {
		out = append(out, fmt.Sprintf(format, args...))
	}
	toggle := func(before, after bool, on, off string) {
		if before == after {
			return
		}
		if after {
			out = append(out, on)
		} else {
			out = append(out, off)
		}
	}

	if prev.Occupancy.Proximity != next.Occupancy.Proximity {
		add("House is now %s", next.Occupancy.Proximity)
	}
	if prev.Occupancy.Arriving != next.Occupancy.Arriving && next.Occupancy.Arriving == ArrivalArriving {
		add("Occupant arriving")
	}

	if prev.Access.Lock != next.Access.Lock {
		if next.Access.Lock == LockLocked {
			add("Door locked")
		} else {
			add("Door unlocked")
		}
	}
	if prev.Access.Door != next.Access.Door {
		if next.Access.Door == DoorOpen {
			add("Door opened")
		} else {
			add("Door closed")
		}
	}
	toggle(prev.Access.ElectronicOperation, next.Access.ElectronicOperation,
		"Electronic operation of lock enabled", "Electronic operation of lock disabled")
	toggle(prev.Access.KeylessEntry, next.Access.KeylessEntry,
		"Keyless entry enabled", "Keyless entry disabled")

	toggle(prev.Night.Enabled, next.Night.Enabled, "Night lock enabled", "Night lock disabled")
	if prev.Night.Start != next.Night.Start || prev.Night.End != next.Night.End {
		add("Night lock window set to %s-%s", next.Night.Start, next.Night.End)
	}

	toggle(prev.Intrusion.SensorMode, next.Intrusion.SensorMode,
		"Intruder defense mode enabled", "Intruder defense mode disabled")
	toggle(prev.Intrusion.Detected, next.Intrusion.Detected,
		"Intruder detected", "Intruder no longer detected")

	toggle(prev.Light, next.Light, "Light turned on", "Light turned off")

	toggle(prev.Alarm.Armed, next.Alarm.Armed, "Alarm armed", "Alarm disarmed")
	toggle(prev.Alarm.Active, next.Alarm.Active, "Alarm activated", "Alarm deactivated")
	if prev.Alarm.DelaySeconds != next.Alarm.DelaySeconds {
		add("Alarm delay set to %d seconds", next.Alarm.DelaySeconds)
	}

	pc, nc := prev.Climate, next.Climate
	if pc.TargetTemp != nc.TargetTemp {
		add("Target temperature set to %dF", nc.TargetTemp)
	}
	if pc.HeaterOn != nc.HeaterOn {
		if nc.HeaterOn {
			add("Heater turned on, target temperature = %dF, current temperature = %dF", nc.TargetTemp, pc.CurrentTemp)
		} else {
			add("Heater turned off")
		}
	}
	if pc.ChillerOn != nc.ChillerOn {
		if nc.ChillerOn {
			add("Chiller turned on, target temperature = %dF, current temperature = %dF", nc.TargetTemp, pc.CurrentTemp)
		} else {
			add("Chiller turned off")
		}
	}
	if pc.Mode != nc.Mode {
		add("HVAC mode set to %s", nc.Mode)
	}
	toggle(pc.DehumidifierOn, nc.DehumidifierOn, "Dehumidifier turned on", "Dehumidifier turned off")

	return out
}
