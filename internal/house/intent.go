package house

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fields is a partial update keyed by domain field names, as decoded
// from JSON or YAML. Unknown keys are ignored.
type Fields map[string]any

// Update field names.
const (
	FieldDoor                = "door"
	FieldLight               = "light"
	FieldTargetTemp          = "targetTemp"
	FieldHumidifier          = "humidifier"
	FieldAlarmArmed          = "alarmArmed"
	FieldAlarmDelay          = "alarmDelay"
	FieldAlarmPasscode       = "alarmPasscode"
	FieldProximity           = "proximity"
	FieldArrivingProximity   = "arrivingProximity"
	FieldKeylessEntry        = "keyLessEntry"
	FieldElectronicOperation = "electronicOperation"
	FieldLockPasscode        = "lockGivenPasscode"
	FieldLockRequest         = "lockRequest"
	FieldIntruderDetected    = "intruderDetectionSensor"
	FieldIntruderMode        = "lockIntruderSensorMode"
	FieldNightStart          = "nightStartTime"
	FieldNightEnd            = "nightEndTime"
	FieldNightLock           = "lockNightLockEnabled"
	FieldCurrentTime         = "currentTime"
	FieldTemperature         = "temperature"
	FieldHumidity            = "humidity"
)

// Accepted ranges for numeric fields.
const (
	MinTargetTemp  = 40
	MaxTargetTemp  = 100
	MinTemperature = -40
	MaxTemperature = 140
	MinHumidity    = 0
	MaxHumidity    = 100
	MaxAlarmDelay  = 3600
)

// Intent is the normalised form of one update.
//
// Next is the previous state with every directly settable field merged
// in (sensor readings and settings). Gated requests are carried
// separately so the Policy Evaluator can decide whether to honour them.
type Intent struct {
	Prev State
	Next State

	Door          *DoorState
	Light         *bool
	Arm           *bool
	AlarmPasscode string

	Lock         LockRequest
	LockPasscode string

	// Arrival is true when this update reported an approach. Keyless
	// entry acts on the report, not on the held arriving state.
	Arrival bool

	// Notes holds rejection notes for fields that failed validation.
	Notes []string
}

// Empty reports whether the intent carries no gated request.
func (in Intent) Empty() bool {
	return in.Door == nil && in.Light == nil && in.Arm == nil && in.Lock == LockRequestNone
}

// Normalize validates fields and merges them over prev.
//
// A field that fails validation keeps its previous value and adds a
// rejection note. Fields are processed in a fixed order so notes are
// deterministic.
func Normalize(prev State, fields Fields) Intent {
	in := Intent{
		Prev: prev,
		Next: prev.Clone(),
		Lock: LockRequestNone,
	}
	n := &in.Next

	reject := func(field string, v any, err error) {
		in.Notes = append(in.Notes, fmt.Sprintf("Ignored %s=%v: %v", field, v, err))
	}

	get := func(field string) (any, bool) {
		v, ok := fields[field]
		if !ok || v == nil {
			return nil, false
		}
		return v, true
	}

	if v, ok := get(FieldProximity); ok {
		if p, err := parseProximity(v); err != nil {
			reject(FieldProximity, v, err)
		} else {
			n.Occupancy.Proximity = p
		}
	}
	if v, ok := get(FieldArrivingProximity); ok {
		if a, err := parseArrival(v); err != nil {
			reject(FieldArrivingProximity, v, err)
		} else {
			n.Occupancy.Arriving = a
			in.Arrival = a == ArrivalArriving
		}
	}

	boolFields := []struct {
		name   string
		target *bool
	}{
		{FieldElectronicOperation, &n.Access.ElectronicOperation},
		{FieldKeylessEntry, &n.Access.KeylessEntry},
		{FieldNightLock, &n.Night.Enabled},
		{FieldIntruderMode, &n.Intrusion.SensorMode},
		{FieldIntruderDetected, &n.Intrusion.Detected},
		{FieldHumidifier, &n.Climate.DehumidifierOn},
	}
	for _, f := range boolFields {
		v, ok := get(f.name)
		if !ok {
			continue
		}
		b, err := parseBool(v)
		if err != nil {
			reject(f.name, v, err)
			continue
		}
		*f.target = b
	}

	timeFields := []struct {
		name   string
		target *TimeOfDay
	}{
		{FieldNightStart, &n.Night.Start},
		{FieldNightEnd, &n.Night.End},
		{FieldCurrentTime, &n.CurrentTime},
	}
	for _, f := range timeFields {
		v, ok := get(f.name)
		if !ok {
			continue
		}
		t, err := parseTime(v)
		if err != nil {
			reject(f.name, v, err)
			continue
		}
		*f.target = t
	}

	intFields := []struct {
		name     string
		min, max int
		target   *int
	}{
		{FieldTargetTemp, MinTargetTemp, MaxTargetTemp, &n.Climate.TargetTemp},
		{FieldAlarmDelay, 0, MaxAlarmDelay, &n.Alarm.DelaySeconds},
		{FieldTemperature, MinTemperature, MaxTemperature, &n.Climate.CurrentTemp},
		{FieldHumidity, MinHumidity, MaxHumidity, &n.Climate.Humidity},
	}
	for _, f := range intFields {
		v, ok := get(f.name)
		if !ok {
			continue
		}
		i, err := parseInt(v)
		if err == nil && (i < f.min || i > f.max) {
			err = fmt.Errorf("%w: out of range %d-%d", ErrInvalidValue, f.min, f.max)
		}
		if err != nil {
			reject(f.name, v, err)
			continue
		}
		*f.target = i
	}

	if v, ok := get(FieldDoor); ok {
		if d, err := parseDoor(v); err != nil {
			reject(FieldDoor, v, err)
		} else {
			in.Door = &d
		}
	}
	if v, ok := get(FieldLight); ok {
		if b, err := parseBool(v); err != nil {
			reject(FieldLight, v, err)
		} else {
			in.Light = &b
		}
	}
	if v, ok := get(FieldAlarmArmed); ok {
		if b, err := parseBool(v); err != nil {
			reject(FieldAlarmArmed, v, err)
		} else {
			in.Arm = &b
		}
	}
	if v, ok := get(FieldLockRequest); ok {
		if r, err := parseLockRequest(v); err != nil {
			reject(FieldLockRequest, v, err)
		} else {
			in.Lock = r
		}
	}
	if v, ok := get(FieldAlarmPasscode); ok {
		if s, err := parseString(v); err == nil {
			in.AlarmPasscode = s
		}
	}
	if v, ok := get(FieldLockPasscode); ok {
		if s, err := parseString(v); err == nil {
			in.LockPasscode = s
		}
	}

	return in
}

// ValidPasscode reports whether p is 4 to 8 ASCII digits.
func ValidPasscode(p string) bool {
	if len(p) < 4 || len(p) > 8 {
		return false
	}
	for _, r := range p {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func parseBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "on", "true", "yes", "1", "enabled":
			return true, nil
		case "off", "false", "no", "0", "disabled":
			return false, nil
		}
	default:
		if i, err := parseInt(v); err == nil && (i == 0 || i == 1) {
			return i == 1, nil
		}
	}
	return false, fmt.Errorf("%w: not a switch value", ErrInvalidValue)
}

func parseInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, fmt.Errorf("%w: not an integer", ErrInvalidValue)
		}
		return int(x), nil
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: not an integer", ErrInvalidValue)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%w: not an integer", ErrInvalidValue)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: not an integer", ErrInvalidValue)
}

func parseString(v any) (string, error) {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s), nil
	}
	i, err := parseInt(v)
	if err != nil {
		return "", fmt.Errorf("%w: not a string", ErrInvalidValue)
	}
	return strconv.Itoa(i), nil
}

func parseTime(v any) (TimeOfDay, error) {
	if s, ok := v.(string); ok {
		return ParseTimeOfDay(s)
	}
	i, err := parseInt(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTime, v)
	}
	return NewTimeOfDay(i)
}

func parseProximity(v any) (Proximity, error) {
	if b, ok := v.(bool); ok {
		if b {
			return ProximityOccupied, nil
		}
		return ProximityEmpty, nil
	}
	s, _ := v.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "occupied", "home":
		return ProximityOccupied, nil
	case "empty", "vacant", "away":
		return ProximityEmpty, nil
	}
	return "", fmt.Errorf("%w: not a proximity", ErrInvalidValue)
}

func parseArrival(v any) (Arrival, error) {
	if b, ok := v.(bool); ok {
		if b {
			return ArrivalArriving, nil
		}
		return ArrivalNotArriving, nil
	}
	s, _ := v.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arriving":
		return ArrivalArriving, nil
	case "not_arriving", "notarriving":
		return ArrivalNotArriving, nil
	}
	return "", fmt.Errorf("%w: not an arrival state", ErrInvalidValue)
}

func parseDoor(v any) (DoorState, error) {
	s, _ := v.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return DoorOpen, nil
	case "closed", "close":
		return DoorClosed, nil
	}
	return "", fmt.Errorf("%w: not a door state", ErrInvalidValue)
}

func parseLockRequest(v any) (LockRequest, error) {
	s, ok := v.(string)
	if !ok {
		return LockRequestNone, fmt.Errorf("%w: not a lock request", ErrInvalidValue)
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOCK":
		return LockRequestLock, nil
	case "UNLOCK":
		return LockRequestUnlock, nil
	case "NOACTION", "":
		return LockRequestNone, nil
	}
	return LockRequestNone, fmt.Errorf("%w: not a lock request", ErrInvalidValue)
}
