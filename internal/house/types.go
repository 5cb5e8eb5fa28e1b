package house

import "time"

// Proximity reports whether anyone is at home.
type Proximity string

// Proximity values.
const (
	ProximityOccupied Proximity = "occupied"
	ProximityEmpty    Proximity = "empty"
)

// Arrival reports whether an occupant is approaching the house.
type Arrival string

// Arrival values.
const (
	ArrivalArriving    Arrival = "arriving"
	ArrivalNotArriving Arrival = "not_arriving"
)

// DoorState is the physical position of the front door.
type DoorState string

// DoorState values.
const (
	DoorOpen   DoorState = "open"
	DoorClosed DoorState = "closed"
)

// LockState is the position of the door lock.
type LockState string

// LockState values.
const (
	LockLocked   LockState = "lock"
	LockUnlocked LockState = "unlock"
)

// HVACMode is the last direction the thermostat drove the temperature.
type HVACMode string

// HVACMode values.
const (
	HVACHeat HVACMode = "heat"
	HVACCool HVACMode = "cool"
)

// LockRequest is an explicit lock or unlock command.
type LockRequest string

// LockRequest values.
const (
	LockRequestNone   LockRequest = "noaction"
	LockRequestLock   LockRequest = "LOCK"
	LockRequestUnlock LockRequest = "UNLOCK"
)

// State is the complete state of one house.
//
// A State value returned by Store is a deep copy; callers may keep or
// modify it freely.
type State struct {
	Name        string
	Occupancy   Occupancy
	Access      Access
	Night       NightSchedule
	CurrentTime TimeOfDay
	Intrusion   Intrusion
	Alarm       Alarm
	Climate     Climate
	Light       bool
	EventLog    []string
}

// Occupancy holds presence sensing.
type Occupancy struct {
	Proximity Proximity
	Arriving  Arrival
}

// Empty reports whether nobody is at home.
func (o Occupancy) Empty() bool {
	return o.Proximity != ProximityOccupied
}

// Access holds the door, the lock and the settings that gate them.
type Access struct {
	Door                DoorState
	Lock                LockState
	Passcode            string
	ElectronicOperation bool
	KeylessEntry        bool
}

// NightSchedule configures automatic locking of an empty house at night.
type NightSchedule struct {
	Enabled bool
	Start   TimeOfDay
	End     TimeOfDay
}

// Intrusion holds the intruder sensor and its defence mode.
type Intrusion struct {
	SensorMode   bool
	Detected     bool
	PanelWarning bool
}

// Alarm holds the burglar alarm.
type Alarm struct {
	Armed        bool
	Active       bool
	DelaySeconds int
	Passcode     string

	// TriggeredAt is when the current trigger condition began.
	// Zero when no trigger is pending.
	TriggeredAt time.Time
}

// Climate holds the thermostat, the simulated readings and the actuators.
type Climate struct {
	TargetTemp     int
	CurrentTemp    int
	Humidity       int
	HeaterOn       bool
	ChillerOn      bool
	DehumidifierOn bool
	Mode           HVACMode
}

// Settings configure the initial state of a house. Zero numeric values
// and a zero night window take the defaults; an alarm delay of zero is
// set through the alarmDelay update field after creation.
type Settings struct {
	LockPasscode  string
	AlarmPasscode string
	TargetTemp    int
	CurrentTemp   int
	Humidity      int
	AlarmDelay    int
	NightStart    TimeOfDay
	NightEnd      TimeOfDay
}

// Default values for a house created without explicit settings.
const (
	DefaultTargetTemp = 70
	DefaultHumidity   = 45
	DefaultAlarmDelay = 30
	DefaultNightStart = TimeOfDay(2230)
	DefaultNightEnd   = TimeOfDay(615)
)

// DefaultSettings returns the settings used for houses that are not
// configured. Passcodes are empty, so gated requests are refused until
// they are set.
func DefaultSettings() Settings {
	return Settings{
		TargetTemp:  DefaultTargetTemp,
		CurrentTemp: DefaultTargetTemp,
		Humidity:    DefaultHumidity,
		AlarmDelay:  DefaultAlarmDelay,
		NightStart:  DefaultNightStart,
		NightEnd:    DefaultNightEnd,
	}
}

// NewState returns the initial state of a house: empty, closed and
// locked, with every actuator off.
func NewState(name string, s Settings) State {
	return State{
		Name: name,
		Occupancy: Occupancy{
			Proximity: ProximityEmpty,
			Arriving:  ArrivalNotArriving,
		},
		Access: Access{
			Door:                DoorClosed,
			Lock:                LockLocked,
			Passcode:            s.LockPasscode,
			ElectronicOperation: true,
		},
		Night: NightSchedule{
			Start: s.NightStart,
			End:   s.NightEnd,
		},
		Alarm: Alarm{
			DelaySeconds: s.AlarmDelay,
			Passcode:     s.AlarmPasscode,
		},
		Climate: Climate{
			TargetTemp:  s.TargetTemp,
			CurrentTemp: s.CurrentTemp,
			Humidity:    s.Humidity,
			Mode:        HVACHeat,
		},
		EventLog: []string{},
	}
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	c := s
	c.EventLog = make([]string, len(s.EventLog))
	copy(c.EventLog, s.EventLog)
	return c
}
