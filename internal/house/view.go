package house

// PanelIntruderMessage is shown on the house panel while intruder mode
// is on and the sensor reports an intruder.
const PanelIntruderMessage = "Possible intruder detected"

// View is the external rendering of a State: switches as on/off, the
// door as open/closed and the lock as lock/unlock.
type View struct {
	House                  string   `json:"house"`
	Proximity              string   `json:"proximity"`
	ArrivingProximity      string   `json:"arrivingProximity"`
	Door                   string   `json:"door"`
	DoorLock               string   `json:"doorLock"`
	ElectronicOperation    string   `json:"electronicOperation"`
	KeylessEntry           string   `json:"keyLessEntry"`
	LockNightLockEnabled   string   `json:"lockNightLockEnabled"`
	NightStartTime         string   `json:"nightStartTime"`
	NightEndTime           string   `json:"nightEndTime"`
	CurrentTime            string   `json:"currentTime"`
	LockIntruderSensorMode string   `json:"lockIntruderSensorMode"`
	IntruderDetection      string   `json:"intruderDetectionSensor"`
	PanelMessage           string   `json:"panelMessage"`
	Light                  string   `json:"light"`
	AlarmArmed             string   `json:"alarmArmed"`
	AlarmActive            string   `json:"alarmActive"`
	AlarmDelay             int      `json:"alarmDelay"`
	TargetTemp             int      `json:"targetTemp"`
	Temperature            int      `json:"temperature"`
	Humidity               int      `json:"humidity"`
	HeaterState            string   `json:"heaterState"`
	ChillerState           string   `json:"chillerState"`
	Humidifier             string   `json:"humidifier"`
	HVACMode               string   `json:"hvacMode"`
	EventLog               []string `json:"eventLog"`
}

// Envelope wraps a View under the top-level key used on the wire.
type Envelope struct {
	TartanHome View `json:"tartanHome"`
}

// View renders s for external consumers.
func (s State) View() View {
	v := View{
		House:                  s.Name,
		Proximity:              string(s.Occupancy.Proximity),
		ArrivingProximity:      string(s.Occupancy.Arriving),
		Door:                   string(s.Access.Door),
		DoorLock:               string(s.Access.Lock),
		ElectronicOperation:    onOff(s.Access.ElectronicOperation),
		KeylessEntry:           onOff(s.Access.KeylessEntry),
		LockNightLockEnabled:   onOff(s.Night.Enabled),
		NightStartTime:         s.Night.Start.String(),
		NightEndTime:           s.Night.End.String(),
		CurrentTime:            s.CurrentTime.String(),
		LockIntruderSensorMode: onOff(s.Intrusion.SensorMode),
		IntruderDetection:      onOff(s.Intrusion.Detected),
		Light:                  onOff(s.Light),
		AlarmArmed:             onOff(s.Alarm.Armed),
		AlarmActive:            onOff(s.Alarm.Active),
		AlarmDelay:             s.Alarm.DelaySeconds,
		TargetTemp:             s.Climate.TargetTemp,
		Temperature:            s.Climate.CurrentTemp,
		Humidity:               s.Climate.Humidity,
		HeaterState:            onOff(s.Climate.HeaterOn),
		ChillerState:           onOff(s.Climate.ChillerOn),
		Humidifier:             onOff(s.Climate.DehumidifierOn),
		HVACMode:               string(s.Climate.Mode),
		EventLog:               append([]string{}, s.EventLog...),
	}
	if s.Intrusion.PanelWarning {
		v.PanelMessage = PanelIntruderMessage
	}
	return v
}

// Envelope wraps the view of s for the wire.
func (s State) Envelope() Envelope {
	return Envelope{TartanHome: s.View()}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
