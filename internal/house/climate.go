package house

// Comfortable humidity band the dehumidifier steers toward.
const (
	ComfortHumidityMin = 30
	ComfortHumidityMax = 50
)

// Regulate runs one thermostat cycle.
//
// Actuators are chosen from the current reading, then the simulated
// temperature and humidity advance by one tick: one degree toward the
// target under the heater or chiller, and one percent toward the
// comfort band while the dehumidifier runs.
func Regulate(c Climate) Climate {
	switch {
	case c.CurrentTemp < c.TargetTemp:
		c.HeaterOn = true
		c.ChillerOn = false
		c.Mode = HVACHeat
	case c.CurrentTemp > c.TargetTemp:
		c.HeaterOn = false
		c.ChillerOn = true
		c.Mode = HVACCool
	default:
		c.HeaterOn = false
		c.ChillerOn = false
	}

	if c.HeaterOn {
		c.DehumidifierOn = false
	}

	switch {
	case c.HeaterOn:
		c.CurrentTemp++
	case c.ChillerOn:
		c.CurrentTemp--
	}

	if c.DehumidifierOn {
		switch {
		case c.Humidity > ComfortHumidityMax:
			c.Humidity--
		case c.Humidity < ComfortHumidityMin:
			c.Humidity++
		}
	}
	c.Humidity = clamp(c.Humidity, MinHumidity, MaxHumidity)

	return c
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
