package telemetry

import (
	"time"

	"github.com/nerrad567/tartan-home-core/internal/house"
)

// Measurement names written to InfluxDB.
const (
	MeasurementClimate = "house_climate"
	MeasurementAccess  = "house_access"
)

// PointWriter queues points without blocking. *influxdb.Client
// satisfies it.
type PointWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]any, at time.Time)
}

// InfluxRecorder writes a climate point on every commit and an access
// point when the lock, door or alarm changed.
type InfluxRecorder struct {
	writer PointWriter
}

// NewInfluxRecorder creates a recorder over writer.
func NewInfluxRecorder(writer PointWriter) *InfluxRecorder {
	return &InfluxRecorder{writer: writer}
}

// OnCommit implements house.Observer.
func (r *InfluxRecorder) OnCommit(c house.Commit) {
	tags := map[string]string{"house": c.House}
	next := c.Next

	r.writer.WritePoint(MeasurementClimate, tags, map[string]any{
		"target":       next.Climate.TargetTemp,
		"temperature":  next.Climate.CurrentTemp,
		"humidity":     next.Climate.Humidity,
		"heater":       next.Climate.HeaterOn,
		"chiller":      next.Climate.ChillerOn,
		"dehumidifier": next.Climate.DehumidifierOn,
	}, c.At)

	if c.Prev.Access == next.Access && c.Prev.Alarm.Armed == next.Alarm.Armed &&
		c.Prev.Alarm.Active == next.Alarm.Active {
		return
	}
	r.writer.WritePoint(MeasurementAccess, map[string]string{
		"house": c.House,
		"rule":  string(c.Rule),
	}, map[string]any{
		"locked":       next.Access.Lock == house.LockLocked,
		"door_open":    next.Access.Door == house.DoorOpen,
		"alarm_armed":  next.Alarm.Armed,
		"alarm_active": next.Alarm.Active,
		"clamped":      c.Clamped,
	}, c.At)
}
