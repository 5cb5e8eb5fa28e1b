package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoint queues one point. It is dropped silently when the client
// is not connected.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(NewPoint(measurement, tags, fields, at))
}

// NewPoint builds a point, defaulting a zero timestamp to now.
func NewPoint(measurement string, tags map[string]string, fields map[string]any, at time.Time) *write.Point {
	if at.IsZero() {
		at = time.Now()
	}
	return write.NewPoint(measurement, tags, fields, at)
}
