// Package influxdb writes house telemetry to InfluxDB v2.
//
// Writes go through the client's non-blocking write API: points are
// batched and flushed in the background, and write failures are
// reported through the SetOnError callback rather than returned.
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // telemetry off
//	}
//	defer client.Close()
//
//	client.WritePoint("house_climate",
//	    map[string]string{"house": "alpha"},
//	    map[string]any{"temperature": 71, "humidity": 45},
//	    time.Now())
package influxdb
