// Package telemetry exports house activity as Prometheus metrics and
// InfluxDB points.
//
// Both exporters are house.Observer implementations and are registered
// on the house registry at startup. Neither blocks the committing
// goroutine: Prometheus updates are in-memory and InfluxDB writes are
// queued by the client's batching write API.
package telemetry
