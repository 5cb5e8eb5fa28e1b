// Package api implements the HTTP REST API and WebSocket server for
// Tartan Home Core.
//
// This package provides:
//   - REST endpoints to read a house's state view and apply updates
//   - history queries over stored snapshots and event lines
//   - a WebSocket hub streaming house.state_changed events
//   - JWT or HTTP Basic authentication scoped to a single house
//   - Prometheus exposition on /api/v1/metrics
//
// # Security
//
// Every house has one login. A token issued for one house is refused
// (403) on every other house. WebSocket connections authenticate with a
// token or with a single-use ticket from POST /auth/ws-ticket so the
// token need not appear in a URL.
//
// # Graceful Degradation
//
// The server runs without a history repository or metrics: the history
// endpoints then return 503 and /metrics is not mounted.
package api
