// Package history persists house snapshots and event log lines to SQLite.
//
// The Historian runs two jobs:
//   - every interval it stores a snapshot of each open house
//   - it drains a bounded queue of committed event lines fed by
//     OnCommit, so the house core never waits on disk
//
// Rows older than the retention period are pruned once a day.
package history
