// Package house provides the decision core for Tartan Home.
//
// Each house is an independent unit of state. On every incoming
// sensor or user event the core decides what the doors, lock, alarm
// and HVAC actuators should do next and records an audit line for
// every visible change.
//
// Architecture:
//
//	┌────────────────────────────────────────────────────────┐
//	│                   Store (store.go)                     │
//	│  One cycle per update, strictly serialised per house   │
//	│                                                        │
//	│  1. Normalize   fields → Intent       (intent.go)      │
//	│  2. Schedule    night window check    (schedule.go)    │
//	│  3. Evaluate    lock/door/alarm rules (policy.go)      │
//	│  4. Regulate    heater/chiller/dehum  (climate.go)     │
//	│  5. Commit      invariant check       (invariants.go)  │
//	│  6. Log         diff → event lines    (eventlog.go)    │
//	│  7. Notify      Observers             (store.go)       │
//	└────────────────────────────────────────────────────────┘
//
// # Lock Policy Precedence
//
// The first rule that sets the lock wins for a cycle:
//
//  1. Explicit LOCK/UNLOCK with a valid passcode
//  2. Manual door close (closes and locks)
//  3. Keyless arrival
//  4. Night-window vacancy lock
//
// The intruder-safety clamp runs last and overrides all of them: an
// occupied house with intruder mode on and an intruder sensed is never
// left locked.
//
// # Key Types
//
//   - State: complete snapshot of one house
//   - Intent: normalised update (merged settings plus gated requests)
//   - Result: output of the Policy Evaluator for one cycle
//   - Store: single-writer owner of one house's State
//   - Registry: keyed set of Stores, created on first reference
//
// # Thread Safety
//
// Store and Registry are safe for concurrent use. Updates to the same
// house never interleave; GetState returns a deep copy and never sees
// a partially applied cycle.
package house
