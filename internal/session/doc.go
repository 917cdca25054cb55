// Package session implements the scan lifecycle for one inspection pass.
//
// A Session moves from Idle through PhotosTaken to ElementsDetected by
// driving the vision collaborator. Detected elements are measured one at a
// time; once at least one element is measured the operator disposition
// (approve, reject, flag for review) is written to the audit ledger as a
// single entry carrying a snapshot of every measured element. Reset returns
// the session to Idle from any state.
//
// Every transition returns a typed error instead of panicking, and
// AllowedTransitions enumerates what the current state accepts. Element
// accuracy is derived from the active tolerance profile and recomputed lazily
// whenever the profile version changes.
package session
