// Package tolerance owns the process-wide tolerance profile.
//
// A profile maps each category (points, vcuts, additional) to a threshold and
// a display colour. Readers always receive an immutable snapshot; Save
// replaces one category as a whole, persists it, and publishes a new snapshot
// so scoring never observes a partially applied profile. Concurrent saves are
// last-writer-wins per category.
package tolerance
