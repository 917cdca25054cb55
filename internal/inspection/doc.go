// Package inspection is the application-facing facade over scan sessions,
// the audit ledger and the tolerance registry.
//
// Service owns the live sessions (each with its own vision client), exposes
// audit listing and replay, and implements verification: replaying a stored
// scan under the current tolerance profile and committing a new ledger entry
// that references the replayed one and re-embeds its payload.
package inspection
