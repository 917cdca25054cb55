// Package failure defines the error taxonomy shared by the inspection core.
//
// Every failure returned from the session, ledger, and tolerance packages
// wraps exactly one of the exported markers so callers can decide how to
// present it without string matching. Use Wrap to attach component and
// operation context; use KindOf or errors.Is to classify.
package failure
