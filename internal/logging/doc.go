// Package logging assembles structured slog loggers and formatting helpers used
// across the inspection core and the contourqa CLI.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so session and ledger code can
// tag log lines with session IDs, element IDs, audit entry IDs, and
// correlation IDs. The package also provides a no-op logger for tests and
// wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
