// Package preflight provides readiness checks for the filesystem paths,
// fixtures and ledger contourqa depends on.
//
// The CLI "contourqa doctor" command runs RunAll and prints one status line
// per check. A failing check carries the reason in its Detail. Checks never
// append audit entries.
package preflight
