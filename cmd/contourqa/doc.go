// Package main hosts the contourqa CLI entrypoint and command graph.
//
// The Cobra command tree drives scan sessions against the vision collaborator,
// browses and replays the audit ledger, and edits the tolerance profile. It
// centralizes configuration resolution and logger setup so subcommands only
// deal with flags and output.
package main
