// Package config loads, normalizes, and validates contourqa configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the CONTOURQA_DATA_DIR
// environment fallback. The Config type centralizes the data and log
// directories, the default tolerance profile, ledger limits, and the vision
// fixture location so the CLI and tests discover everything in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
