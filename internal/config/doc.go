// Package config loads, normalizes, and validates automux configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AUTOMUX_MKVMERGE. The mkvmerge location is resolved here, at the boundary,
// so merge code only ever receives a concrete executable path.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
