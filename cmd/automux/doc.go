// Package main hosts the automux CLI.
//
// The root command merges its inputs into one Matroska file with mkvmerge.
// Subcommands inspect the environment (check), the run journal (history),
// and the configuration file (config). Merge semantics live in
// internal/batch; this package only parses flags, wires collaborators, and
// renders results.
package main
