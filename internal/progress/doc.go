// Package progress converts mkvmerge's line-oriented status output into a
// bounded, monotonic percentage sequence.
//
// An Adapter owns the reader it wraps and must be driven by a single
// consumer. Each produced value is exactly one greater than the previous, so
// jumps reported by the tool are smoothed into a ramp; once 100 is produced
// the sequence ends. An `Error: <message>` line stops the sequence and is
// exposed as a *StreamError.
package progress
