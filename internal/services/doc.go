// Package services defines shared utilities consumed by the merge pipeline and
// its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (bad input vs. tool failure) without string matching.
package services
