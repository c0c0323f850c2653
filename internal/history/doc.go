// Package history journals merge runs in SQLite.
//
// Each invocation records one run (output, status, exit code, error) and its
// ordered inputs with the inferred language and forced flag, plus whether the
// input was moved to the trash afterwards. The CLI reads the journal back for
// `automux history`.
//
// Schema changes bump schemaVersion in schema.go; users delete the database
// to adopt the new schema.
package history
