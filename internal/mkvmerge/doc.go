// Package mkvmerge builds mkvmerge invocations and runs them.
//
// Plan turns inferred tracks into the argument list mkvmerge expects. Runner
// launches the process through an injectable Launcher, feeds its stdout to a
// progress.Adapter, and maps the outcome to typed errors.
package mkvmerge
