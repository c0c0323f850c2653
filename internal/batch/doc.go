// Package batch runs one automux invocation end to end.
//
// Runner.Run resolves the input patterns, infers per-track metadata, builds
// the mkvmerge plan, takes the single-instance merge lock, checks the output
// location, runs mkvmerge, moves inputs to the trash on request, and records
// the run in the history journal. Merge failures are reported in Result;
// only setup problems (no inputs, lock held, unwritable output) are returned
// as errors.
package batch
