// Package preflight provides readiness checks for the filesystem paths and
// tools a merge depends on.
//
// These checks run in two contexts:
//   - The batch runner calls CheckOutput before launching mkvmerge so an
//     unwritable output directory fails fast.
//   - The CLI "automux check" command uses RunAll to display overall health.
package preflight
