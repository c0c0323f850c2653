// Package inference derives per-track metadata (language and forced flag)
// for merge inputs.
//
// Two strategies are available: the `<title>-<langcode>[.forced]` filename
// convention, and marker lines in the text body of VobSub `.idx` files. Both
// are pure functions over explicit inputs; the language table is injected.
package inference
