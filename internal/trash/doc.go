// Package trash moves merged inputs to the desktop trash instead of deleting
// them.
//
// Linux and the BSDs follow the freedesktop.org Trash specification (home
// trash only, with a cross-device copy fallback); macOS uses ~/.Trash. Other
// platforms report ErrUnsupported. Noop stands in for dry runs.
package trash
