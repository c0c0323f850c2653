package inference

import (
	"fmt"
	"io"
	"os"
	"strings"

	"automux/internal/language"
)

// ForcedMarkerMode selects how the `forced subs: ON|OFF` line in subtitle
// index files is interpreted.
type ForcedMarkerMode string

const (
	// ForcedMarkerOff ignores the marker.
	ForcedMarkerOff ForcedMarkerMode = "off"
	// ForcedMarkerLegacy feeds the marker token to the language table.
	ForcedMarkerLegacy ForcedMarkerMode = "legacy"
	// ForcedMarkerFlag sets the forced flag when the marker reads ON.
	ForcedMarkerFlag ForcedMarkerMode = "flag"
)

// ParseForcedMarkerMode validates a configured mode. Empty input means off.
func ParseForcedMarkerMode(value string) (ForcedMarkerMode, error) {
	switch mode := ForcedMarkerMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return ForcedMarkerOff, nil
	case ForcedMarkerOff, ForcedMarkerLegacy, ForcedMarkerFlag:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported forced marker mode %q (use off, legacy or flag)", value)
	}
}

// Options tunes Resolve.
type Options struct {
	ForcedMarker ForcedMarkerMode
}

// Resolve infers metadata for path. The filename convention is applied
// first; subtitle index files without a filename language fall back to
// their `id:` marker. A forced flag from the filename is never cleared by
// the body.
func Resolve(path string, table language.Table, opts Options) (Metadata, error) {
	meta := FromFilename(path, table)
	if !IsSubtitleIndex(path) {
		return meta, nil
	}

	if meta.Language == "" {
		lang, err := LanguageFromSubtitleIndexFile(path, table)
		if err != nil {
			return meta, err
		}
		meta.Language = lang
	}

	switch opts.ForcedMarker {
	case ForcedMarkerLegacy:
		if meta.Language != "" {
			return meta, nil
		}
		lang, err := withFile(path, func(r io.Reader) (string, error) {
			return LanguageFromForcedMarker(r, table)
		})
		if err != nil {
			return meta, err
		}
		meta.Language = lang
	case ForcedMarkerFlag:
		if meta.Forced {
			return meta, nil
		}
		forced, err := withFile(path, func(r io.Reader) (bool, error) {
			forced, _, err := ForcedFromSubtitleIndex(r)
			return forced, err
		})
		if err != nil {
			return meta, err
		}
		meta.Forced = forced
	}
	return meta, nil
}

func withFile[T any](path string, fn func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	value, err := fn(f)
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", path, err)
	}
	return value, nil
}
