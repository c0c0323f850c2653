package inference

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"

	"automux/internal/language"
)

const forcedToken = "forced"

// Metadata is the inferred track metadata for one input file. An empty
// Language means no language could be inferred.
type Metadata struct {
	Language string
	Forced   bool
}

var folder = cases.Fold()

// Stem returns the base name of path without its final extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FromFilename infers language and forced flag from the filename stem.
// The forced flag is reported even when the language code is invalid.
func FromFilename(path string, table language.Table) Metadata {
	stem := Stem(path)

	code := stem
	if idx := strings.LastIndex(stem, "-"); idx >= 0 {
		code = stem[idx+1:]
	}

	candidate := code
	forced := false
	if idx := strings.LastIndex(code, "."); idx >= 0 {
		candidate = code[:idx]
		forced = code[idx+1:] == forcedToken
	}
	if !forced {
		forced = strings.Contains(folder.String(stem), forcedToken)
	}

	meta := Metadata{Forced: forced}
	if table == nil {
		return meta
	}
	if lang, ok := table.Normalize(candidate); ok {
		meta.Language = lang
	}
	return meta
}
