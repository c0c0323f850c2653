package inference

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"automux/internal/language"
)

// SubtitleIndexExt is the VobSub index extension.
const SubtitleIndexExt = ".idx"

var (
	indexLanguagePattern = regexp.MustCompile(`id: ([a-z]{2})`)
	forcedMarkerPattern  = regexp.MustCompile(`forced subs: (ON|OFF)`)
)

// IsSubtitleIndex reports whether path names a VobSub index file.
func IsSubtitleIndex(path string) bool {
	return strings.EqualFold(filepath.Ext(path), SubtitleIndexExt)
}

// LanguageFromSubtitleIndex scans r line by line for an `id: xx` marker and
// returns the normalized code of the first one the table recognizes.
// Unrecognized codes are skipped. Returns "" when nothing matches.
func LanguageFromSubtitleIndex(r io.Reader, table language.Table) (string, error) {
	var found string
	err := scanLines(r, func(line string) bool {
		match := indexLanguagePattern.FindStringSubmatch(line)
		if match == nil {
			return true
		}
		if lang, ok := table.Normalize(match[1]); ok {
			found = lang
			return false
		}
		return true
	})
	return found, err
}

// LanguageFromSubtitleIndexFile opens path and delegates to
// LanguageFromSubtitleIndex. A missing file is returned as an error.
func LanguageFromSubtitleIndexFile(path string, table language.Table) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	lang, err := LanguageFromSubtitleIndex(f, table)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return lang, nil
}

// LanguageFromForcedMarker reproduces the historical `forced subs:` lookup,
// which hands the ON/OFF token to the language table instead of using it as
// a flag. Neither token is a language code, so in practice this returns "".
// ForcedFromSubtitleIndex is the flag-based reading of the same marker.
func LanguageFromForcedMarker(r io.Reader, table language.Table) (string, error) {
	var found string
	err := scanLines(r, func(line string) bool {
		match := forcedMarkerPattern.FindStringSubmatch(line)
		if match == nil {
			return true
		}
		if !isTwoLetterLower(match[1]) {
			return true
		}
		if lang, ok := table.Normalize(match[1]); ok {
			found = lang
			return false
		}
		return true
	})
	return found, err
}

// ForcedFromSubtitleIndex reads the first `forced subs: ON|OFF` marker in r.
// found is false when the body has no marker.
func ForcedFromSubtitleIndex(r io.Reader) (forced, found bool, err error) {
	err = scanLines(r, func(line string) bool {
		match := forcedMarkerPattern.FindStringSubmatch(line)
		if match == nil {
			return true
		}
		forced = match[1] == "ON"
		found = true
		return false
	})
	return forced, found, err
}

// The legacy lookup treated the token as an ISO 639-1 code, which only
// matches lowercase two-letter input.
func isTwoLetterLower(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func scanLines(r io.Reader, fn func(line string) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if !fn(scanner.Text()) {
			return nil
		}
	}
	return scanner.Err()
}
