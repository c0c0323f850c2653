package inference

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"automux/internal/language"
)

const sampleIndex = `# VobSub index file, v7 (do not modify this line!)
size: 720x480
org: 0, 0
forced subs: OFF
langidx: 0

# English
id: en, index: 0
timestamp: 00:00:01:000, filepos: 000000000
`

func TestLanguageFromSubtitleIndex(t *testing.T) {
	table := language.NewTable()
	tests := []struct {
		name string
		body string
		want string
	}{
		{"english", sampleIndex, "eng"},
		{"no id line", "size: 720x480\n", ""},
		{"unknown code skipped", "id: xx, index: 0\nid: de, index: 1\n", "ger"},
		{"first match wins", "id: fr, index: 0\nid: de, index: 1\n", "fre"},
		{"uppercase does not match", "id: EN, index: 0\n", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LanguageFromSubtitleIndex(strings.NewReader(tt.body), table)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestLanguageFromSubtitleIndexFileMissing(t *testing.T) {
	_, err := LanguageFromSubtitleIndexFile(filepath.Join(t.TempDir(), "missing.idx"), language.NewTable())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLanguageFromForcedMarkerNeverMatchesToken(t *testing.T) {
	table := language.NewTable()
	for _, body := range []string{"forced subs: ON\n", "forced subs: OFF\n", sampleIndex} {
		got, err := LanguageFromForcedMarker(strings.NewReader(body), table)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "" {
			t.Errorf("expected no language for %q, got %q", body, got)
		}
	}
}

func TestForcedFromSubtitleIndex(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		forced bool
		found  bool
	}{
		{"on", "forced subs: ON\n", true, true},
		{"off", sampleIndex, false, true},
		{"missing", "size: 720x480\n", false, false},
		{"first marker wins", "forced subs: ON\nforced subs: OFF\n", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forced, found, err := ForcedFromSubtitleIndex(strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if forced != tt.forced || found != tt.found {
				t.Errorf("got forced=%v found=%v, want forced=%v found=%v", forced, found, tt.forced, tt.found)
			}
		})
	}
}

func TestIsSubtitleIndex(t *testing.T) {
	if !IsSubtitleIndex("a/b/Movie.idx") || !IsSubtitleIndex("Movie.IDX") {
		t.Fatal("expected .idx to be recognized")
	}
	if IsSubtitleIndex("Movie.sub") || IsSubtitleIndex("idx") {
		t.Fatal("unexpected subtitle index match")
	}
}

func writeIndex(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
