package language

import (
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Table validates a language identifier and returns its normalized form.
type Table interface {
	// Normalize returns the bibliographic ISO 639-2 code for code and true, or
	// "" and false when code is not a recognized language.
	Normalize(code string) (string, bool)
}

type entry struct {
	code2 string // ISO 639-1 (2-letter), empty when unassigned
	code3 string // ISO 639-2/T
	alt3  string // ISO 639-2/B when it differs (e.g. "fre" vs "fra")
	name  string // registry name
}

// bibliographic returns the 639-2/B code, which mkvmerge and the Matroska
// tags expect.
func (e *entry) bibliographic() string {
	if e.alt3 != "" {
		return e.alt3
	}
	return e.code3
}

var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(iso639)/2)
	byCode3 = make(map[string]*entry, len(iso639)+30)
	for i := range iso639 {
		e := &iso639[i]
		if e.code2 != "" {
			byCode2[e.code2] = e
		}
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	switch len(code) {
	case 2:
		return byCode2[code]
	case 3:
		return byCode3[code]
	default:
		return nil
	}
}

// ISO639 is the Table of ISO 639-1 and ISO 639-2 (T and B) codes.
type ISO639 struct{}

// NewTable returns the default ISO 639 table.
func NewTable() ISO639 {
	return ISO639{}
}

// Normalize implements Table.
func (ISO639) Normalize(code string) (string, bool) {
	e := lookup(code)
	if e == nil {
		return "", false
	}
	return e.bibliographic(), true
}

// DisplayName returns the English name for a recognized code. Returns
// "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "Unknown"
	}
	e := lookup(trimmed)
	if e == nil {
		return strings.ToUpper(trimmed)
	}
	// CLDR names are shorter than the registry's ("Greek" vs
	// "Greek, Modern (1453-)").
	if base, err := xlang.ParseBase(e.code3); err == nil {
		if name := display.English.Languages().Name(base); name != "" {
			return name
		}
	}
	return e.name
}
