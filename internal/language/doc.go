// Package language validates and normalizes ISO 639 language identifiers.
//
// mkvmerge expects ISO 639-2 codes and MKVToolNix historically favours the
// bibliographic variants ("ger", "fre", "chi"), so every accepted form
// (639-1, 639-2/T, 639-2/B) is normalized to its bibliographic spelling.
// Callers receive the lookup as a Table so inference code never depends on a
// package-level registry.
package language
