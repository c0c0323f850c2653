package mkvmerge

import (
	"path/filepath"
	"strings"
)

// Track is one input file passed to mkvmerge. Each file contributes track 0.
type Track struct {
	Path     string
	Language string
	Forced   bool
}

// Plan is a complete merge: the output file and the ordered inputs. Relative
// paths are resolved against Dir, or the process working directory when Dir
// is empty.
type Plan struct {
	Dir    string
	Output string
	Tracks []Track
}

// Args returns the mkvmerge arguments without the executable.
func (p Plan) Args() []string {
	args := make([]string, 0, 2+len(p.Tracks)*6)
	if p.Output != "" {
		args = append(args, "-o", p.Output)
	}
	for _, track := range p.Tracks {
		if track.Language != "" {
			args = append(args, "--language", "0:"+track.Language)
		}
		if track.Forced {
			args = append(args, "--forced-track", "0:1", "--track-name", "0:Forced")
		}
		args = append(args, track.Path)
	}
	return args
}

// Command returns the full command line with binary first.
func (p Plan) Command(binary string) []string {
	return append([]string{binary}, p.Args()...)
}

// Paths lists the input paths in order.
func (p Plan) Paths() []string {
	paths := make([]string, 0, len(p.Tracks))
	for _, track := range p.Tracks {
		paths = append(paths, track.Path)
	}
	return paths
}

// DefaultOutput derives an output name from the first .mkv input: its base
// name plus suffix, placed in the working directory. ok is false when no
// input is a Matroska file.
func DefaultOutput(paths []string, suffix string) (string, bool) {
	for _, path := range paths {
		base := filepath.Base(path)
		ext := filepath.Ext(base)
		if !strings.EqualFold(ext, ".mkv") {
			continue
		}
		return strings.TrimSuffix(base, ext) + suffix + ".mkv", true
	}
	return "", false
}
