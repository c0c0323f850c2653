// Package inputs expands command-line patterns into the ordered list of files
// to merge.
package inputs

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"automux/internal/services"
)

// ErrNoInput reports that no file matched any pattern.
var ErrNoInput = errors.New("no files specified")

// File is one resolved input. Path is relative to the working directory when
// the file lives below it.
type File struct {
	Path string
}

func (f File) String() string { return f.Path }

// Paths returns the file paths in order.
func Paths(files []File) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	return out
}

// Resolve expands patterns relative to cwd. Matching files are inputs;
// matching directories are searched with every include pattern, as is cwd
// itself. Duplicates are dropped keeping the first occurrence.
func Resolve(cwd string, patterns, includes []string) ([]File, error) {
	if cwd == "" {
		var err error
		if cwd, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
	}

	var files []File
	seen := make(map[string]struct{})
	add := func(p string) {
		p = filepath.Clean(p)
		key := absolute(cwd, p)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		files = append(files, File{Path: p})
	}

	dirs := []string{cwd}
	for _, pattern := range patterns {
		if strings.TrimSpace(pattern) == "" {
			continue
		}
		matches, err := expand(cwd, pattern)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			info, err := os.Stat(absolute(cwd, match))
			if err != nil {
				continue
			}
			if info.IsDir() {
				dirs = append(dirs, absolute(cwd, match))
				continue
			}
			add(match)
		}
	}

	for _, dir := range dirs {
		for _, include := range includes {
			if strings.TrimSpace(include) == "" {
				continue
			}
			matches, err := doublestar.Glob(os.DirFS(dir), filepath.ToSlash(include), doublestar.WithFilesOnly())
			if err != nil {
				return nil, services.Wrap(services.ErrValidation, "resolve", "include", fmt.Sprintf("pattern %q", include), err)
			}
			for _, match := range matches {
				add(relative(cwd, filepath.Join(dir, filepath.FromSlash(match))))
			}
		}
	}

	if len(files) == 0 {
		return nil, services.Wrap(services.ErrValidation, "resolve", "inputs", "", ErrNoInput)
	}
	return files, nil
}

// expand globs one pattern, keeping the caller's spelling of the static
// prefix (so relative patterns produce relative paths).
func expand(cwd, pattern string) ([]string, error) {
	p := filepath.ToSlash(pattern)
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	base, rest := doublestar.SplitPattern(p)
	if rest == "" {
		rest = "."
	}
	root := absolute(cwd, filepath.FromSlash(base))
	matches, err := doublestar.Glob(os.DirFS(root), rest)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "resolve", "input", fmt.Sprintf("pattern %q", pattern), err)
	}
	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, filepath.FromSlash(path.Join(base, match)))
	}
	return out, nil
}

func absolute(cwd, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}

func relative(cwd, p string) string {
	rel, err := filepath.Rel(cwd, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return p
	}
	return rel
}
