package inputs

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"automux/internal/services"
)

func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		full := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func native(paths ...string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, filepath.FromSlash(p))
	}
	return out
}

func TestResolve(t *testing.T) {
	cwd := t.TempDir()
	touch(t, cwd,
		"movie.mkv",
		"movie-de.ac3",
		"movie-en.srt",
		"notes.txt",
		"season1/ep1.mkv",
		"season1/ep1-en.srt",
		"season1/extras/deep-en.srt",
	)
	if err := os.MkdirAll(filepath.Join(cwd, "empty.srt"), 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		patterns []string
		includes []string
		want     []string
		anyOrder bool
	}{
		{
			name:     "literal files keep order",
			patterns: []string{"movie.mkv", "movie-de.ac3"},
			want:     native("movie.mkv", "movie-de.ac3"),
		},
		{
			name:     "glob",
			patterns: []string{"movie*"},
			want:     native("movie-de.ac3", "movie-en.srt", "movie.mkv"),
		},
		{
			name:     "nested glob keeps prefix",
			patterns: []string{"season1/*.srt"},
			want:     native("season1/ep1-en.srt"),
		},
		{
			name:     "double star",
			patterns: []string{"season1/**/*.srt"},
			want:     native("season1/ep1-en.srt", "season1/extras/deep-en.srt"),
			anyOrder: true,
		},
		{
			name:     "include searches cwd",
			includes: []string{"*.srt"},
			want:     native("movie-en.srt"),
		},
		{
			name:     "directory patterns add include roots",
			patterns: []string{"season1"},
			includes: []string{"*.mkv"},
			want:     native("movie.mkv", "season1/ep1.mkv"),
		},
		{
			name:     "duplicates dropped",
			patterns: []string{"movie.mkv", "./movie.mkv"},
			includes: []string{"*.mkv"},
			want:     native("movie.mkv"),
		},
		{
			name:     "missing literal ignored",
			patterns: []string{"absent.mkv", "movie.mkv"},
			want:     native("movie.mkv"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := Resolve(cwd, tt.patterns, tt.includes)
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			got := Paths(files)
			if tt.anyOrder {
				slices.Sort(got)
				slices.Sort(tt.want)
			}
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Resolve = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveAbsolutePattern(t *testing.T) {
	cwd := t.TempDir()
	other := t.TempDir()
	touch(t, other, "show.mkv")

	files, err := Resolve(cwd, []string{filepath.Join(other, "*.mkv")}, nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want := []string{filepath.Join(other, "show.mkv")}
	if got := Paths(files); !slices.Equal(got, want) {
		t.Fatalf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveNoInput(t *testing.T) {
	cwd := t.TempDir()
	touch(t, cwd, "readme.txt")

	_, err := Resolve(cwd, []string{"*.mkv"}, []string{"*.srt"})
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
}

func TestFileString(t *testing.T) {
	f := File{Path: filepath.FromSlash("subs/Movie-en.forced.idx")}
	if f.String() != f.Path {
		t.Fatalf("String = %q", f.String())
	}
}
