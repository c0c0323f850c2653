package trash

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"automux/internal/inference"
)

// ErrUnsupported is returned when no trash implementation exists for the
// current platform.
var ErrUnsupported = errors.New("trash not supported on this platform")

// Trasher moves a file to the trash.
type Trasher interface {
	Trash(path string) error
}

// Noop accepts every path and touches nothing.
type Noop struct{}

func (Noop) Trash(string) error { return nil }

// Unsupported fails every request with ErrUnsupported.
type Unsupported struct{}

func (Unsupported) Trash(path string) error {
	return &os.PathError{Op: "trash", Path: path, Err: ErrUnsupported}
}

// Options overrides environment lookups; zero values use the process
// environment.
type Options struct {
	GOOS     string
	Home     string
	DataHome string
	Now      func() time.Time
}

// New returns the trash implementation for the running platform.
func New(opts Options) (Trasher, error) {
	goos := opts.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	home := opts.Home
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil && goos != "windows" {
			return nil, err
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	switch goos {
	case "darwin":
		return &MacOS{Dir: filepath.Join(home, ".Trash")}, nil
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly", "solaris", "illumos":
		dataHome := opts.DataHome
		if dataHome == "" {
			dataHome = os.Getenv("XDG_DATA_HOME")
		}
		if dataHome == "" || !filepath.IsAbs(dataHome) {
			dataHome = filepath.Join(home, ".local", "share")
		}
		return &XDG{Dir: filepath.Join(dataHome, "Trash"), Now: now}, nil
	default:
		return Unsupported{}, nil
	}
}

// Expand lists every file to trash for the given inputs: each path, followed
// by the companion .sub of a VobSub .idx when it exists.
func Expand(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range paths {
		add(p)
		if !inference.IsSubtitleIndex(p) {
			continue
		}
		base := strings.TrimSuffix(p, filepath.Ext(p))
		for _, ext := range []string{".sub", ".SUB"} {
			sibling := base + ext
			if info, err := os.Stat(sibling); err == nil && info.Mode().IsRegular() {
				add(sibling)
				break
			}
		}
	}
	return out
}

// uniqueName returns name, or "stem.N.ext" for the first N >= 2 for which
// taken reports false.
func uniqueName(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := stem + "." + strconv.Itoa(i) + ext
		if !taken(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
