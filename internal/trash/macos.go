package trash

import (
	"fmt"
	"os"
	"path/filepath"

	"automux/internal/fileutil"
)

// MacOS moves files into the user's ~/.Trash folder. Finder's "Put Back"
// metadata is not written.
type MacOS struct {
	Dir string
}

func (m *MacOS) Trash(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &os.PathError{Op: "trash", Path: path, Err: err}
	}
	if _, err := os.Lstat(abs); err != nil {
		return &os.PathError{Op: "trash", Path: path, Err: err}
	}
	if err := os.MkdirAll(m.Dir, 0o700); err != nil {
		return fmt.Errorf("create trash directory: %w", err)
	}
	name := uniqueName(filepath.Base(abs), func(candidate string) bool {
		return exists(filepath.Join(m.Dir, candidate))
	})
	if err := fileutil.MoveFile(abs, filepath.Join(m.Dir, name)); err != nil {
		return &os.PathError{Op: "trash", Path: path, Err: err}
	}
	return nil
}
