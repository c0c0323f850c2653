package trash

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"automux/internal/fileutil"
)

const trashInfoExt = ".trashinfo"

// XDG implements the freedesktop.org home trash rooted at Dir
// (normally $XDG_DATA_HOME/Trash).
type XDG struct {
	Dir string
	Now func() time.Time
}

// Trash reserves a name in Dir/info by creating its .trashinfo exclusively,
// then moves path into Dir/files under the same name.
func (x *XDG) Trash(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &os.PathError{Op: "trash", Path: path, Err: err}
	}
	if _, err := os.Lstat(abs); err != nil {
		return &os.PathError{Op: "trash", Path: path, Err: err}
	}

	filesDir := filepath.Join(x.Dir, "files")
	infoDir := filepath.Join(x.Dir, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create trash directory: %w", err)
		}
	}

	now := time.Now
	if x.Now != nil {
		now = x.Now
	}
	body := trashInfo(abs, now())

	var name, infoPath string
	reserved := false
	for attempt := 0; attempt < 100 && !reserved; attempt++ {
		name = uniqueName(filepath.Base(abs), func(candidate string) bool {
			return exists(filepath.Join(filesDir, candidate)) || exists(filepath.Join(infoDir, candidate+trashInfoExt))
		})
		infoPath = filepath.Join(infoDir, name+trashInfoExt)
		f, err := os.OpenFile(infoPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("write trash info: %w", err)
		}
		_, writeErr := f.WriteString(body)
		closeErr := f.Close()
		if err := errors.Join(writeErr, closeErr); err != nil {
			_ = os.Remove(infoPath)
			return fmt.Errorf("write trash info: %w", err)
		}
		reserved = true
	}
	if !reserved {
		return fmt.Errorf("trash %s: no free name", path)
	}

	if err := fileutil.MoveFile(abs, filepath.Join(filesDir, name)); err != nil {
		_ = os.Remove(infoPath)
		return &os.PathError{Op: "trash", Path: path, Err: err}
	}
	return nil
}

func trashInfo(abs string, deleted time.Time) string {
	var b strings.Builder
	b.WriteString("[Trash Info]\n")
	b.WriteString("Path=")
	b.WriteString((&url.URL{Path: filepath.ToSlash(abs)}).EscapedPath())
	b.WriteString("\nDeletionDate=")
	b.WriteString(deleted.Format("2006-01-02T15:04:05"))
	b.WriteString("\n")
	return b.String()
}
