package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path (and its parents) with the given content.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteFiles creates each relative name below root with placeholder content
// and returns the root.
func WriteFiles(t testing.TB, root string, names ...string) string {
	t.Helper()
	for _, name := range names {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(name)), "data:"+name)
	}
	return root
}

// AssertExists fails the test when path is missing.
func AssertExists(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

// AssertMissing fails the test when path exists.
func AssertMissing(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected %s to be gone", path)
	}
}
