//go:build !unix

package preflight

import "os"

// accessReadWrite checks access by creating and removing a temporary file.
func accessReadWrite(path string) error {
	f, err := os.CreateTemp(path, ".automux-access-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
