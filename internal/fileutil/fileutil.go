package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// UniquePath returns the first non-existing path of the form base+ext,
// base-1+ext, base-2+ext, ... inside dir. The nth collision yields suffix -n.
func UniquePath(dir, base, ext string) (string, error) {
	candidate := filepath.Join(dir, base+ext)
	for n := 0; ; n++ {
		if n > 0 {
			candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, n, ext))
		}
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
	}
}

// RemoveIfExists deletes path, treating an already-missing file as success.
func RemoveIfExists(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
