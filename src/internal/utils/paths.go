package utils

import (
	"errors"
	"os"
	"path/filepath"
)

// GetAbsolutePath returns path if it was absolute, otherwise joins it with baseDir
func GetAbsolutePath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(filepath.Join(baseDir, path))
}

// FileExists reports whether path exists. Stat errors other than
// "not exist" are reported as existing so callers never overwrite blindly.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
