// Package frontend serves the built dashboard UI next to the API.
package frontend

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// IndexFile is served for any path that does not name an existing file, so
// client-side routes resolve to the single-page app.
const IndexFile = "index.html"

// safeFileSystem wraps a directory to prevent directory traversal attacks.
type safeFileSystem struct {
	root string
}

// Open implements http.FileSystem with path traversal protection.
func (sfs safeFileSystem) Open(name string) (http.File, error) {
	cleanPath := filepath.Clean(filepath.FromSlash(path.Clean("/" + name)))

	fullPath := filepath.Join(sfs.root, cleanPath)

	absRoot, err := filepath.Abs(sfs.root)
	if err != nil {
		return nil, err
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return nil, err
	}

	// The resolved path must stay within the root
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) && absPath != absRoot {
		return nil, os.ErrNotExist
	}

	return os.Open(fullPath)
}

// NewSafeFileSystem creates a new safe file system that prevents path traversal.
func NewSafeFileSystem(root string) http.FileSystem {
	return safeFileSystem{root: root}
}

// NewSPAHandler serves static files from root and falls back to index.html
// for paths that do not exist.
func NewSPAHandler(root string) http.Handler {
	fsys := NewSafeFileSystem(root)
	fileServer := http.FileServer(fsys)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := fsys.Open(r.URL.Path)
		if err == nil {
			stat, statErr := f.Stat()
			f.Close()
			if statErr == nil && !stat.IsDir() {
				fileServer.ServeHTTP(w, r)
				return
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		index, err := fsys.Open(IndexFile)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer index.Close()

		stat, err := index.Stat()
		if err != nil {
			http.NotFound(w, r)
			return
		}
		http.ServeContent(w, r, IndexFile, stat.ModTime(), index)
	})
}
