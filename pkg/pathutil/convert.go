// Package pathutil converts between absolute paths on disk and the
// forward-slash, root-relative paths used as keys in analysis results.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails, the path is already
// relative, or it lies outside root.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.go", "/home/user/project") → "src/main.go"
//   - ToRelative("/other/location/file.go", "/home/user/project") → "/other/location/file.go"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" || !filepath.IsAbs(absPath) {
		return absPath
	}
	rel, ok := RelSlash(rootDir, absPath)
	if !ok {
		return filepath.Clean(absPath)
	}
	return filepath.FromSlash(rel)
}

// RelSlash returns path relative to root with forward slashes, the form
// used for FileRecord.RelPath and graph node IDs. ok is false when path is
// not under root.
func RelSlash(root, path string) (rel string, ok bool) {
	r, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return "", false
	}
	r = filepath.ToSlash(r)
	if r == ".." || strings.HasPrefix(r, "../") {
		return "", false
	}
	return r, true
}
