// Package resolve turns a caller-supplied filesystem path into the stable
// project/session identities the rest of the core operates on: canonical
// path normalization, project-root discovery, and get-or-create semantics
// over internal/store.
package resolve

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// rootMarkers are checked, in order, when walking upward from a path
// looking for a project's root. The first directory containing any of
// these wins.
var rootMarkers = []string{".git", "package.json", "Cargo.toml", "go.mod", "pom.xml", "pyproject.toml"}

// Canonicalize makes path absolute and, on case-insensitive filesystems,
// lower-cases it so two spellings of the same path collide to one Project
// row. Separators are normalized to '/' so the result is safe to use in
// glob-style matching elsewhere.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.Clean(abs)
	if caseInsensitiveFS() {
		abs = strings.ToLower(abs)
	}
	return filepath.ToSlash(abs), nil
}

// caseInsensitiveFS reports whether the host platform's default filesystem
// treats paths case-insensitively. Windows and macOS (HFS+/APFS default
// configuration) do; Linux does not.
func caseInsensitiveFS() bool {
	return runtime.GOOS == "windows" || runtime.GOOS == "darwin"
}

// FindProjectRoot walks upward from path looking for a well-known root
// marker. Falls back to path itself (made absolute) when nothing is found
// before reaching the filesystem root.
func FindProjectRoot(path string) string {
	dir, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		for _, marker := range rootMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
