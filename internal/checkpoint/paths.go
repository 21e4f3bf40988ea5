package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CanonicalizePath resolves a user-supplied path to its canonical absolute
// form: absolute, cleaned, and with symlinks resolved, so that every textual
// spelling of one physical location (relative vs. absolute, trailing
// separator, symlink vs. target) produces the same string.
//
// Pure with respect to the filesystem: read-only resolution, no caching.
// Returns ErrPathNotFound if the target does not exist and
// ErrPermissionDenied if a component cannot be traversed.
func CanonicalizePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrPathNotFound)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	if _, err := os.Stat(absPath); err != nil {
		return "", classifyPathError(absPath, err)
	}

	// Resolve symlinks so the symlink and its target hash identically.
	realPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return "", classifyPathError(absPath, err)
	}

	return realPath, nil
}

// classifyPathError maps a stat/resolve failure onto the registration-time
// taxonomy.
func classifyPathError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrPathNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	default:
		return fmt.Errorf("cannot resolve %s: %w", path, err)
	}
}
