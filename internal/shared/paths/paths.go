package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for a path that escapes its root
var ErrOutsideRoot = errors.New("path is outside the downloads directory")

// Within resolves p against root and checks it stays inside root.
// Relative paths are taken relative to root. Symlinks in either path are
// followed before the check, so a link inside root that points elsewhere is
// rejected. The returned path is the cleaned, unresolved one.
func Within(root, p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty path", ErrOutsideRoot)
	}

	resolved := p
	if !filepath.IsAbs(p) {
		resolved = filepath.Join(root, p)
	}
	resolved = filepath.Clean(resolved)

	absRoot, err := realPath(root)
	if err != nil {
		return "", err
	}
	absPath, err := realPath(resolved)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	return resolved, nil
}

// realPath makes p absolute and follows symlinks in its longest existing
// prefix. Missing trailing elements are appended unchanged.
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}

	var missing []string
	for dir := abs; ; {
		target, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{target}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		if _, lerr := os.Lstat(dir); lerr == nil {
			// a link whose target is missing
			return "", fmt.Errorf("%w: dangling link %s", ErrOutsideRoot, dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		missing = append([]string{filepath.Base(dir)}, missing...)
		dir = parent
	}
}
