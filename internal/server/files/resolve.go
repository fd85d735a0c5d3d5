package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrOutsideRoot = errors.New("path is outside the root directory")
	ErrNotFound    = errors.New("path does not exist")
	ErrWrongKind   = errors.New("path is not the expected kind")
)

// Kind is the entity type a path is expected to resolve to.
type Kind uint8

const (
	KindAny Kind = iota
	KindFile
	KindDir
)

// Resolve joins the requested relative path onto root and guarantees the
// result stays within root. Traversal outside the root (e.g. via "..") is an
// ErrOutsideRoot, never a silent clamp. The resolved path must exist and be
// of the expected kind; the attempted absolute path is carried in the error
// for diagnostics.
func Resolve(root string, requested string, kind Kind) (string, error) {
	root = filepath.Clean(root)

	requested = strings.TrimPrefix(requested, "/")
	full := filepath.Clean(filepath.Join(root, filepath.FromSlash(requested)))

	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, requested)
	}

	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, full)
	}
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", full, err)
	}

	switch kind {
	case KindFile:
		if info.IsDir() {
			return "", fmt.Errorf("%w: %s is a directory", ErrWrongKind, full)
		}
	case KindDir:
		if !info.IsDir() {
			return "", fmt.Errorf("%w: %s is not a directory", ErrWrongKind, full)
		}
	}

	return full, nil
}
