package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/laguz/internal/apperr"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute, symlink-resolved path to the vault directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	// Canonicalize so the containment check is not fooled by a root that is
	// itself reached through a symlink.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", resolved)
	}
	return &FS{root: resolved}, nil
}

// Root returns the absolute vault root directory.
func (f *FS) Root() string {
	return f.root
}

// resolve turns a `/`-separated relative path into an absolute path and
// rejects anything that would land outside the vault root: empty paths,
// NUL bytes, absolute paths, `..` escapes, and symlink escapes.
func (f *FS) resolve(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("%w: path is empty", apperr.ErrInvalidPath)
	}
	if strings.ContainsRune(rel, 0) {
		return "", fmt.Errorf("%w: path contains NUL byte", apperr.ErrInvalidPath)
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: absolute paths not allowed: %s", apperr.ErrInvalidPath, rel)
	}
	abs := filepath.Join(f.root, cleaned)
	if !f.contains(abs) {
		return "", fmt.Errorf("%w: path escapes vault root: %s", apperr.ErrInvalidPath, rel)
	}
	// A symlink inside the vault may still point outside it. Canonicalize
	// the nearest existing ancestor and re-check.
	real, err := resolveExisting(abs)
	if err != nil {
		return "", fmt.Errorf("storage: resolve %s: %w", rel, err)
	}
	if !f.contains(real) {
		return "", fmt.Errorf("%w: path escapes vault root via symlink: %s", apperr.ErrInvalidPath, rel)
	}
	return abs, nil
}

// resolveDir is resolve with the empty path meaning the vault root.
func (f *FS) resolveDir(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	return f.resolve(rel)
}

// contains reports whether abs is the root or a descendant of it.
func (f *FS) contains(abs string) bool {
	return abs == f.root || strings.HasPrefix(abs, f.root+string(os.PathSeparator))
}

// resolveExisting evaluates symlinks for the nearest existing ancestor of
// abs and re-joins the non-existing remainder.
func resolveExisting(abs string) (string, error) {
	remainder := ""
	cur := abs
	for {
		real, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(real, remainder), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		remainder = filepath.Join(filepath.Base(cur), remainder)
		cur = parent
	}
}

// Exists reports whether a regular file exists at path.
func (f *FS) Exists(path string) (bool, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Lstat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".laguz-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes a single file from the vault. Directories are refused.
func (f *FS) Delete(path string) error {
	abs, err := f.resolve(path)
	if err != nil {
		return err
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: refusing to delete directory: %s", apperr.ErrInvalidPath, path)
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Move renames a file within the vault, creating destination parents.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.resolve(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.resolve(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absNew), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("storage: move: %w", err)
	}
	return nil
}
