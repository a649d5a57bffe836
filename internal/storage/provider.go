// Package storage defines the vault file-system abstraction.
package storage

import "github.com/starford/laguz/internal/models"

// Provider is the interface for vault file operations. All paths are
// relative to the vault root, `/`-separated; every method resolves and
// containment-checks its path arguments before touching the filesystem.
type Provider interface {
	// Root returns the absolute vault root directory.
	Root() string
	// Exists reports whether a file exists at path.
	Exists(path string) (bool, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the single file at path.
	Delete(path string) error
	// Move renames oldPath to newPath, creating destination parents.
	Move(oldPath, newPath string) error
	// List returns the .md files under dir. Non-recursive returns immediate
	// children only; recursive walks the subtree depth-first in name order.
	List(dir string, recursive bool) ([]string, error)
	// Walk reads every .md file under dir in traversal order and passes its
	// path and raw content to fn. A non-nil error from fn stops the walk.
	Walk(dir string, fn func(path string, data []byte) error) error
	// Tree builds the vault structure tree rooted at dir. Directories and
	// .md files are included, sorted by name; symlinks and other files are
	// excluded.
	Tree(dir string) (*models.VaultNode, error)
}
