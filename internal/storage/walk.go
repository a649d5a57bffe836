package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/starford/laguz/internal/models"
)

// List returns the .md files under dir, relative to the vault root with
// forward slashes. Traversal is depth-first in name order.
func (f *FS) List(dir string, recursive bool) ([]string, error) {
	base, err := f.statDir(dir)
	if err != nil {
		return nil, err
	}

	out := []string{}
	if !recursive {
		entries, err := os.ReadDir(base)
		if err != nil {
			return nil, fmt.Errorf("storage: list %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.Type().IsRegular() || !isMarkdown(e.Name()) {
				continue
			}
			out = append(out, path.Join(dir, e.Name()))
		}
		return out, nil
	}

	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() || !isMarkdown(d.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(f.root, p)
		if relErr != nil {
			return relErr
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", dir, err)
	}
	return out, nil
}

// Walk reads every .md file under dir in traversal order and passes its
// vault-relative path and raw content to fn.
func (f *FS) Walk(dir string, fn func(path string, data []byte) error) error {
	base, err := f.statDir(dir)
	if err != nil {
		return err
	}
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() || !isMarkdown(d.Name()) {
			return nil
		}
		rel, relErr := filepath.Rel(f.root, p)
		if relErr != nil {
			return relErr
		}
		data, readErr := os.ReadFile(p)
		if readErr != nil {
			return readErr
		}
		return fn(filepath.ToSlash(rel), data)
	})
	if err != nil {
		return fmt.Errorf("storage: walk %s: %w", dir, err)
	}
	return nil
}

// Tree builds the vault structure tree rooted at dir. Directories recurse
// into children sorted by name; .md files are terminal nodes; symlinks and
// non-markdown files are excluded entirely.
func (f *FS) Tree(dir string) (*models.VaultNode, error) {
	base, err := f.statDir(dir)
	if err != nil {
		return nil, err
	}
	return f.buildTree(base, path.Clean("/"+dir)[1:])
}

func (f *FS) buildTree(abs, rel string) (*models.VaultNode, error) {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read dir %s: %w", rel, err)
	}
	node := &models.VaultNode{Path: rel, Type: models.NodeDirectory}
	for _, e := range entries {
		if e.Type()&fs.ModeSymlink != 0 {
			continue
		}
		childRel := path.Join(rel, e.Name())
		if e.IsDir() {
			child, err := f.buildTree(filepath.Join(abs, e.Name()), childRel)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			continue
		}
		if e.Type().IsRegular() && isMarkdown(e.Name()) {
			node.Children = append(node.Children, &models.VaultNode{
				Path: childRel,
				Type: models.NodeFile,
			})
		}
	}
	return node, nil
}

// statDir resolves dir (empty means the vault root) and verifies it is an
// existing directory.
func (f *FS) statDir(dir string) (string, error) {
	base, err := f.resolveDir(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(base)
	if err != nil {
		return "", fmt.Errorf("storage: stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("storage: not a directory %s: %w", dir, os.ErrNotExist)
	}
	return base, nil
}

func isMarkdown(name string) bool {
	return strings.HasSuffix(name, ".md")
}
