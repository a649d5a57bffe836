package noteservice

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/models"
)

// ListOptions control a note listing.
type ListOptions struct {
	// Folder restricts the listing; empty lists from the vault root.
	Folder string
	// Recursive walks the subtree instead of immediate children only.
	Recursive bool
	// Pattern optionally filters paths with a doublestar glob, matched
	// against the vault-relative path (e.g. "projects/**/*.md").
	Pattern string
}

// ListNotes returns markdown file paths under the folder, in name order.
// It fails with apperr.ErrNotFound when the folder does not exist.
func (s *Service) ListNotes(_ context.Context, opts ListOptions) ([]string, error) {
	if opts.Pattern != "" && !doublestar.ValidatePattern(opts.Pattern) {
		return nil, fmt.Errorf("%w: bad list pattern %q", apperr.ErrInvalidPath, opts.Pattern)
	}
	paths, err := s.store.List(opts.Folder, opts.Recursive)
	if err != nil {
		return nil, classify(err)
	}
	if opts.Pattern == "" {
		return paths, nil
	}
	filtered := []string{}
	for _, p := range paths {
		ok, matchErr := doublestar.Match(opts.Pattern, p)
		if matchErr != nil {
			return nil, fmt.Errorf("%w: bad list pattern %q", apperr.ErrInvalidPath, opts.Pattern)
		}
		if ok {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// VaultStructure builds the structure tree rooted at folder (the vault root
// when empty). Directories and markdown files appear sorted by name;
// symlinks and non-markdown files are excluded.
func (s *Service) VaultStructure(_ context.Context, folder string) (*models.VaultNode, error) {
	tree, err := s.store.Tree(folder)
	if err != nil {
		return nil, classify(err)
	}
	return tree, nil
}
