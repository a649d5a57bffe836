// Package noteservice implements the note repository: the operations the
// MCP and HTTP layers dispatch into. Every operation resolves paths through
// the storage provider, so nothing here touches the filesystem outside the
// vault root.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/frontmatter"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/storage"
)

// Service coordinates storage and the frontmatter codec.
type Service struct {
	store  storage.Provider
	logger *slog.Logger
}

// NewService creates a new note service.
func NewService(store storage.Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// CreateNote writes a new note with the given body and optional metadata.
// It fails with apperr.ErrAlreadyExists when the path is taken.
func (s *Service) CreateNote(_ context.Context, path, body string, meta *frontmatter.Map) (*models.Note, error) {
	exists, err := s.store.Exists(path)
	if err != nil {
		return nil, classify(err)
	}
	if exists {
		return nil, fmt.Errorf("%w: note %s", apperr.ErrAlreadyExists, path)
	}
	if meta == nil {
		meta = frontmatter.NewMap()
	}
	raw, err := frontmatter.Serialize(meta, body)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, raw); err != nil {
		return nil, classify(err)
	}
	return &models.Note{
		Path:     path,
		Metadata: meta,
		Body:     body,
		Checksum: checksum.Sum(raw),
	}, nil
}

// EditNote replaces a note's body. When updateMetadata is false the
// existing metadata is kept untouched and content is the new body verbatim.
// When true, content is itself parsed for an embedded frontmatter block
// whose keys are merged over the existing metadata; content without a block
// leaves the metadata unchanged.
func (s *Service) EditNote(_ context.Context, path, content string, updateMetadata bool) (*models.Note, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, classify(err)
	}
	meta, _, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}

	body := content
	if updateMetadata {
		incoming, newBody, err := frontmatter.Parse([]byte(content))
		if err != nil {
			return nil, err
		}
		meta = frontmatter.Merge(meta, incoming)
		body = newBody
	}

	raw, err := frontmatter.Serialize(meta, body)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, raw); err != nil {
		return nil, classify(err)
	}
	return &models.Note{
		Path:     path,
		Metadata: meta,
		Body:     body,
		Checksum: checksum.Sum(raw),
	}, nil
}

// DeleteNote removes a single note. No recursive directory deletion.
func (s *Service) DeleteNote(_ context.Context, path string) error {
	exists, err := s.store.Exists(path)
	if err != nil {
		return classify(err)
	}
	if !exists {
		return fmt.Errorf("%w: note %s", apperr.ErrNotFound, path)
	}
	return classify(s.store.Delete(path))
}

// MoveNote renames a note. Content is moved byte-identical; frontmatter is
// neither parsed nor rewritten.
func (s *Service) MoveNote(_ context.Context, oldPath, newPath string) error {
	exists, err := s.store.Exists(oldPath)
	if err != nil {
		return classify(err)
	}
	if !exists {
		return fmt.Errorf("%w: note %s", apperr.ErrNotFound, oldPath)
	}
	taken, err := s.store.Exists(newPath)
	if err != nil {
		return classify(err)
	}
	if taken {
		return fmt.Errorf("%w: note %s", apperr.ErrAlreadyExists, newPath)
	}
	return classify(s.store.Move(oldPath, newPath))
}

// GetMetadata returns only a note's metadata mapping.
func (s *Service) GetMetadata(_ context.Context, path string) (*frontmatter.Map, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, classify(err)
	}
	meta, _, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// GetNote reads and parses a full note.
func (s *Service) GetNote(_ context.Context, path string) (*models.Note, error) {
	data, err := s.store.Read(path)
	if err != nil {
		return nil, classify(err)
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}
	return &models.Note{
		Path:     path,
		Metadata: meta,
		Body:     body,
		Checksum: checksum.Sum(data),
	}, nil
}

// classify maps storage errors onto the domain taxonomy. Errors that are
// already domain errors pass through; missing files become ErrNotFound and
// everything else becomes ErrIO.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrInvalidPath),
		errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrAlreadyExists),
		errors.Is(err, apperr.ErrMetadataParse):
		return err
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %v", apperr.ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %v", apperr.ErrIO, err)
	}
}
