// Package apperr defines the domain error taxonomy shared by all layers.
package apperr

import "errors"

var (
	// ErrInvalidPath means a caller-supplied path is empty, malformed, or
	// resolves outside the vault root.
	ErrInvalidPath = errors.New("invalid path")
	// ErrNotFound means the referenced note or folder does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists means a create or move target is already present.
	ErrAlreadyExists = errors.New("already exists")
	// ErrMetadataParse means a frontmatter block is present but not valid YAML.
	ErrMetadataParse = errors.New("metadata parse error")
	// ErrIO wraps filesystem failures that are none of the above.
	ErrIO = errors.New("io failure")
)
