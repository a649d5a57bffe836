package api

import (
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteservice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path     string         `json:"path" example:"notes/hello.md" validate:"required"`
	Body     string         `json:"body" example:"# Hello\nWorld"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// UpdateNoteRequest is the request body for editing a note.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"# Updated\nContent" validate:"required"`
	// UpdateMetadata merges frontmatter embedded in Content over the note's
	// existing metadata. When false the stored metadata is kept untouched.
	UpdateMetadata bool `json:"update_metadata"`
}

// MoveNoteRequest is the request body for renaming a note.
type MoveNoteRequest struct {
	Source      string `json:"source" example:"notes/old.md" validate:"required"`
	Destination string `json:"destination" example:"archive/new.md" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = models.Note

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []string `json:"notes" validate:"required"`
}

// SearchResponse is the search result payload (aliased from the domain layer).
type SearchResponse = noteservice.SearchReport

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"image.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/attachments/image.png" validate:"required"`
}
