package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/frontmatter"
	"github.com/starford/laguz/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// notePath extracts the note path from the URL wildcard. Supports encoded
// slashes from OpenAPI clients (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeDomainError maps the error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidPath):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrMetadataParse):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListNotes handles GET /notes.
//
//	@Summary		List markdown note paths
//	@Tags			notes
//	@Produce		json
//	@Param			folder		query		string	false	"Subfolder to list"
//	@Param			recursive	query		bool	false	"Walk the whole subtree"
//	@Param			pattern		query		string	false	"Glob filter, e.g. projects/**/*.md"
//	@Success		200			{object}	NoteListResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recursive, _ := strconv.ParseBool(q.Get("recursive"))

	paths, err := h.svc.ListNotes(r.Context(), noteservice.ListOptions{
		Folder:    q.Get("folder"),
		Recursive: recursive,
		Pattern:   q.Get("pattern"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": paths})
}

// GetNote handles GET /notes/*.
//
//	@Summary		Read a single note by path
//	@Tags			notes
//	@Produce		json
//	@Param			path	path		string	true	"Note path"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.GetNote(r.Context(), path)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(note.Checksum))
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /notes.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateNoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	var meta *frontmatter.Map
	if req.Metadata != nil {
		meta = frontmatter.FromMap(req.Metadata)
	}

	note, err := h.svc.CreateNote(r.Context(), req.Path, req.Body, meta)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /notes/*.
//
//	@Summary		Replace a note's body
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			path	path		string				true	"Note path"
//	@Param			body	body		UpdateNoteRequest	true	"New content"
//	@Success		200		{object}	NoteDetail
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	note, err := h.svc.EditNote(r.Context(), path, req.Content, req.UpdateMetadata)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/*.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			path	path	string	true	"Note path"
//	@Success		204		"Note deleted"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{path} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.DeleteNote(r.Context(), path); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveNote handles POST /move.
//
//	@Summary		Rename a note without rewriting its content
//	@Tags			notes
//	@Accept			json
//	@Success		204		"Note moved"
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/move [post]
func (h *Handler) MoveNote(w http.ResponseWriter, r *http.Request) {
	var req MoveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Source == "" || req.Destination == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("source and destination are required"))
		return
	}
	if err := h.svc.MoveNote(r.Context(), req.Source, req.Destination); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMetadata handles GET /metadata/*.
//
//	@Summary		Read only a note's frontmatter mapping
//	@Tags			notes
//	@Produce		json
//	@Param			path	path	string	true	"Note path"
//	@Success		200		{object}	map[string]any
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/metadata/{path} [get]
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	meta, err := h.svc.GetMetadata(r.Context(), path)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// Search handles GET /search.
//
//	@Summary		Line-oriented substring search across the vault
//	@Tags			search
//	@Produce		json
//	@Param			q				query		string	true	"Search query"
//	@Param			folder			query		string	false	"Restrict to a subfolder"
//	@Param			frontmatter		query		bool	false	"Also match frontmatter lines"
//	@Param			case_sensitive	query		bool	false	"Disable case folding"
//	@Success		200				{object}	SearchResponse
//	@Failure		400				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	includeFM, _ := strconv.ParseBool(q.Get("frontmatter"))
	caseSensitive, _ := strconv.ParseBool(q.Get("case_sensitive"))

	report, err := h.svc.Search(r.Context(), noteservice.SearchOptions{
		Query:              query,
		Folder:             q.Get("folder"),
		IncludeFrontmatter: includeFM,
		CaseSensitive:      caseSensitive,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Structure handles GET /structure.
//
//	@Summary		Get the vault folder/note tree
//	@Tags			structure
//	@Produce		json
//	@Param			folder	query		string	false	"Subfolder to start from"
//	@Success		200		{object}	models.VaultNode
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/structure [get]
func (h *Handler) Structure(w http.ResponseWriter, r *http.Request) {
	tree, err := h.svc.VaultStructure(r.Context(), r.URL.Query().Get("folder"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}
