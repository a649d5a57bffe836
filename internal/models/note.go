// Package models defines the domain types for Laguz.
package models

import "github.com/starford/laguz/internal/frontmatter"

// Note represents a Markdown file in the vault.
type Note struct {
	Path     string           `json:"path"`
	Metadata *frontmatter.Map `json:"metadata,omitempty"`
	Body     string           `json:"body"`
	Checksum string           `json:"checksum,omitempty"`
}

// LineMatch is a single matching line within a note. Line numbers are
// 1-based over the raw file text, frontmatter lines included.
type LineMatch struct {
	Line int    `json:"line"`
	Text string `json:"text"`
}

// SearchMatch is one note's contribution to a search result set.
type SearchMatch struct {
	Path  string      `json:"path"`
	Lines []LineMatch `json:"lines"`
}

// Node types for VaultNode.
const (
	NodeFile      = "file"
	NodeDirectory = "directory"
)

// VaultNode is a node in the vault structure tree. Directories carry their
// children sorted by name; files are terminal.
type VaultNode struct {
	Path     string       `json:"path"`
	Type     string       `json:"type"`
	Children []*VaultNode `json:"children,omitempty"`
}
