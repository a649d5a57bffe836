package noteservice

import (
	"context"
	"log/slog"
	"strings"

	"github.com/starford/laguz/internal/frontmatter"
	"github.com/starford/laguz/internal/models"
)

// SearchOptions control a vault search.
type SearchOptions struct {
	// Query is tested as a substring against each line.
	Query string
	// Folder restricts the scan to a subtree; empty scans the whole vault.
	Folder string
	// IncludeFrontmatter additionally matches lines inside the serialized
	// metadata block. Body lines are always searched.
	IncludeFrontmatter bool
	// CaseSensitive disables case folding of query and candidate text.
	CaseSensitive bool
}

// SearchReport is the outcome of a search: matches in directory-traversal
// order plus the number of notes skipped because their frontmatter failed
// to parse.
type SearchReport struct {
	Matches []models.SearchMatch `json:"matches"`
	Skipped int                  `json:"skipped,omitempty"`
}

// Search scans every markdown file under the vault (or opts.Folder),
// collecting one match per line containing the query. A note whose
// frontmatter fails to parse is skipped and counted rather than aborting
// the scan; that is the only tolerated partial failure.
func (s *Service) Search(_ context.Context, opts SearchOptions) (*SearchReport, error) {
	needle := opts.Query
	if !opts.CaseSensitive {
		needle = strings.ToLower(needle)
	}

	report := &SearchReport{Matches: []models.SearchMatch{}}
	err := s.store.Walk(opts.Folder, func(path string, data []byte) error {
		if _, _, parseErr := frontmatter.Parse(data); parseErr != nil {
			report.Skipped++
			s.logger.Warn("search: skipping unparsable note",
				slog.String("path", path),
				slog.String("error", parseErr.Error()))
			return nil
		}

		fmLines := frontmatter.BlockExtent(data)
		var hits []models.LineMatch
		for i, line := range strings.Split(string(data), "\n") {
			lineNo := i + 1
			if lineNo <= fmLines && !opts.IncludeFrontmatter {
				continue
			}
			candidate := line
			if !opts.CaseSensitive {
				candidate = strings.ToLower(candidate)
			}
			if strings.Contains(candidate, needle) {
				hits = append(hits, models.LineMatch{Line: lineNo, Text: line})
			}
		}
		if len(hits) > 0 {
			report.Matches = append(report.Matches, models.SearchMatch{Path: path, Lines: hits})
		}
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if report.Skipped > 0 {
		s.logger.Warn("search: completed with skipped notes", slog.Int("skipped", report.Skipped))
	}
	return report, nil
}
