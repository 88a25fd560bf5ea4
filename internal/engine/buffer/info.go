package buffer

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

// Info is a read-only summary of a buffer. It is computed from the content
// every time it is requested and never stored.
type Info struct {
	ID                 ID        `json:"id"`
	Path               string    `json:"path,omitempty"`
	Name               string    `json:"name"`
	Language           string    `json:"language,omitempty"`
	Modified           bool      `json:"modified"`
	ExternallyModified bool      `json:"externally_modified"`
	Size               int64     `json:"size"`
	Lines              int       `json:"lines"`
	Graphemes          int       `json:"graphemes"`
	CursorPosition     int64     `json:"cursor_position"`
	ScrollPosition     int64     `json:"scroll_position"`
	CreatedAt          time.Time `json:"created_at"`
	ModifiedAt         time.Time `json:"modified_at"`
}

// NewInfo computes the Info projection of b.
func NewInfo(b *Buffer) Info {
	return Info{
		ID:                 b.ID,
		Path:               b.Path,
		Name:               DisplayName(b.ID, b.Path),
		Language:           b.Language,
		Modified:           b.Modified,
		ExternallyModified: b.ExternallyModified,
		Size:               b.Len(),
		Lines:              CountLines(b.Content),
		Graphemes:          uniseg.GraphemeClusterCount(b.Content),
		CursorPosition:     b.CursorPosition,
		ScrollPosition:     b.ScrollPosition,
		CreatedAt:          b.CreatedAt,
		ModifiedAt:         b.ModifiedAt,
	}
}

// CountLines returns the number of newline-delimited lines in s.
// Empty content has zero lines and a trailing newline does not start a new
// line: "a" and "a\n" are one line, "a\nb" is two.
func CountLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if s[len(s)-1] != '\n' {
		n++
	}
	return n
}

// DisplayName returns the base name of path, or "untitled-<id>" for a
// buffer that has never been saved.
func DisplayName(id ID, path string) string {
	if path == "" {
		return "untitled-" + id.String()
	}
	return filepath.Base(path)
}
