package buffer

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dshills/vuno/internal/project/vfs"
)

// Errors returned by buffer operations.
var (
	ErrRangeInvalid = errors.New("invalid range")
	ErrNotBoundary  = fmt.Errorf("%w: offset is not on a character boundary", ErrRangeInvalid)
)

// Buffer is the in-memory state of one open document.
//
// Buffer is a value type. The engine mutates its own copy under lock and
// hands out clones; a Buffer obtained from the engine is never shared.
type Buffer struct {
	// ID is the identity assigned at creation.
	ID ID

	// Content is the full document text.
	Content string

	// Path is the file the buffer was read from or last saved to.
	// Empty for buffers that have never touched disk.
	Path string

	// Modified is true once Content diverges from the last save point.
	Modified bool

	// CreatedAt and ModifiedAt are UTC timestamps. ModifiedAt >= CreatedAt.
	CreatedAt  time.Time
	ModifiedAt time.Time

	// CursorPosition and ScrollPosition are opaque UI restoration state.
	// They are never validated against the content length.
	CursorPosition int64
	ScrollPosition int64

	// Language is the inferred or explicitly set language tag.
	// Empty means no language.
	Language string

	// Encoding is the on-disk encoding the content was decoded from.
	// It is used again when the buffer is saved.
	Encoding vfs.Encoding

	// DiskModTime is the file modification time recorded at the last open,
	// save or reload. Used to detect external changes.
	DiskModTime time.Time

	// ExternallyModified is set when the backing file changed on disk
	// after DiskModTime.
	ExternallyModified bool
}

// New creates a buffer with both timestamps set to now.
func New(id ID, content, path, language string, now time.Time) *Buffer {
	now = now.UTC()
	return &Buffer{
		ID:         id,
		Content:    content,
		Path:       path,
		Language:   language,
		Encoding:   vfs.EncodingUTF8,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// Clone returns an independent copy of the buffer.
func (b *Buffer) Clone() Buffer {
	return *b
}

// Len returns the byte length of the content.
func (b *Buffer) Len() ByteOffset {
	return ByteOffset(len(b.Content))
}

// IsBoundary reports whether offset falls between two UTF-8 scalar values
// (or at either end of the content).
func (b *Buffer) IsBoundary(offset ByteOffset) bool {
	if offset < 0 || offset > b.Len() {
		return false
	}
	if offset == b.Len() {
		return true
	}
	return utf8.RuneStart(b.Content[offset])
}

// CheckRange validates an edit range against the current content.
// Returns ErrRangeInvalid if either offset is negative or past the end,
// and ErrNotBoundary if either splits a multi-byte sequence.
func (b *Buffer) CheckRange(start, end ByteOffset) error {
	n := b.Len()
	if start < 0 || end < 0 || start > n || end > n {
		return ErrRangeInvalid
	}
	if !b.IsBoundary(start) || !b.IsBoundary(end) {
		return ErrNotBoundary
	}
	return nil
}

// Splice replaces content[start:end] with text.
//
// The retained suffix starts at max(start, end), so a reversed range acts as
// an insertion at start instead of duplicating text.
func (b *Buffer) Splice(start, end ByteOffset, text string) error {
	if err := b.CheckRange(start, end); err != nil {
		return err
	}

	cut := max(start, end)
	cut = min(cut, b.Len())

	b.Content = b.Content[:start] + text + b.Content[cut:]
	return nil
}

// SetContent replaces the whole content.
func (b *Buffer) SetContent(content string) {
	b.Content = content
}

// Touch marks the buffer modified and refreshes ModifiedAt.
func (b *Buffer) Touch(now time.Time) {
	b.Modified = true
	b.stamp(now)
}

// MarkSaved clears the modified flag. Timestamps are left alone.
func (b *Buffer) MarkSaved() {
	b.Modified = false
}

// stamp sets ModifiedAt without letting it fall behind CreatedAt.
func (b *Buffer) stamp(now time.Time) {
	now = now.UTC()
	if now.Before(b.CreatedAt) {
		now = b.CreatedAt
	}
	b.ModifiedAt = now
}
