package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/vuno/internal/engine/buffer"
)

// Errors returned by Manager operations.
var (
	// ErrNotFound indicates no live buffer has the requested id.
	ErrNotFound = errors.New("buffer not found")

	// ErrInvalidRange indicates edit offsets outside the content or
	// splitting a multi-byte character.
	ErrInvalidRange = buffer.ErrRangeInvalid

	// ErrIO indicates a read, write, stat or delete failure.
	// It is always combined with the underlying cause.
	ErrIO = errors.New("i/o failure")

	// ErrMissingPath indicates a save or reload of a buffer with no path.
	ErrMissingPath = errors.New("no file path")

	// ErrModified indicates a reload would discard unsaved changes.
	ErrModified = errors.New("buffer has unsaved changes")

	// ErrUnknownLanguage indicates a language tag that could not be resolved.
	ErrUnknownLanguage = errors.New("unknown language")
)

// Causes reported together with ErrIO.
var (
	ErrIsDirectory  = errors.New("is a directory")
	ErrFileTooLarge = errors.New("file too large")
	ErrBinaryFile   = errors.New("binary file")
)

// Wire names for error categories.
const (
	KindNotFound        = "not_found"
	KindInvalidRange    = "invalid_range"
	KindIOFailure       = "io_failure"
	KindMissingPath     = "missing_path"
	KindModified        = "modified"
	KindUnknownLanguage = "unknown_language"
	KindInternal        = "internal"
)

// OpError records a failed Manager operation.
type OpError struct {
	Op   string    // Operation name (apply_edit, save_file, ...)
	ID   buffer.ID // Buffer involved, zero if none
	Path string    // File involved, empty if none
	Err  error     // Underlying error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if !e.ID.IsZero() {
		sb.WriteString(" buffer ")
		sb.WriteString(e.ID.String())
	}
	if e.Path != "" {
		sb.WriteByte(' ')
		sb.WriteString(e.Path)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}

func notFound(op string, id buffer.ID) error {
	return &OpError{Op: op, ID: id, Err: ErrNotFound}
}

// ioError wraps cause so that errors.Is matches both ErrIO and the cause.
func ioError(op string, id buffer.ID, path string, cause error) error {
	return &OpError{Op: op, ID: id, Path: path, Err: fmt.Errorf("%w: %w", ErrIO, cause)}
}

// Kind returns the wire name for the category of err.
// Errors that match no category are reported as KindInternal.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidRange):
		return KindInvalidRange
	case errors.Is(err, ErrIO):
		return KindIOFailure
	case errors.Is(err, ErrMissingPath):
		return KindMissingPath
	case errors.Is(err, ErrModified):
		return KindModified
	case errors.Is(err, ErrUnknownLanguage):
		return KindUnknownLanguage
	default:
		return KindInternal
	}
}

// IsNotFound returns true if err indicates an unknown buffer id.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
