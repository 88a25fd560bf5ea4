package dispatcher

import (
	"errors"
	"fmt"

	"github.com/dshills/vuno/internal/engine"
)

// Dispatcher errors.
var (
	// ErrBadRequest indicates a request line or argument that could not be decoded.
	ErrBadRequest = errors.New("bad request")

	// ErrUnknownCommand indicates a cmd that names no command kind.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrQueueFull indicates the worker pool queue is at capacity.
	ErrQueueFull = errors.New("request queue full")

	// ErrAlreadyRunning indicates Start was called on a running pool.
	ErrAlreadyRunning = errors.New("worker pool already running")

	// ErrNotRunning indicates the worker pool is stopped.
	ErrNotRunning = errors.New("worker pool not running")

	// ErrPanic indicates a handler panicked.
	ErrPanic = errors.New("handler panicked")
)

// Wire names added by the dispatcher.
const (
	KindBadRequest     = "bad_request"
	KindUnknownCommand = "unknown_command"
	KindQueueFull      = "queue_full"
)

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrBadRequest}, args...)...)
}

// ErrorKind returns the wire name for the category of err.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrBadRequest):
		return KindBadRequest
	case errors.Is(err, ErrUnknownCommand):
		return KindUnknownCommand
	case errors.Is(err, ErrQueueFull):
		return KindQueueFull
	case errors.Is(err, ErrPanic), errors.Is(err, ErrNotRunning):
		return engine.KindInternal
	default:
		return engine.Kind(err)
	}
}
