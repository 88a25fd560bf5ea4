package history

import "github.com/dshills/vuno/internal/engine/buffer"

// DefaultCapacity is the number of edits retained per buffer.
const DefaultCapacity = 100

// Log is a fixed-capacity ring of edit records.
//
// Log does no locking of its own. The owner must serialize Append with
// readers so that an append and its eviction are observed together.
type Log struct {
	entries []buffer.Edit
	head    int // index of the oldest entry
	size    int
}

// New creates an empty log holding at most capacity edits.
// A non-positive capacity falls back to DefaultCapacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{entries: make([]buffer.Edit, capacity)}
}

// Append records an edit, evicting the oldest entry when full.
func (l *Log) Append(e buffer.Edit) {
	if l.size < len(l.entries) {
		l.entries[(l.head+l.size)%len(l.entries)] = e
		l.size++
		return
	}
	l.entries[l.head] = e
	l.head = (l.head + 1) % len(l.entries)
}

// Edits returns a copy of the retained edits, oldest first.
func (l *Log) Edits() []buffer.Edit {
	out := make([]buffer.Edit, l.size)
	for i := range l.size {
		out[i] = l.entries[(l.head+i)%len(l.entries)]
	}
	return out
}

// Len returns the number of retained edits.
func (l *Log) Len() int {
	return l.size
}

// Cap returns the maximum number of retained edits.
func (l *Log) Cap() int {
	return len(l.entries)
}
