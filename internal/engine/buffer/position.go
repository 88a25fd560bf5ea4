package buffer

import "strconv"

// ByteOffset represents a byte position in the buffer content.
type ByteOffset = int64

// ID is the opaque identity of a buffer. IDs are allocated by the engine in
// increasing order starting at 1 and are never reused.
type ID uint64

// String returns the decimal form of the id.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// IsZero reports whether the id is the zero value, which is never allocated.
func (id ID) IsZero() bool {
	return id == 0
}
