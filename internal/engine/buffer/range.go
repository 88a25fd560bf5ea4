package buffer

import "fmt"

// Range is a half-open byte span [Start, End). Search matches and edit
// records both use it.
type Range struct {
	Start ByteOffset `json:"start"`
	End   ByteOffset `json:"end"`
}

// NewRange returns the span [start, end).
func NewRange(start, end ByteOffset) Range {
	return Range{Start: start, End: end}
}

// String formats the span as [start:end).
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns End - Start. It is negative for a reversed span.
func (r Range) Len() ByteOffset {
	return r.End - r.Start
}

// IsEmpty reports whether the span covers no bytes.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}
