package buffer

import (
	"fmt"
	"time"
)

// Edit is the record of one applied text replacement.
// Start and End are the offsets as given when the edit was applied,
// measured against the content before the edit.
type Edit struct {
	Start     ByteOffset `json:"start"`
	End       ByteOffset `json:"end"`
	Text      string     `json:"text"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewEdit creates an Edit stamped with the given time.
func NewEdit(start, end ByteOffset, text string, now time.Time) Edit {
	return Edit{Start: start, End: end, Text: text, Timestamp: now.UTC()}
}

// Range returns the replaced range.
func (e Edit) Range() Range {
	return NewRange(e.Start, e.End)
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	r := e.Range()
	if r.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Start, e.Text)
	}
	if e.Text == "" {
		return fmt.Sprintf("Delete%s", r.String())
	}
	return fmt.Sprintf("Replace%s with %q", r.String(), e.Text)
}

// Delta returns the change in content length caused by this edit.
func (e Edit) Delta() ByteOffset {
	removed := max(e.Range().Len(), 0)
	return ByteOffset(len(e.Text)) - removed
}
