// Package buffer defines the value types of the buffer engine: the Buffer
// itself, the Edit records kept in its history, and the Info projection
// handed to callers for listing and inspection.
//
// A Buffer is a plain value. It carries no lock of its own; the engine's
// Manager owns every live Buffer and serializes access to it. Callers only
// ever see copies produced by Clone or by NewInfo.
//
// Offsets:
//
// All positions are byte offsets into the UTF-8 content (ByteOffset). Edits
// are only accepted at offsets that fall on a scalar value boundary, so the
// content of a Buffer is valid UTF-8 whenever the inserted text is.
//
// Basic usage:
//
//	b := buffer.New(1, "hello", "", "", time.Now())
//	if err := b.Splice(5, 5, ", world"); err != nil {
//	    // ErrRangeInvalid or ErrNotBoundary
//	}
//	info := buffer.NewInfo(b)
//	fmt.Println(info.Lines, info.Size)
package buffer
