// Package history provides the bounded edit log kept for each buffer.
//
// The log records every applied edit in order. It is not an undo stack:
// entries cannot be reverted, only inspected. Once the log holds Cap()
// entries, each new edit evicts the oldest one.
//
//	log := history.New(history.DefaultCapacity)
//	log.Append(buffer.NewEdit(0, 0, "x", time.Now()))
//	for _, e := range log.Edits() { // oldest first
//	    fmt.Println(e)
//	}
package history
