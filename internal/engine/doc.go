// Package engine provides the buffer manager at the core of vuno.
//
// A Manager owns every open buffer together with its bounded edit history.
// It allocates buffer identities, applies edits, answers searches, performs
// replacements, records cursor and scroll state, infers languages and
// persists content through a vfs.VFS.
//
// # Ownership
//
// Buffers never leave the Manager. Every accessor returns a copy, so a
// caller holding a buffer.Buffer or buffer.Info can read it freely while
// other goroutines keep editing.
//
// # Thread Safety
//
// All Manager methods are safe for concurrent use. The registry is guarded
// by a read-write mutex: lookups take the read lock, mutations take the
// write lock for one map update. Identity allocation uses its own mutex.
// File I/O is performed on a snapshot of the content and never holds the
// registry lock.
//
// # Basic Usage
//
//	m := engine.New(engine.WithVFS(vfs.NewOSFS()))
//
//	id := m.CreateBuffer("Hello, World!", "")
//	_ = m.ApplyEdit(id, 7, 12, "Go")        // "Hello, Go!"
//	matches, _ := m.Search(id, "o", true)   // [4,5) [8,9)
//	path, _ := m.SaveFile(ctx, id, "/tmp/hello.txt")
//
// # Errors
//
// Failures are reported as *OpError values wrapping one of the package
// sentinels. Use errors.Is to test for a category and Kind to obtain the
// stable wire name.
package engine
