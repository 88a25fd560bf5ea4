// Package vfs provides the file system abstraction the buffer engine reads
// and writes documents through.
//
// The VFS interface allows swapping the underlying file system implementation,
// so the engine can be tested against an in-memory file system.
package vfs

import (
	"io/fs"
	"time"
)

// VFS is the set of file operations the engine needs.
type VFS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating or truncating it.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// Remove removes a file or empty directory.
	Remove(path string) error

	// Abs returns an absolute representation of path.
	Abs(path string) (string, error)

	// Exists reports whether path exists.
	Exists(path string) bool
}

// FileInfo describes a file or directory.
type FileInfo struct {
	path    string
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

// NewFileInfo creates a FileInfo from the given parameters.
func NewFileInfo(path, name string, size int64, mode fs.FileMode, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{
		path:    path,
		name:    name,
		size:    size,
		mode:    mode,
		modTime: modTime,
		isDir:   isDir,
	}
}

// Path returns the path the info was obtained for.
func (fi FileInfo) Path() string { return fi.path }

// Name returns the base name.
func (fi FileInfo) Name() string { return fi.name }

// Size returns the length in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// Mode returns the file mode bits.
func (fi FileInfo) Mode() fs.FileMode { return fi.mode }

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir reports whether the info describes a directory.
func (fi FileInfo) IsDir() bool { return fi.isDir }
