package engine

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/vuno/internal/engine/history"
	"github.com/dshills/vuno/internal/project/vfs"
)

// Default configuration values.
const (
	DefaultHistoryCapacity = history.DefaultCapacity
	DefaultMaxFileSize     = 10 * 1024 * 1024
)

// Option configures a Manager during creation.
type Option func(*Manager)

// WithVFS sets the file system used for persistence.
func WithVFS(fs vfs.VFS) Option {
	return func(m *Manager) {
		if fs != nil {
			m.vfs = fs
		}
	}
}

// WithHistoryCapacity sets how many edits are retained per buffer.
func WithHistoryCapacity(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.historyCap = n
		}
	}
}

// WithMaxFileSize sets the largest file OpenFile accepts. 0 means unlimited.
func WithMaxFileSize(size int64) Option {
	return func(m *Manager) {
		if size >= 0 {
			m.maxFileSize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}
