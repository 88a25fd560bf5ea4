package engine

import (
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dshills/vuno/internal/engine/buffer"
	"github.com/dshills/vuno/internal/engine/history"
	"github.com/dshills/vuno/internal/engine/language"
	"github.com/dshills/vuno/internal/engine/search"
	"github.com/dshills/vuno/internal/project/vfs"
)

// Hook is called after a buffer lifecycle event.
type Hook func(id buffer.ID, path string)

// entry is a registry slot. Buffer and history are created and removed
// together.
type entry struct {
	buf *buffer.Buffer
	log *history.Log
}

// Manager owns all open buffers.
type Manager struct {
	mu      sync.RWMutex
	buffers map[buffer.ID]*entry

	idMu   sync.Mutex
	lastID buffer.ID

	vfs         vfs.VFS
	historyCap  int
	maxFileSize int64
	now         func() time.Time
	log         *logrus.Entry

	hooksMu sync.RWMutex
	onOpen  []Hook
	onSave  []Hook
	onClose []Hook
}

// Stats summarizes the open buffers.
type Stats struct {
	Open       int   `json:"open"`
	Modified   int   `json:"modified"`
	TotalBytes int64 `json:"total_bytes"`
}

// New creates an empty Manager.
func New(opts ...Option) *Manager {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	m := &Manager{
		buffers:     make(map[buffer.ID]*entry),
		vfs:         vfs.NewOSFS(),
		historyCap:  DefaultHistoryCapacity,
		maxFileSize: DefaultMaxFileSize,
		now:         time.Now,
		log:         logrus.NewEntry(discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// nextID allocates a fresh identity. IDs start at 1 and are never reused.
func (m *Manager) nextID() buffer.ID {
	m.idMu.Lock()
	defer m.idMu.Unlock()
	m.lastID++
	return m.lastID
}

// CreateBuffer registers a new buffer and returns its id.
// The language is inferred from path and content.
func (m *Manager) CreateBuffer(content, path string) buffer.ID {
	b := buffer.New(m.nextID(), content, path, language.Detect(path, content), m.now())
	m.insert(b)
	m.log.WithFields(logrus.Fields{"buffer": b.ID, "path": path, "language": b.Language}).Debug("buffer created")
	return b.ID
}

func (m *Manager) insert(b *buffer.Buffer) {
	m.mu.Lock()
	m.buffers[b.ID] = &entry{buf: b, log: history.New(m.historyCap)}
	m.mu.Unlock()
}

// GetBuffer returns a copy of the buffer.
func (m *Manager) GetBuffer(id buffer.ID) (buffer.Buffer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.buffers[id]
	if !ok {
		return buffer.Buffer{}, false
	}
	return e.buf.Clone(), true
}

// Content returns the buffer text.
func (m *Manager) Content(id buffer.ID) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.buffers[id]
	if !ok {
		return "", notFound("get_content", id)
	}
	return e.buf.Content, nil
}

// Info returns the derived summary of a buffer.
func (m *Manager) Info(id buffer.ID) (buffer.Info, error) {
	b, ok := m.GetBuffer(id)
	if !ok {
		return buffer.Info{}, notFound("get_buffer_info", id)
	}
	return buffer.NewInfo(&b), nil
}

// List returns the summary of every open buffer, ordered by id.
func (m *Manager) List() []buffer.Info {
	m.mu.RLock()
	snapshot := make([]buffer.Buffer, 0, len(m.buffers))
	for _, e := range m.buffers {
		snapshot = append(snapshot, e.buf.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })

	infos := make([]buffer.Info, len(snapshot))
	for i := range snapshot {
		infos[i] = buffer.NewInfo(&snapshot[i])
	}
	return infos
}

// update runs fn on the live buffer entry under the write lock.
func (m *Manager) update(op string, id buffer.ID, fn func(e *entry) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.buffers[id]
	if !ok {
		return notFound(op, id)
	}
	if err := fn(e); err != nil {
		return &OpError{Op: op, ID: id, Err: err}
	}
	return nil
}

// UpdateContent replaces the whole content. Language and history are kept.
func (m *Manager) UpdateContent(id buffer.ID, content string) error {
	err := m.update("update_buffer_content", id, func(e *entry) error {
		e.buf.SetContent(content)
		e.buf.Touch(m.now())
		return nil
	})
	if err == nil {
		m.log.WithFields(logrus.Fields{"buffer": id, "size": len(content)}).Debug("content replaced")
	}
	return err
}

// ApplyEdit replaces the bytes in [start, end) with text and records the
// edit in the buffer history.
//
// Offsets must lie within the content and on UTF-8 character boundaries.
// If end < start the content from start to end is kept, so the edit acts
// as an insertion at start.
func (m *Manager) ApplyEdit(id buffer.ID, start, end buffer.ByteOffset, text string) error {
	edit := buffer.NewEdit(start, end, text, m.now())
	err := m.update("apply_edit", id, func(e *entry) error {
		if err := e.buf.Splice(start, end, text); err != nil {
			return err
		}
		e.log.Append(edit)
		e.buf.Touch(edit.Timestamp)
		return nil
	})
	if err == nil {
		m.log.WithFields(logrus.Fields{"buffer": id, "edit": edit.String(), "delta": edit.Delta()}).Debug("edit applied")
	}
	return err
}

// UpdateCursorPosition records the cursor position. The value is not
// checked against the content.
func (m *Manager) UpdateCursorPosition(id buffer.ID, pos int64) error {
	return m.update("update_cursor_position", id, func(e *entry) error {
		e.buf.CursorPosition = pos
		return nil
	})
}

// UpdateScrollPosition records the scroll position.
func (m *Manager) UpdateScrollPosition(id buffer.ID, pos int64) error {
	return m.update("update_scroll_position", id, func(e *entry) error {
		e.buf.ScrollPosition = pos
		return nil
	})
}

// EditHistory returns the retained edits, oldest first. Unknown ids yield an
// empty slice.
func (m *Manager) EditHistory(id buffer.ID) []buffer.Edit {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.buffers[id]
	if !ok {
		return []buffer.Edit{}
	}
	return e.log.Edits()
}

// Search returns every occurrence of query, overlapping matches included.
// The scan runs on a snapshot outside the lock.
func (m *Manager) Search(id buffer.ID, query string, caseSensitive bool) ([]search.Match, error) {
	m.mu.RLock()
	e, ok := m.buffers[id]
	var content string
	if ok {
		content = e.buf.Content
	}
	m.mu.RUnlock()

	if !ok {
		return nil, notFound("search_in_buffer", id)
	}
	matches := search.FindAll(content, query, caseSensitive)
	if matches == nil {
		matches = []search.Match{}
	}
	return matches, nil
}

// Replace substitutes every non-overlapping occurrence of query and returns
// the number of substitutions. The buffer is marked modified even when
// nothing matched.
func (m *Manager) Replace(id buffer.ID, query, replacement string, caseSensitive bool) (int, error) {
	var count int
	err := m.update("replace_in_buffer", id, func(e *entry) error {
		var content string
		content, count = search.ReplaceAll(e.buf.Content, query, replacement, caseSensitive)
		e.buf.SetContent(content)
		e.buf.Touch(m.now())
		return nil
	})
	if err != nil {
		return 0, err
	}
	m.log.WithFields(logrus.Fields{"buffer": id, "count": count}).Debug("replace applied")
	return count, nil
}

// MarkSaved clears the modified flag without touching timestamps.
func (m *Manager) MarkSaved(id buffer.ID) error {
	return m.update("mark_as_saved", id, func(e *entry) error {
		e.buf.MarkSaved()
		return nil
	})
}

// SetLanguage overrides the inferred language. The tag may be any name or
// alias known to the lexer registry; the canonical tag is returned.
func (m *Manager) SetLanguage(id buffer.ID, tag string) (string, error) {
	canonical, ok := language.Normalize(tag)
	if !ok {
		if _, exists := m.GetBuffer(id); !exists {
			return "", notFound("set_language", id)
		}
		return "", &OpError{Op: "set_language", ID: id, Err: ErrUnknownLanguage}
	}
	err := m.update("set_language", id, func(e *entry) error {
		e.buf.Language = canonical
		return nil
	})
	if err != nil {
		return "", err
	}
	return canonical, nil
}

// CloseBuffer removes the buffer and its history. The id is never reused.
func (m *Manager) CloseBuffer(id buffer.ID) error {
	m.mu.Lock()
	e, ok := m.buffers[id]
	if !ok {
		m.mu.Unlock()
		return notFound("close_buffer", id)
	}
	path := e.buf.Path
	delete(m.buffers, id)
	m.mu.Unlock()

	m.log.WithField("buffer", id).Debug("buffer closed")
	m.fire(&m.onClose, id, path)
	return nil
}

// BuffersForPath returns the ids of buffers bound to path, in order.
func (m *Manager) BuffersForPath(path string) []buffer.ID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []buffer.ID
	for id, e := range m.buffers {
		if e.buf.Path == path {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Stats returns counts over the open buffers.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s Stats
	for _, e := range m.buffers {
		s.Open++
		if e.buf.Modified {
			s.Modified++
		}
		s.TotalBytes += e.buf.Len()
	}
	return s
}

// OnOpen registers a handler called after OpenFile creates a buffer.
func (m *Manager) OnOpen(h Hook) {
	m.hooksMu.Lock()
	m.onOpen = append(m.onOpen, h)
	m.hooksMu.Unlock()
}

// OnSave registers a handler called after SaveFile writes a buffer.
func (m *Manager) OnSave(h Hook) {
	m.hooksMu.Lock()
	m.onSave = append(m.onSave, h)
	m.hooksMu.Unlock()
}

// OnClose registers a handler called after a buffer is closed.
func (m *Manager) OnClose(h Hook) {
	m.hooksMu.Lock()
	m.onClose = append(m.onClose, h)
	m.hooksMu.Unlock()
}

// fire invokes hooks on a copy of the handler slice, outside every lock.
func (m *Manager) fire(hooks *[]Hook, id buffer.ID, path string) {
	m.hooksMu.RLock()
	handlers := make([]Hook, len(*hooks))
	copy(handlers, *hooks)
	m.hooksMu.RUnlock()

	for _, h := range handlers {
		h(id, path)
	}
}
