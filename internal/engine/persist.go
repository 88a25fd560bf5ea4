package engine

import (
	"context"
	"sort"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sirupsen/logrus"

	"github.com/dshills/vuno/internal/engine/buffer"
	"github.com/dshills/vuno/internal/engine/language"
	"github.com/dshills/vuno/internal/project/vfs"
)

// diskFile is the decoded content of a file plus the metadata recorded on
// the buffer.
type diskFile struct {
	path     string
	text     string
	encoding vfs.Encoding
	modTime  time.Time
}

// readFile loads and decodes a text file. No registry lock is held.
func (m *Manager) readFile(ctx context.Context, op string, id buffer.ID, path string) (diskFile, error) {
	if err := ctx.Err(); err != nil {
		return diskFile{}, ioError(op, id, path, err)
	}

	absPath, err := m.vfs.Abs(path)
	if err != nil {
		return diskFile{}, ioError(op, id, path, err)
	}

	info, err := m.vfs.Stat(absPath)
	if err != nil {
		return diskFile{}, ioError(op, id, path, err)
	}
	if info.IsDir() {
		return diskFile{}, ioError(op, id, path, ErrIsDirectory)
	}
	if m.maxFileSize > 0 && info.Size() > m.maxFileSize {
		return diskFile{}, ioError(op, id, path, ErrFileTooLarge)
	}

	raw, err := m.vfs.ReadFile(absPath)
	if err != nil {
		return diskFile{}, ioError(op, id, path, err)
	}
	if vfs.IsBinary(raw) {
		return diskFile{}, ioError(op, id, path, ErrBinaryFile)
	}

	text, enc, err := vfs.Decode(raw)
	if err != nil {
		return diskFile{}, ioError(op, id, path, err)
	}

	return diskFile{
		path:     absPath,
		text:     string(text),
		encoding: enc,
		modTime:  info.ModTime(),
	}, nil
}

// OpenFile reads a file into a new buffer. Every call creates a new buffer,
// even if the same path is already open.
func (m *Manager) OpenFile(ctx context.Context, path string) (buffer.ID, error) {
	f, err := m.readFile(ctx, "open_file", 0, path)
	if err != nil {
		m.log.WithError(err).WithField("path", path).Warn("open failed")
		return 0, err
	}

	b := buffer.New(m.nextID(), f.text, f.path, language.Detect(f.path, f.text), m.now())
	b.Encoding = f.encoding
	b.DiskModTime = f.modTime
	m.insert(b)

	m.log.WithFields(logrus.Fields{
		"buffer":   b.ID,
		"path":     f.path,
		"encoding": f.encoding,
		"language": b.Language,
	}).Debug("file opened")
	m.fire(&m.onOpen, b.ID, f.path)
	return b.ID, nil
}

// SaveFile writes the buffer content to path, or to the buffer's own path
// when path is empty, and returns the path written.
//
// On success the buffer is bound to that path. Modified is cleared unless
// the content changed while the write was in flight. A buffer whose text
// no longer fits its single-byte encoding is saved, and from then on
// tracked, as UTF-8.
func (m *Manager) SaveFile(ctx context.Context, id buffer.ID, path string) (string, error) {
	const op = "save_file"

	snap, ok := m.GetBuffer(id)
	if !ok {
		return "", notFound(op, id)
	}

	target := path
	if target == "" {
		target = snap.Path
	}
	if target == "" {
		return "", &OpError{Op: op, ID: id, Err: ErrMissingPath}
	}
	if err := ctx.Err(); err != nil {
		return "", ioError(op, id, target, err)
	}

	absPath, err := m.vfs.Abs(target)
	if err != nil {
		return "", ioError(op, id, target, err)
	}
	enc := snap.Encoding
	data, err := vfs.Encode(snap.Content, enc)
	if err != nil && !enc.Unicode() {
		// Text the original encoding cannot hold is written as UTF-8.
		m.log.WithError(err).WithFields(logrus.Fields{"buffer": id, "path": absPath, "encoding": enc}).Info("saving as utf-8")
		enc = vfs.EncodingUTF8
		data, err = vfs.Encode(snap.Content, enc)
	}
	if err != nil {
		return "", ioError(op, id, absPath, err)
	}
	if err := m.vfs.WriteFile(absPath, data, 0o644); err != nil {
		m.log.WithError(err).WithFields(logrus.Fields{"buffer": id, "path": absPath}).Warn("save failed")
		return "", ioError(op, id, absPath, err)
	}

	var modTime time.Time
	if info, err := m.vfs.Stat(absPath); err == nil {
		modTime = info.ModTime()
	}

	m.mu.Lock()
	if e, ok := m.buffers[id]; ok {
		e.buf.Path = absPath
		e.buf.DiskModTime = modTime
		e.buf.ExternallyModified = false
		e.buf.Encoding = enc
		if e.buf.Content == snap.Content {
			e.buf.MarkSaved()
		}
	}
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{"buffer": id, "path": absPath, "bytes": len(data)}).Debug("file saved")
	m.fire(&m.onSave, id, absPath)
	return absPath, nil
}

// DeleteFile removes a file from disk. Open buffers are not affected.
func (m *Manager) DeleteFile(ctx context.Context, path string) error {
	const op = "delete_file"

	if err := ctx.Err(); err != nil {
		return ioError(op, 0, path, err)
	}
	info, err := m.vfs.Stat(path)
	if err != nil {
		return ioError(op, 0, path, err)
	}
	if info.IsDir() {
		return ioError(op, 0, path, ErrIsDirectory)
	}
	if err := m.vfs.Remove(path); err != nil {
		m.log.WithError(err).WithField("path", path).Warn("delete failed")
		return ioError(op, 0, path, err)
	}
	m.log.WithField("path", path).Debug("file deleted")
	return nil
}

// ReloadFile replaces the buffer content with the file on disk. Unsaved
// changes are only discarded when force is set. The reload is a save point:
// Modified and ExternallyModified are cleared.
func (m *Manager) ReloadFile(ctx context.Context, id buffer.ID, force bool) error {
	const op = "reload_file"

	snap, ok := m.GetBuffer(id)
	if !ok {
		return notFound(op, id)
	}
	if snap.Path == "" {
		return &OpError{Op: op, ID: id, Err: ErrMissingPath}
	}
	if snap.Modified && !force {
		return &OpError{Op: op, ID: id, Path: snap.Path, Err: ErrModified}
	}

	f, err := m.readFile(ctx, op, id, snap.Path)
	if err != nil {
		m.log.WithError(err).WithField("buffer", id).Warn("reload failed")
		return err
	}

	err = m.update(op, id, func(e *entry) error {
		if e.buf.Modified && !force {
			return ErrModified
		}
		e.buf.SetContent(f.text)
		e.buf.Touch(m.now())
		e.buf.MarkSaved()
		e.buf.Encoding = f.encoding
		e.buf.DiskModTime = f.modTime
		e.buf.ExternallyModified = false
		return nil
	})
	if err == nil {
		m.log.WithFields(logrus.Fields{"buffer": id, "path": f.path}).Debug("file reloaded")
	}
	return err
}

// Diff returns a unified diff from the file on disk to the buffer content.
// The result is empty when they are identical.
func (m *Manager) Diff(ctx context.Context, id buffer.ID) (string, error) {
	const op = "diff_buffer"

	snap, ok := m.GetBuffer(id)
	if !ok {
		return "", notFound(op, id)
	}
	if snap.Path == "" {
		return "", &OpError{Op: op, ID: id, Err: ErrMissingPath}
	}

	f, err := m.readFile(ctx, op, id, snap.Path)
	if err != nil {
		return "", err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(f.text),
		B:        difflib.SplitLines(snap.Content),
		FromFile: "a" + f.path,
		ToFile:   "b" + f.path,
		Context:  3,
	})
	if err != nil {
		return "", &OpError{Op: op, ID: id, Path: f.path, Err: err}
	}
	return diff, nil
}

// CheckExternalChange flags every buffer bound to path whose recorded
// modification time no longer matches the file. A missing file counts as a
// change. It returns the ids flagged, in order.
func (m *Manager) CheckExternalChange(path string) []buffer.ID {
	absPath, err := m.vfs.Abs(path)
	if err != nil {
		return nil
	}

	var modTime time.Time
	removed := false
	if info, err := m.vfs.Stat(absPath); err != nil {
		removed = true
	} else {
		modTime = info.ModTime()
	}

	var flagged []buffer.ID
	m.mu.Lock()
	for id, e := range m.buffers {
		if e.buf.Path != absPath {
			continue
		}
		if removed || !e.buf.DiskModTime.Equal(modTime) {
			e.buf.ExternallyModified = true
			flagged = append(flagged, id)
		}
	}
	m.mu.Unlock()

	sort.Slice(flagged, func(i, j int) bool { return flagged[i] < flagged[j] })
	if len(flagged) > 0 {
		m.log.WithFields(logrus.Fields{"path": absPath, "buffers": flagged, "removed": removed}).Info("file changed on disk")
	}
	return flagged
}
