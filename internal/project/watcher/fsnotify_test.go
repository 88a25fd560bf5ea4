package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T) *FSNotifyWatcher {
	t.Helper()
	w, err := NewFSNotifyWatcher(WithDebounceDelay(50 * time.Millisecond))
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile error = %v", err)
	}
}

func TestFSNotifyWatcher_WatchUnwatch(t *testing.T) {
	w := newTestWatcher(t)
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "a")

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	if !w.IsWatching(path) {
		t.Error("should be watching file")
	}
	if err := w.Watch(path); err != ErrAlreadyWatching {
		t.Errorf("Watch again error = %v, want ErrAlreadyWatching", err)
	}

	if err := w.Unwatch(path); err != nil {
		t.Fatalf("Unwatch error = %v", err)
	}
	if w.IsWatching(path) {
		t.Error("should not be watching file after Unwatch")
	}
	if err := w.Unwatch(path); err != ErrNotWatching {
		t.Errorf("Unwatch again error = %v, want ErrNotWatching", err)
	}
}

func TestFSNotifyWatcher_SharedDirectory(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	writeFile(t, a, "a")
	writeFile(t, b, "b")

	if err := w.Watch(a); err != nil {
		t.Fatalf("Watch(a) error = %v", err)
	}
	if err := w.Watch(b); err != nil {
		t.Fatalf("Watch(b) error = %v", err)
	}
	if err := w.Unwatch(a); err != nil {
		t.Fatalf("Unwatch(a) error = %v", err)
	}

	got := w.WatchedPaths()
	if len(got) != 1 || got[0] != b {
		t.Errorf("WatchedPaths() = %v, want [%s]", got, b)
	}
}

func TestFSNotifyWatcher_WatchNonexistent(t *testing.T) {
	w := newTestWatcher(t)

	err := w.Watch(filepath.Join(t.TempDir(), "missing.txt"))
	if err != ErrPathNotExist {
		t.Errorf("Watch nonexistent error = %v, want ErrPathNotExist", err)
	}
}

func TestFSNotifyWatcher_Debounce(t *testing.T) {
	w := newTestWatcher(t)
	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "0")

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch error = %v", err)
	}

	for i := 0; i < 5; i++ {
		writeFile(t, path, "burst")
	}

	select {
	case ev := <-w.Events():
		if ev.Path != path {
			t.Errorf("event path = %q, want %q", ev.Path, path)
		}
		if !ev.Op.Has(OpWrite) {
			t.Errorf("event op = %v, want WRITE", ev.Op)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case ev := <-w.Events():
		t.Errorf("unexpected second event: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFSNotifyWatcher_IgnoresUnwatchedSiblings(t *testing.T) {
	w := newTestWatcher(t)
	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.txt")
	other := filepath.Join(dir, "other.txt")
	writeFile(t, watched, "x")

	if err := w.Watch(watched); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	writeFile(t, other, "y")

	select {
	case ev := <-w.Events():
		t.Errorf("unexpected event for sibling: %+v", ev)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestFSNotifyWatcher_Close(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "a")
	if err := w.Watch(path); err != ErrWatcherClosed {
		t.Errorf("Watch after Close error = %v, want ErrWatcherClosed", err)
	}

	if _, ok := <-w.Events(); ok {
		t.Error("events channel should be closed")
	}
}

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
		{OpCreate | OpWrite, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}
