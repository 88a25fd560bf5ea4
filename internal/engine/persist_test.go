package engine

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/dshills/vuno/internal/engine/buffer"
	"github.com/dshills/vuno/internal/project/vfs"
)

func newMemManager(t *testing.T, opts ...Option) (*Manager, *vfs.MemFS) {
	t.Helper()
	mem := vfs.NewMemFS()
	if err := mem.MkdirAll("/work"); err != nil {
		t.Fatalf("MkdirAll error: %v", err)
	}
	return newTestManager(t, append([]Option{WithVFS(mem)}, opts...)...), mem
}

func TestOpenFile(t *testing.T) {
	m, mem := newMemManager(t)
	_ = mem.AddFile("/work/main.go", "package main\n")

	id, err := m.OpenFile(context.Background(), "/work/main.go")
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}

	b, _ := m.GetBuffer(id)
	if b.Content != "package main\n" {
		t.Errorf("Content = %q", b.Content)
	}
	if b.Path != "/work/main.go" {
		t.Errorf("Path = %q", b.Path)
	}
	if b.Language != "go" {
		t.Errorf("Language = %q, want go", b.Language)
	}
	if b.Modified {
		t.Error("opened buffer should not be modified")
	}
	if b.Encoding != vfs.EncodingUTF8 {
		t.Errorf("Encoding = %q", b.Encoding)
	}
}

func TestOpenFile_NewIdentityEachTime(t *testing.T) {
	m, mem := newMemManager(t)
	_ = mem.AddFile("/work/a.txt", "a")

	first, _ := m.OpenFile(context.Background(), "/work/a.txt")
	second, _ := m.OpenFile(context.Background(), "/work/a.txt")
	if first == second {
		t.Errorf("opening twice returned the same id %d", first)
	}
}

func TestOpenFile_Errors(t *testing.T) {
	m, mem := newMemManager(t, WithMaxFileSize(16))
	_ = mem.AddFile("/work/big.txt", strings.Repeat("x", 17))
	_ = mem.AddFile("/work/blob.bin", "ab\x00cd")
	_ = mem.MkdirAll("/work/dir")

	tests := []struct {
		name  string
		path  string
		cause error
	}{
		{"missing", "/work/missing.txt", fs.ErrNotExist},
		{"directory", "/work/dir", ErrIsDirectory},
		{"too large", "/work/big.txt", ErrFileTooLarge},
		{"binary", "/work/blob.bin", ErrBinaryFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.OpenFile(context.Background(), tt.path)
			if !errors.Is(err, ErrIO) {
				t.Errorf("error = %v, want ErrIO", err)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("error = %v, want cause %v", err, tt.cause)
			}
			if Kind(err) != KindIOFailure {
				t.Errorf("Kind = %q, want %q", Kind(err), KindIOFailure)
			}
		})
	}

	if n := m.Stats().Open; n != 0 {
		t.Errorf("failed opens created %d buffers", n)
	}
}

func TestOpenFile_CancelledContext(t *testing.T) {
	m, mem := newMemManager(t)
	_ = mem.AddFile("/work/a.txt", "a")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.OpenFile(ctx, "/work/a.txt"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestSaveOpenRoundTrip(t *testing.T) {
	m, _ := newMemManager(t)
	id := m.CreateBuffer("line one\nline two\n", "")
	_ = m.ApplyEdit(id, 0, 4, "LINE")

	path, err := m.SaveFile(context.Background(), id, "/work/out.txt")
	if err != nil {
		t.Fatalf("SaveFile error: %v", err)
	}
	if path != "/work/out.txt" {
		t.Errorf("saved path = %q", path)
	}

	b, _ := m.GetBuffer(id)
	if b.Modified {
		t.Error("saved buffer should not be modified")
	}
	if b.Path != "/work/out.txt" {
		t.Errorf("Path = %q, want /work/out.txt", b.Path)
	}

	reopened, err := m.OpenFile(context.Background(), path)
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	if got := mustContent(t, m, reopened); got != "LINE one\nline two\n" {
		t.Errorf("reopened content = %q", got)
	}
}

func TestSaveFile_UsesBufferPath(t *testing.T) {
	m, mem := newMemManager(t)
	_ = mem.AddFile("/work/a.txt", "old")

	id, _ := m.OpenFile(context.Background(), "/work/a.txt")
	_ = m.UpdateContent(id, "new")

	path, err := m.SaveFile(context.Background(), id, "")
	if err != nil {
		t.Fatalf("SaveFile error: %v", err)
	}
	if path != "/work/a.txt" {
		t.Errorf("saved path = %q", path)
	}
	data, _ := mem.ReadFile("/work/a.txt")
	if string(data) != "new" {
		t.Errorf("file content = %q, want new", data)
	}
}

func TestSaveFile_Errors(t *testing.T) {
	m, _ := newMemManager(t)
	id := m.CreateBuffer("x", "")

	if _, err := m.SaveFile(context.Background(), id, ""); !errors.Is(err, ErrMissingPath) {
		t.Errorf("save without path error = %v, want ErrMissingPath", err)
	}

	_, err := m.SaveFile(context.Background(), id, "/nodir/x.txt")
	if !errors.Is(err, ErrIO) {
		t.Errorf("save into missing dir error = %v, want ErrIO", err)
	}
	if b, _ := m.GetBuffer(id); b.Path != "" {
		t.Errorf("failed save bound path %q", b.Path)
	}

	if _, err := m.SaveFile(context.Background(), 42, "/work/x.txt"); !IsNotFound(err) {
		t.Errorf("save unknown id error = %v, want ErrNotFound", err)
	}
}

func TestSaveFile_PreservesEncoding(t *testing.T) {
	m, mem := newMemManager(t)
	// "hi" in UTF-16LE with BOM
	_ = mem.AddFile("/work/u16.txt", "\xFF\xFEh\x00i\x00")

	id, err := m.OpenFile(context.Background(), "/work/u16.txt")
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	if got := mustContent(t, m, id); got != "hi" {
		t.Fatalf("decoded content = %q, want hi", got)
	}

	_ = m.ApplyEdit(id, 2, 2, "!")
	if _, err := m.SaveFile(context.Background(), id, ""); err != nil {
		t.Fatalf("SaveFile error: %v", err)
	}

	data, _ := mem.ReadFile("/work/u16.txt")
	if want := "\xFF\xFEh\x00i\x00!\x00"; string(data) != want {
		t.Errorf("saved bytes = %q, want %q", data, want)
	}
}

func TestSaveFile_Latin1FallsBackToUTF8(t *testing.T) {
	m, mem := newMemManager(t)
	_ = mem.AddFile("/work/old.txt", "caf\xe9\n")

	id, err := m.OpenFile(context.Background(), "/work/old.txt")
	if err != nil {
		t.Fatalf("OpenFile error: %v", err)
	}
	if got := mustContent(t, m, id); got != "café\n" {
		t.Fatalf("decoded content = %q, want %q", got, "café\n")
	}

	if err := m.ApplyEdit(id, 0, 0, "€ "); err != nil {
		t.Fatalf("ApplyEdit error: %v", err)
	}
	if _, err := m.SaveFile(context.Background(), id, ""); err != nil {
		t.Fatalf("SaveFile error: %v", err)
	}

	data, _ := mem.ReadFile("/work/old.txt")
	if want := "€ café\n"; string(data) != want {
		t.Errorf("saved bytes = %q, want %q", data, want)
	}
	b, _ := m.GetBuffer(id)
	if b.Encoding != vfs.EncodingUTF8 {
		t.Errorf("Encoding after save = %q, want %q", b.Encoding, vfs.EncodingUTF8)
	}
	if b.Modified {
		t.Error("buffer still modified after save")
	}

	reopened, err := m.OpenFile(context.Background(), "/work/old.txt")
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	if got := mustContent(t, m, reopened); got != "€ café\n" {
		t.Errorf("reopened content = %q, want %q", got, "€ café\n")
	}
}

func TestSaveFile_Latin1KeptWhenRepresentable(t *testing.T) {
	m, mem := newMemManager(t)
	_ = mem.AddFile("/work/old.txt", "caf\xe9\n")

	id, _ := m.OpenFile(context.Background(), "/work/old.txt")
	_ = m.ApplyEdit(id, 0, 0, "ü ")
	if _, err := m.SaveFile(context.Background(), id, "/work/copy.txt"); err != nil {
		t.Fatalf("SaveFile error: %v", err)
	}

	data, _ := mem.ReadFile("/work/copy.txt")
	if want := "\xfc caf\xe9\n"; string(data) != want {
		t.Errorf("saved bytes = %q, want %q", data, want)
	}
	if b, _ := m.GetBuffer(id); b.Encoding != vfs.EncodingLatin1 {
		t.Errorf("Encoding = %q, want %q", b.Encoding, vfs.EncodingLatin1)
	}
}

func TestSaveFile_Hook(t *testing.T) {
	m, _ := newMemManager(t)

	var saved []string
	m.OnSave(func(id buffer.ID, path string) {
		saved = append(saved, path)
	})

	id := m.CreateBuffer("x", "")
	_, _ = m.SaveFile(context.Background(), id, "/work/x.txt")

	if len(saved) != 1 || saved[0] != "/work/x.txt" {
		t.Errorf("save hook paths = %v", saved)
	}
}

func TestDeleteFile(t *testing.T) {
	m, mem := newMemManager(t)
	_ = mem.AddFile("/work/a.txt", "a")
	id, _ := m.OpenFile(context.Background(), "/work/a.txt")

	if err := m.DeleteFile(context.Background(), "/work/a.txt"); err != nil {
		t.Fatalf("DeleteFile error: %v", err)
	}
	if mem.Exists("/work/a.txt") {
		t.Error("file should be gone")
	}
	if got := mustContent(t, m, id); got != "a" {
		t.Errorf("open buffer content = %q, want a", got)
	}

	if err := m.DeleteFile(context.Background(), "/work/a.txt"); !errors.Is(err, ErrIO) {
		t.Errorf("second delete error = %v, want ErrIO", err)
	}
	if err := m.DeleteFile(context.Background(), "/work"); !errors.Is(err, ErrIsDirectory) {
		t.Errorf("delete dir error = %v, want ErrIsDirectory", err)
	}
}

func TestReloadFile(t *testing.T) {
	m, mem := newMemManager(t)
	_ = mem.AddFile("/work/a.txt", "one")
	id, _ := m.OpenFile(context.Background(), "/work/a.txt")

	_ = mem.WriteFile("/work/a.txt", []byte("two"), 0o644)
	_ = m.UpdateContent(id, "local")

	err := m.ReloadFile(context.Background(), id, false)
	if !errors.Is(err, ErrModified) {
		t.Fatalf("reload of modified buffer error = %v, want ErrModified", err)
	}
	if Kind(err) != KindModified {
		t.Errorf("Kind = %q", Kind(err))
	}

	if err := m.ReloadFile(context.Background(), id, true); err != nil {
		t.Fatalf("forced reload error: %v", err)
	}
	b, _ := m.GetBuffer(id)
	if b.Content != "two" || b.Modified || b.ExternallyModified {
		t.Errorf("after reload = %+v", b)
	}

	noPath := m.CreateBuffer("x", "")
	if err := m.ReloadFile(context.Background(), noPath, true); !errors.Is(err, ErrMissingPath) {
		t.Errorf("reload without path error = %v, want ErrMissingPath", err)
	}
}

func TestDiff(t *testing.T) {
	m, mem := newMemManager(t)
	_ = mem.AddFile("/work/a.txt", "keep\nold\n")
	id, _ := m.OpenFile(context.Background(), "/work/a.txt")

	same, err := m.Diff(context.Background(), id)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if same != "" {
		t.Errorf("Diff of unchanged buffer = %q, want empty", same)
	}

	_ = m.UpdateContent(id, "keep\nnew\n")
	diff, err := m.Diff(context.Background(), id)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	for _, want := range []string{"--- a/work/a.txt", "+++ b/work/a.txt", "-old\n", "+new\n", " keep\n"} {
		if !strings.Contains(diff, want) {
			t.Errorf("Diff missing %q:\n%s", want, diff)
		}
	}

	scratch := m.CreateBuffer("x", "")
	if _, err := m.Diff(context.Background(), scratch); !errors.Is(err, ErrMissingPath) {
		t.Errorf("Diff without path error = %v, want ErrMissingPath", err)
	}
}

func TestCheckExternalChange(t *testing.T) {
	m, mem := newMemManager(t)
	_ = mem.AddFile("/work/a.txt", "a")
	_ = mem.AddFile("/work/b.txt", "b")
	_ = mem.Chtimes("/work/a.txt", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	a1, _ := m.OpenFile(context.Background(), "/work/a.txt")
	a2, _ := m.OpenFile(context.Background(), "/work/a.txt")
	b, _ := m.OpenFile(context.Background(), "/work/b.txt")

	if got := m.CheckExternalChange("/work/a.txt"); len(got) != 0 {
		t.Errorf("unchanged file flagged %v", got)
	}

	_ = mem.Chtimes("/work/a.txt", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	got := m.CheckExternalChange("/work/a.txt")
	if len(got) != 2 || got[0] != a1 || got[1] != a2 {
		t.Errorf("flagged = %v, want [%d %d]", got, a1, a2)
	}
	if info, _ := m.Info(a1); !info.ExternallyModified {
		t.Error("buffer should be externally modified")
	}
	if info, _ := m.Info(b); info.ExternallyModified {
		t.Error("unrelated buffer should not be flagged")
	}

	_ = mem.Remove("/work/b.txt")
	if got := m.CheckExternalChange("/work/b.txt"); len(got) != 1 || got[0] != b {
		t.Errorf("removed file flagged %v, want [%d]", got, b)
	}

	if _, err := m.SaveFile(context.Background(), a1, ""); err != nil {
		t.Fatalf("SaveFile error: %v", err)
	}
	if info, _ := m.Info(a1); info.ExternallyModified {
		t.Error("save should clear the external flag")
	}
}

func TestOpenFile_Hook(t *testing.T) {
	m, mem := newMemManager(t)
	_ = mem.AddFile("/work/a.txt", "a")

	var opened []buffer.ID
	m.OnOpen(func(id buffer.ID, path string) {
		if path != "/work/a.txt" {
			t.Errorf("hook path = %q", path)
		}
		opened = append(opened, id)
	})

	id, _ := m.OpenFile(context.Background(), "/work/a.txt")
	if len(opened) != 1 || opened[0] != id {
		t.Errorf("open hook ids = %v, want [%d]", opened, id)
	}
}
