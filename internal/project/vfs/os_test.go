package vfs

import (
	"path/filepath"
	"testing"
)

func TestOSFS_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	fsys := NewOSFS()
	p := filepath.Join(dir, "note.txt")

	if fsys.Exists(p) {
		t.Fatal("file should not exist yet")
	}
	if err := fsys.WriteFile(p, []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	got, err := fsys.ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "hi" {
		t.Errorf("ReadFile = %q, want %q", got, "hi")
	}

	info, err := fsys.Stat(p)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 2 || info.Name() != "note.txt" {
		t.Errorf("Stat = %+v", info)
	}

	if err := fsys.Remove(p); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if fsys.Exists(p) {
		t.Error("file should not exist after Remove")
	}

	abs, err := fsys.Abs(".")
	if err != nil || !filepath.IsAbs(abs) {
		t.Errorf("Abs(.) = %q, %v", abs, err)
	}
}
