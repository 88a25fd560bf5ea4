package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

// mapFS is an in-memory FileSystem.
type mapFS map[string]string

func (m mapFS) ReadFile(path string) ([]byte, error) {
	s, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(s), nil
}

func TestTOMLLoader_Load(t *testing.T) {
	fsys := mapFS{"/vuno.toml": "[history]\ncapacity = 50\n\n[log]\nformat = \"json\"\n"}

	config, err := NewTOMLLoaderWithFS(fsys, "/vuno.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if val, _ := getByPath(config, "history.capacity"); val != int64(50) {
		t.Errorf("history.capacity = %v (%T), want 50", val, val)
	}
	if val, _ := getByPath(config, "log.format"); val != "json" {
		t.Errorf("log.format = %v, want json", val)
	}
}

func TestTOMLLoader_Missing(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(mapFS{}, "/missing.toml").Load()
	if err != nil || config != nil {
		t.Errorf("Load(missing) = %v, %v; want nil, nil", config, err)
	}
}

func TestTOMLLoader_ParseError(t *testing.T) {
	fsys := mapFS{"/bad.toml": "[history\ncapacity = 1\n"}

	_, err := NewTOMLLoaderWithFS(fsys, "/bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load error = %v, want *ParseError", err)
	}
	if perr.Path != "/bad.toml" {
		t.Errorf("ParseError.Path = %q", perr.Path)
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	fsys := mapFS{"/vuno.yaml": "workers:\n  count: 3\nfiles:\n  watch: true\n"}

	config, err := NewYAMLLoaderWithFS(fsys, "/vuno.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if val, _ := getByPath(config, "workers.count"); val != 3 {
		t.Errorf("workers.count = %v (%T), want 3", val, val)
	}
	if val, _ := getByPath(config, "files.watch"); val != true {
		t.Errorf("files.watch = %v, want true", val)
	}
}

func TestYAMLLoader_FromReader(t *testing.T) {
	config, err := NewYAMLLoader("").LoadFromReader(strings.NewReader("log:\n  level: warn\n"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if val, _ := getByPath(config, "log.level"); val != "warn" {
		t.Errorf("log.level = %v, want warn", val)
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"a.toml", false},
		{"a.yaml", false},
		{"a.YML", false},
		{"a.json", true},
		{"noext", true},
	}
	for _, tt := range tests {
		_, err := ForFile(mapFS{}, tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForFile(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"log":     map[string]any{"level": "info", "format": "text"},
		"history": map[string]any{"capacity": 100},
	}
	src := map[string]any{
		"log": map[string]any{"level": "debug"},
	}

	got := DeepMerge(dst, src)
	if val, _ := getByPath(got, "log.level"); val != "debug" {
		t.Errorf("log.level = %v, want debug", val)
	}
	if val, _ := getByPath(got, "log.format"); val != "text" {
		t.Errorf("log.format = %v, want text", val)
	}
	if val, _ := getByPath(got, "history.capacity"); val != 100 {
		t.Errorf("history.capacity = %v, want 100", val)
	}
}
