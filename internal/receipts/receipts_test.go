package receipts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "receipts")
	if _, err := New(dir); err != nil {
		t.Fatalf("New(%s) error: %v", dir, err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("storage dir missing: %v", err)
	}
}

func TestSave(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	path, err := s.Save(42, strings.NewReader("image-bytes"))
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if path != s.Path(42) {
		t.Fatalf("Save path = %s, want %s", path, s.Path(42))
	}
	if filepath.Base(path) != "42.png" {
		t.Fatalf("file name = %s, want 42.png", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved receipt: %v", err)
	}
	if string(data) != "image-bytes" {
		t.Fatalf("content = %q", data)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := s.Save(1, strings.NewReader("first")); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	path, err := s.Save(1, strings.NewReader("second"))
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "second" {
		t.Fatalf("content = %q, want overwrite", data)
	}
}
