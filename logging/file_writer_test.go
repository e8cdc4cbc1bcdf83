package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileWriterCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "texgen.log")

	w, err := NewFileWriterWithConfig(path, FileWriterConfig{})
	if err != nil {
		t.Fatalf("NewFileWriterWithConfig() error: %v", err)
	}
	if _, err := w.Write([]byte("line\n")); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "line\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestNewFileWriterBadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileWriter(filepath.Join(blocker, "sub", "texgen.log")); err == nil {
		t.Error("expected error when the parent is a regular file")
	}
}
