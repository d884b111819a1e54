package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndRemove(t *testing.T) {
	base := t.TempDir()
	s, err := New(base)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, size, err := s.Save(context.Background(), "id_report.pdf", strings.NewReader("%PDF-1.7"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if path != filepath.Join(base, "id_report.pdf") || size != 8 {
		t.Fatalf("unexpected save result: %s %d", path, size)
	}
	raw, err := os.ReadFile(path)
	if err != nil || string(raw) != "%PDF-1.7" {
		t.Fatalf("unexpected file content %q (%v)", raw, err)
	}

	if err := s.Remove(context.Background(), "id_report.pdf"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err = %v", err)
	}
	if err := s.Remove(context.Background(), "id_report.pdf"); err != nil {
		t.Fatalf("second Remove() should be a no-op, got %v", err)
	}
}

func TestSaveRejectsDuplicateAndTraversalKeys(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, _, err := s.Save(context.Background(), "a.png", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, _, err := s.Save(context.Background(), "a.png", strings.NewReader("y")); err == nil {
		t.Fatalf("expected error for existing key")
	}
	if _, _, err := s.Save(context.Background(), "../escape.png", strings.NewReader("x")); err == nil {
		t.Fatalf("expected error for traversal key")
	}
}

func TestTempDirCleanup(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	dir, cleanup, err := s.TempDir(context.Background(), "pages-")
	if err != nil {
		t.Fatalf("TempDir() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "page-1.png"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write page: %v", err)
	}
	cleanup()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected temp dir removed, stat err = %v", err)
	}
}
