package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStore_Upload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "https://example.com")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	data := []byte("%PDF-1.4 test")
	if err := store.Upload(context.Background(), "lidl_2025-01-01_ab3d.pdf", data); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	written, err := os.ReadFile(filepath.Join(dir, "lidl_2025-01-01_ab3d.pdf"))
	if err != nil {
		t.Fatalf("Failed to read uploaded file: %v", err)
	}
	if string(written) != string(data) {
		t.Errorf("Uploaded content mismatch")
	}
}

func TestLocalStore_Upload_RejectsOverwrite(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "https://example.com")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	name := "billa_2025-01-01_xy9z.pdf"
	if err := store.Upload(context.Background(), name, []byte("first")); err != nil {
		t.Fatalf("First upload failed: %v", err)
	}

	err = store.Upload(context.Background(), name, []byte("second"))
	if !errors.Is(err, ErrObjectExists) {
		t.Errorf("Expected ErrObjectExists, got: %v", err)
	}
}

func TestLocalStore_Upload_CancelledContext(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "https://example.com")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Upload(ctx, "name.pdf", []byte("data")); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestLocalStore_PublicURL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "https://example.com/")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	got := store.PublicURL("lidl_2025-01-01_ab3d.pdf")
	want := "https://example.com/documents/lidl_2025-01-01_ab3d.pdf"
	if got != want {
		t.Errorf("Expected '%s', got '%s'", want, got)
	}
}
