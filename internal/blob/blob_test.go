package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDirStore_PutAndReadBack(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store, err := NewDirStore(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content := []byte("<html><body>hi</body></html>")
	if err := store.Put(context.Background(), "html/42", content); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(base, "html", "42"))
	if err != nil {
		t.Fatalf("failed to read blob file: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("blob content: got %q, want %q", got, content)
	}
}

func TestDirStore_CreatesNestedDirectories(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store, err := NewDirStore(filepath.Join(base, "deep", "blobs"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.Put(context.Background(), "attachments/a/b/c", []byte("data")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(base, "deep", "blobs", "attachments", "a", "b", "c"))
	if err != nil {
		t.Fatalf("failed to read blob file: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("blob content: got %q, want %q", got, "data")
	}
}

func TestDirStore_Overwrite(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store, err := NewDirStore(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if err := store.Put(ctx, "key", []byte("first")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, "key", []byte("second")); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(base, "key"))
	if err != nil {
		t.Fatalf("failed to read blob file: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("blob content: got %q, want %q", got, "second")
	}
}

func TestDirStore_Name(t *testing.T) {
	t.Parallel()

	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Name() != "dir" {
		t.Errorf("Name: got %q, want %q", store.Name(), "dir")
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	store := NewDiscard()
	if err := store.Put(context.Background(), "anything", []byte("dropped")); err != nil {
		t.Errorf("Put: unexpected error: %v", err)
	}
	if store.Name() != "discard" {
		t.Errorf("Name: got %q, want %q", store.Name(), "discard")
	}
}
