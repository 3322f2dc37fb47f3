package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestLocalStorage_PutGetDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	ctx := context.Background()

	url, err := store.Put(ctx, "images/test.png", strings.NewReader("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "/uploads/images/test.png" {
		t.Errorf("URL = %q, want /uploads/images/test.png", url)
	}

	rc, err := store.Get(ctx, "images/test.png")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Errorf("content = %q, want %q", data, "png-bytes")
	}

	if err := store.Delete(ctx, "images/test.png"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "images/test.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
}

func TestLocalStorage_DeleteMissingIsNoOp(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	if err := store.Delete(context.Background(), "images/nope.png"); err != nil {
		t.Errorf("Delete missing key = %v, want nil", err)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "ftp"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
