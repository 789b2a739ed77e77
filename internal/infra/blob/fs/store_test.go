package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"partpulse/internal/blob/core"
)

func TestPutWritesDataAndSidecar(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	info, err := store.Put(ctx, "quotes/q1/a.txt", strings.NewReader("hello"), core.PutOptions{ContentType: "text/plain", Metadata: map[string]string{"quote": "q1"}})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if info.Size != 5 || info.ETag == "" || !strings.HasPrefix(info.URL, "file://") {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := os.Stat(filepath.Join(root, "quotes", "q1", "a.txt.meta")); err != nil {
		t.Fatalf("expected sidecar: %v", err)
	}
	head, err := store.Head(ctx, "quotes/q1/a.txt")
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head.ETag != info.ETag || head.Metadata["quote"] != "q1" || head.ContentType != "text/plain" {
		t.Fatalf("head mismatch %+v", head)
	}
	_, rc, err := store.Get(ctx, "quotes/q1/a.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	body, _ := io.ReadAll(rc)
	if string(body) != "hello" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestPutRejectsExistingAndInvalidKeys(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := store.Put(ctx, "k", strings.NewReader("1"), core.PutOptions{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := store.Put(ctx, "k", strings.NewReader("2"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	for _, key := range []string{"../escape", "/abs", "", "x.meta"} {
		if _, err := store.Put(ctx, key, strings.NewReader("1"), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestListDeleteAndMissing(t *testing.T) {
	ctx := context.Background()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, key := range []string{"b/2", "a/1", "b/1"} {
		if _, err := store.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "b/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Key != "b/1" || list[1].Key != "b/2" {
		t.Fatalf("unexpected list %+v", list)
	}
	if ok, err := store.Delete(ctx, "b/1"); err != nil || !ok {
		t.Fatalf("Delete existing: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "b/1"); err != nil || ok {
		t.Fatalf("Delete missing: %v %v", ok, err)
	}
	if _, _, err := store.Get(ctx, "b/1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.PresignURL(ctx, "a/1", core.SignedURLOptions{Method: "PUT"}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported for PUT presign, got %v", err)
	}
	if u, err := store.PresignURL(ctx, "a/1", core.SignedURLOptions{}); err != nil || !strings.HasSuffix(u, "/a/1") {
		t.Fatalf("PresignURL: %q %v", u, err)
	}
}
