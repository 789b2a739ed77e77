package memory

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"partpulse/internal/blob/core"
)

func TestStoreIsolatesCallerBuffers(t *testing.T) {
	ctx := context.Background()
	s := New()
	meta := map[string]string{"quote": "q1"}
	if _, err := s.Put(ctx, "quotes/q1/a", strings.NewReader("abc"), core.PutOptions{Metadata: meta}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	meta["quote"] = "mutated"
	info, rc, err := s.Get(ctx, "quotes/q1/a")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	if string(body) != "abc" || info.Metadata["quote"] != "q1" {
		t.Fatalf("unexpected blob %q %+v", body, info)
	}
	info.Metadata["quote"] = "again"
	head, _ := s.Head(ctx, "quotes/q1/a")
	if head.Metadata["quote"] != "q1" {
		t.Fatalf("expected stored metadata unchanged, got %+v", head.Metadata)
	}
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, err := s.Put(ctx, "k", strings.NewReader("1"), core.PutOptions{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Put(ctx, "./k", strings.NewReader("2"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists for equivalent key, got %v", err)
	}
	if _, err := s.Head(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Put(ctx, "../x", strings.NewReader("1"), core.PutOptions{}); !errors.Is(err, core.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := s.PresignURL(ctx, "k", core.SignedURLOptions{}); !errors.Is(err, core.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if ok, _ := s.Delete(ctx, "k"); !ok {
		t.Fatalf("expected delete to report existing blob")
	}
	if list, _ := s.List(ctx, ""); len(list) != 0 {
		t.Fatalf("expected empty store, got %+v", list)
	}
}
