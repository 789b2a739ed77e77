package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		cfg  Config
		want Driver
	}{
		{Config{FSRoot: t.TempDir()}, DriverFilesystem},
		{Config{Driver: DriverFilesystem, FSRoot: t.TempDir()}, DriverFilesystem},
		{Config{Driver: DriverMemory}, DriverMemory},
	}
	for _, tc := range cases {
		store, err := Open(ctx, tc.cfg)
		if err != nil {
			t.Fatalf("Open(%+v): %v", tc.cfg, err)
		}
		if store.Driver() != tc.want {
			t.Fatalf("expected driver %s, got %s", tc.want, store.Driver())
		}
	}
	if _, err := Open(ctx, Config{Driver: "tape"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
	if _, err := Open(ctx, Config{Driver: DriverS3}); err == nil {
		t.Fatalf("expected s3 without bucket to fail")
	}
}

func TestStoresShareContract(t *testing.T) {
	ctx := context.Background()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	stores := map[string]Store{
		"fs":     fsStore,
		"memory": NewMemory(),
		"s3":     NewFakeS3(),
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			key := "quotes/q1/invoice.pdf"
			info, err := store.Put(ctx, key, strings.NewReader("%PDF"), PutOptions{ContentType: "application/pdf"})
			if err != nil {
				t.Fatalf("Put: %v", err)
			}
			if info.Size != 4 || info.Key != key {
				t.Fatalf("unexpected info %+v", info)
			}
			if _, err := store.Put(ctx, key, strings.NewReader("again"), PutOptions{}); !errors.Is(err, ErrExists) {
				t.Fatalf("expected ErrExists, got %v", err)
			}
			_, rc, err := store.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			body, _ := io.ReadAll(rc)
			_ = rc.Close()
			if string(body) != "%PDF" {
				t.Fatalf("unexpected body %q", body)
			}
			list, err := store.List(ctx, "quotes/q1/")
			if err != nil || len(list) != 1 {
				t.Fatalf("List: %v %+v", err, list)
			}
			if _, err := store.Head(ctx, "quotes/missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound from Head, got %v", err)
			}
			if ok, err := store.Delete(ctx, key); err != nil || !ok {
				t.Fatalf("Delete: %v %v", ok, err)
			}
		})
	}
}

func TestNormalizeKey(t *testing.T) {
	good := map[string]string{
		"a/b.txt":       "a/b.txt",
		"a//b.txt":      "a/b.txt",
		"./quotes/x":    "quotes/x",
		" spaced/key ":  "spaced/key",
		"quotes/..x/y":  "quotes/..x/y",
		"quotes/a/./b":  "quotes/a/b",
		"quotes/a/b/":   "quotes/a/b",
		"quotes/a.b..c": "quotes/a.b..c",
	}
	for in, want := range good {
		got, err := NormalizeKey(in)
		if err != nil || got != want {
			t.Fatalf("NormalizeKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "  ", "/abs", "../up", "a/../../b", `a\b`} {
		if _, err := NormalizeKey(bad); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("NormalizeKey(%q) expected ErrInvalidKey, got %v", bad, err)
		}
	}
}
