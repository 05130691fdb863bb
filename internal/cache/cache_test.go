package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestHTTPCache_SaveLoad(t *testing.T) {
	c := &HTTPCache{Dir: t.TempDir()}
	ctx := context.Background()
	url := "https://example.gov.in/notification.pdf"
	if err := c.Save(ctx, url, "application/pdf", `"v1"`, "Mon, 01 Sep 2025 10:00:00 GMT", []byte("%PDF-1.4 body")); err != nil {
		t.Fatalf("save: %v", err)
	}
	meta, err := c.LoadMeta(ctx, url)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	if meta.ETag != `"v1"` || meta.Size != len("%PDF-1.4 body") || meta.ContentType != "application/pdf" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	body, err := c.LoadBody(ctx, url)
	if err != nil || string(body) != "%PDF-1.4 body" {
		t.Fatalf("unexpected body %q err=%v", body, err)
	}
}

func TestHTTPCache_MissingEntry(t *testing.T) {
	c := &HTTPCache{Dir: t.TempDir()}
	if _, err := c.LoadMeta(context.Background(), "https://nowhere/x.pdf"); err == nil {
		t.Fatal("expected miss error")
	}
}

func TestHTTPCache_StrictPerms(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "c")
	c := &HTTPCache{Dir: dir, StrictPerms: true}
	if err := c.Save(context.Background(), "https://a/b.pdf", "", "", "", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Fatalf("dir perms %v", info.Mode().Perm())
	}
	fi, err := os.Stat(filepath.Join(dir, urlKey("https://a/b.pdf")+bodySuffix))
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Fatalf("file perms %v", fi.Mode().Perm())
	}
}

func TestLLMCache_SaveGet(t *testing.T) {
	c := &LLMCache{Dir: t.TempDir()}
	key := KeyFrom("model", "prompt")
	if err := c.Save(context.Background(), key, []byte("Seeks to amend")); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := c.Get(context.Background(), key)
	if err != nil || !ok || string(got) != "Seeks to amend" {
		t.Fatalf("get: %q ok=%v err=%v", got, ok, err)
	}
	if _, ok, _ := c.Get(context.Background(), KeyFrom("model", "other")); ok {
		t.Fatal("unexpected hit")
	}
}

func TestPurgeByAge(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	h := &HTTPCache{Dir: dir}
	if err := h.Save(ctx, "https://old", "", "", "", []byte("old")); err != nil {
		t.Fatal(err)
	}
	if err := h.Save(ctx, "https://new", "", "", "", []byte("new")); err != nil {
		t.Fatal(err)
	}
	// backdate the first entry
	metaPath := filepath.Join(dir, urlKey("https://old")+metaSuffix)
	old := HTTPEntry{URL: "https://old", SavedAt: time.Now().UTC().Add(-48 * time.Hour)}
	b, _ := json.Marshal(old)
	if err := os.WriteFile(metaPath, b, 0o644); err != nil {
		t.Fatal(err)
	}

	l := &LLMCache{Dir: dir}
	key := KeyFrom("m", "p")
	if err := l.Save(ctx, key, []byte("s")); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-72 * time.Hour)
	if err := os.Chtimes(l.pathFor(key), past, past); err != nil {
		t.Fatal(err)
	}

	removed, err := PurgeByAge(dir, 24*time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if _, err := h.LoadBody(ctx, "https://old"); err == nil {
		t.Fatal("expected old body removed")
	}
	if _, err := h.LoadBody(ctx, "https://new"); err != nil {
		t.Fatalf("new entry should survive: %v", err)
	}
}

func TestPurgeByAge_MissingDir(t *testing.T) {
	n, err := PurgeByAge(filepath.Join(t.TempDir(), "absent"), time.Hour)
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ClearDir(dir); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty dir, got %d entries err=%v", len(entries), err)
	}
	if err := ClearDir("  "); err == nil {
		t.Fatal("expected error for empty dir")
	}
}
