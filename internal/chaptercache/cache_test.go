package chaptercache_test

import (
	"os"
	"path/filepath"
	"testing"

	"tsumugi/internal/chaptercache"
	"tsumugi/internal/logging"
)

func newCache(t *testing.T) (*chaptercache.Cache, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "translations.json")
	return chaptercache.NewCache(path, logging.NewNop()), path
}

func TestPutAndGet(t *testing.T) {
	cache, path := newCache(t)

	const url = "https://ncode.syosetu.com/n4811fs/1/"
	if err := cache.Put("n4811fs", url, "你好"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	text, found := cache.Get("n4811fs", url)
	if !found {
		t.Fatal("expected cached entry")
	}
	if text != "你好" {
		t.Fatalf("text = %q, want %q", text, "你好")
	}

	// Persisted entries survive a reopen.
	reopened := chaptercache.NewCache(path, logging.NewNop())
	if text, found := reopened.Get("n4811fs", url); !found || text != "你好" {
		t.Fatalf("reopened cache: found=%v text=%q", found, text)
	}
}

func TestGetMissing(t *testing.T) {
	cache, _ := newCache(t)
	if _, found := cache.Get("n4811fs", "https://example.com/1/"); found {
		t.Fatal("expected miss for unknown chapter")
	}
}

func TestPutReplacesExisting(t *testing.T) {
	cache, _ := newCache(t)

	const url = "https://ncode.syosetu.com/n4811fs/1/"
	if err := cache.Put("n4811fs", url, "first"); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put("n4811fs", url, "second"); err != nil {
		t.Fatal(err)
	}
	if text, _ := cache.Get("n4811fs", url); text != "second" {
		t.Fatalf("text = %q, want %q", text, "second")
	}
}

func TestListCachedScopedToNovel(t *testing.T) {
	cache, _ := newCache(t)

	if err := cache.Put("a", "https://example.com/a/1/", "one"); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put("a", "https://example.com/a/2/", "two"); err != nil {
		t.Fatal(err)
	}
	if err := cache.Put("b", "https://example.com/b/1/", "other"); err != nil {
		t.Fatal(err)
	}

	cached := cache.ListCached("a")
	if len(cached) != 2 {
		t.Fatalf("cached = %v, want 2 entries", cached)
	}
	if !cached["https://example.com/a/1/"] || !cached["https://example.com/a/2/"] {
		t.Fatalf("missing expected chapters: %v", cached)
	}
	if cached["https://example.com/b/1/"] {
		t.Fatal("entry from another novel leaked into listing")
	}
	if count := cache.Count("b"); count != 1 {
		t.Fatalf("Count(b) = %d, want 1", count)
	}
}

func TestPutRequiresKeys(t *testing.T) {
	cache, _ := newCache(t)
	if err := cache.Put("", "https://example.com/1/", "x"); err == nil {
		t.Fatal("expected error for empty novel ID")
	}
	if err := cache.Put("novel", "  ", "x"); err == nil {
		t.Fatal("expected error for empty chapter URL")
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "translations.json")
	if err := os.WriteFile(path, []byte("]["), 0o644); err != nil {
		t.Fatal(err)
	}

	cache := chaptercache.NewCache(path, logging.NewNop())
	if count := cache.Count("novel"); count != 0 {
		t.Fatalf("expected empty cache, got %d entries", count)
	}
	if err := cache.Put("novel", "https://example.com/1/", "text"); err != nil {
		t.Fatalf("Put after corrupt load failed: %v", err)
	}
}

func TestPutLeavesNoTempFile(t *testing.T) {
	cache, path := newCache(t)
	if err := cache.Put("novel", "https://example.com/1/", "text"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind after put")
	}
}
