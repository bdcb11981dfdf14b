package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const ncodeDirectoryHTML = `<!DOCTYPE html>
<html><body>
<div class="p-eplist">
  <div class="p-eplist__sublist">
    <a href="/n4811fs/1/" class="p-eplist__subtitle">
      第1話 <span>はじまり</span>
    </a>
  </div>
  <div class="p-eplist__sublist">
    <a href="https://ncode.syosetu.com/n4811fs/2/" class="p-eplist__subtitle">第2話</a>
  </div>
  <div class="p-eplist__sublist">
    <a class="p-eplist__subtitle">リンクなし</a>
  </div>
</div>
</body></html>`

const ncodeChapterHTML = `<!DOCTYPE html>
<html><body>
<div class="p-novel__body">
  <p id="L1">こんにちは</p>
  <p id="L2">今日は<ruby>良<rt>よ</rt></ruby>い天気だ</p>
</div>
<div class="p-novel__body">
  <p>あとがき</p>
</div>
</body></html>`

func TestNcodeFetchDirectory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept-Language"); got != "en-US,en;q=0.9,ja;q=0.8" {
			t.Errorf("Accept-Language = %q", got)
		}
		if !strings.Contains(r.Header.Get("User-Agent"), "Mozilla/5.0") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		_, _ = w.Write([]byte(ncodeDirectoryHTML))
	}))
	defer server.Close()

	site := NewNcode(server.Client())
	chapters, err := site.FetchDirectory(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchDirectory returned error: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("chapters = %+v, want 2", chapters)
	}

	// Relative links resolve against the canonical host, absolute ones pass
	// through unchanged.
	if chapters[0].URL != "https://ncode.syosetu.com/n4811fs/1/" {
		t.Fatalf("first URL = %q", chapters[0].URL)
	}
	if chapters[1].URL != "https://ncode.syosetu.com/n4811fs/2/" {
		t.Fatalf("second URL = %q", chapters[1].URL)
	}

	// Title text nodes are trimmed individually and joined without spaces.
	if chapters[0].Title != "第1話はじまり" {
		t.Fatalf("first title = %q", chapters[0].Title)
	}
	if chapters[1].Title != "第2話" {
		t.Fatalf("second title = %q", chapters[1].Title)
	}
}

func TestNcodeFetchChapter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(ncodeChapterHTML))
	}))
	defer server.Close()

	site := NewNcode(server.Client())
	text, err := site.FetchChapter(context.Background(), server.URL+"/n4811fs/1/")
	if err != nil {
		t.Fatalf("FetchChapter returned error: %v", err)
	}

	// Only the first body div counts; each text run becomes one line.
	want := "こんにちは\n今日は\n良\nよ\nい天気だ"
	if text != want {
		t.Fatalf("text = %q, want %q", text, want)
	}
	if strings.Contains(text, "あとがき") {
		t.Fatal("second body div leaked into chapter text")
	}
}

func TestNcodeFetchChapterBodyMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>404 page</p></body></html>"))
	}))
	defer server.Close()

	site := NewNcode(server.Client())
	_, err := site.FetchChapter(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "body not found") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNcodeFetchChapterBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	site := NewNcode(server.Client())
	_, err := site.FetchChapter(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unexpected status 404") {
		t.Fatalf("unexpected error: %v", err)
	}
}
