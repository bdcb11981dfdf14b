package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const hamelnDirectoryHTML = `<!DOCTYPE html>
<html><body>
<div class="ss">
<table>
<tr><td><a href="./1.html">第一章　出発</a></td></tr>
<tr><td><a href="2.html">第二章</a></td></tr>
<tr><td><a href="https://syosetu.org/novel/344825/3.html">第三章</a></td></tr>
<tr><td><a href="./impression/">感想</a></td></tr>
</table>
</div>
</body></html>`

const hamelnChapterHTML = `<!DOCTYPE html>
<html><body>
<div id="honbun">
  <p>昔々あるところに</p>
  <p>おじいさんが住んでいた</p>
</div>
</body></html>`

func TestHamelnFetchDirectory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(hamelnDirectoryHTML))
	}))
	defer server.Close()

	directoryURL := server.URL + "/novel/344825/"
	site := NewHameln(server.Client())
	chapters, err := site.FetchDirectory(context.Background(), directoryURL)
	if err != nil {
		t.Fatalf("FetchDirectory returned error: %v", err)
	}

	// Only the .html anchors inside the story table are chapters.
	if len(chapters) != 3 {
		t.Fatalf("chapters = %+v, want 3", chapters)
	}
	if chapters[0].URL != directoryURL+"1.html" {
		t.Fatalf("first URL = %q", chapters[0].URL)
	}
	if chapters[1].URL != directoryURL+"2.html" {
		t.Fatalf("second URL = %q", chapters[1].URL)
	}
	if chapters[2].URL != "https://syosetu.org/novel/344825/3.html" {
		t.Fatalf("third URL = %q", chapters[2].URL)
	}
	if chapters[0].Title != "第一章　出発" {
		t.Fatalf("first title = %q", chapters[0].Title)
	}
}

func TestHamelnFetchChapterSendsBrowserHeaders(t *testing.T) {
	var headers http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		_, _ = w.Write([]byte(hamelnChapterHTML))
	}))
	defer server.Close()

	site := NewHameln(server.Client())
	text, err := site.FetchChapter(context.Background(), server.URL+"/novel/344825/1.html")
	if err != nil {
		t.Fatalf("FetchChapter returned error: %v", err)
	}
	if text != "昔々あるところに\nおじいさんが住んでいた" {
		t.Fatalf("text = %q", text)
	}

	wantHeaders := map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language":           "ja,en-US;q=0.9,en;q=0.8",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Upgrade-Insecure-Requests": "1",
	}
	for name, want := range wantHeaders {
		if got := headers.Get(name); got != want {
			t.Errorf("header %s = %q, want %q", name, got, want)
		}
	}
}

func TestHamelnFetchChapterBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	site := NewHameln(server.Client())
	_, err := site.FetchChapter(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unexpected status 403") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHamelnFetchChapterBodyMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><div class=\"ss\">目次だけ</div></body></html>"))
	}))
	defer server.Close()

	site := NewHameln(server.Client())
	_, err := site.FetchChapter(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "body not found") {
		t.Fatalf("unexpected error: %v", err)
	}
}
