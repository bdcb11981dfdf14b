package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Browser user agent sent with every site request. Both syosetu frontends
// serve reduced markup to unknown clients.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/136.0.0.0 Safari/537.36 Edg/136.0.0.0"

// Chapter is one entry of a novel's directory listing.
type Chapter struct {
	// URL is the absolute address of the chapter page.
	URL string
	// Title is the chapter heading as shown in the directory.
	Title string
}

// Site fetches directory listings and chapter bodies from one novel host.
// Implementations return plain text with paragraphs separated by newlines.
type Site interface {
	FetchDirectory(ctx context.Context, directoryURL string) ([]Chapter, error)
	FetchChapter(ctx context.Context, chapterURL string) (string, error)
}

// ForURL returns the site adapter responsible for the given novel URL.
func ForURL(novelURL string, client *http.Client) (Site, error) {
	parsed, err := url.Parse(novelURL)
	if err != nil {
		return nil, fmt.Errorf("parse novel URL: %w", err)
	}
	host := strings.ToLower(parsed.Hostname())
	switch {
	case strings.HasSuffix(host, "ncode.syosetu.com"):
		return NewNcode(client), nil
	case strings.HasSuffix(host, "syosetu.org"):
		return NewHameln(client), nil
	}
	return nil, fmt.Errorf("unsupported novel site %q", host)
}

// NovelIDFromURL derives the stable novel identifier used to scope glossary
// and cache entries: the last path segment of the directory URL.
func NovelIDFromURL(novelURL string) string {
	trimmed := strings.TrimRight(novelURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if trimmed == "" {
		return "novel"
	}
	return trimmed
}

// NewHTTPClient builds the shared HTTP client for site requests: cookie jar
// enabled, standard redirect handling, the given overall timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Jar:     jar,
		Timeout: timeout,
	}
}

// joinTextNodes collects every descendant text node of the selection,
// trimming each and dropping empties, then joins them with sep. Chapter
// bodies use "\n" so each text run becomes one paragraph line.
func joinTextNodes(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				parts = append(parts, trimmed)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range sel.Nodes {
		walk(node)
	}
	return strings.Join(parts, sep)
}
