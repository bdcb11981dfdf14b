package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Hameln scrapes syosetu.org. The site rejects requests that do not look
// like a regular browser navigation, so chapter fetches carry the full
// header set a browser would send.
type Hameln struct {
	client *http.Client
}

// NewHameln returns an adapter for syosetu.org. A nil client falls back to a
// default with cookie support.
func NewHameln(client *http.Client) *Hameln {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &Hameln{client: client}
}

// FetchDirectory downloads the directory page and returns its chapter links
// in page order. Chapter links are the .html anchors inside the story table;
// relative ones resolve against the directory URL.
func (h *Hameln) FetchDirectory(ctx context.Context, directoryURL string) ([]Chapter, error) {
	doc, err := h.get(ctx, directoryURL, false)
	if err != nil {
		return nil, fmt.Errorf("fetch directory: %w", err)
	}

	base := strings.TrimRight(directoryURL, "/") + "/"
	var chapters []Chapter
	doc.Find("div.ss table a[href$='.html']").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		full := href
		if !strings.HasPrefix(href, "http") {
			full = base + strings.TrimPrefix(href, "./")
		}
		chapters = append(chapters, Chapter{
			URL:   full,
			Title: strings.TrimSpace(sel.Text()),
		})
	})
	return chapters, nil
}

// FetchChapter downloads a chapter page and returns the body text, one
// paragraph per line.
func (h *Hameln) FetchChapter(ctx context.Context, chapterURL string) (string, error) {
	doc, err := h.get(ctx, chapterURL, true)
	if err != nil {
		return "", fmt.Errorf("fetch chapter: %w", err)
	}

	body := doc.Find("div#honbun").First()
	if body.Length() == 0 {
		return "", errors.New("body not found")
	}
	return joinTextNodes(body, "\n"), nil
}

func (h *Hameln) get(ctx context.Context, pageURL string, browserHeaders bool) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if browserHeaders {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")
		req.Header.Set("Sec-Fetch-Dest", "document")
		req.Header.Set("Sec-Fetch-Mode", "navigate")
		req.Header.Set("Sec-Fetch-Site", "none")
		req.Header.Set("Upgrade-Insecure-Requests", "1")
	} else {
		req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
