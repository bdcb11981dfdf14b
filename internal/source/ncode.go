package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const ncodeBaseURL = "https://ncode.syosetu.com"

// Ncode scrapes ncode.syosetu.com.
type Ncode struct {
	client *http.Client
}

// NewNcode returns an adapter for ncode.syosetu.com. A nil client falls back
// to a default with cookie support.
func NewNcode(client *http.Client) *Ncode {
	if client == nil {
		client = NewHTTPClient(0)
	}
	return &Ncode{client: client}
}

// FetchDirectory downloads the directory page and returns its chapter links
// in page order.
func (n *Ncode) FetchDirectory(ctx context.Context, directoryURL string) ([]Chapter, error) {
	doc, err := n.get(ctx, directoryURL)
	if err != nil {
		return nil, fmt.Errorf("fetch directory: %w", err)
	}

	var chapters []Chapter
	doc.Find("a.p-eplist__subtitle").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		full := href
		if !strings.HasPrefix(href, "http") {
			full = ncodeBaseURL + href
		}
		chapters = append(chapters, Chapter{
			URL:   full,
			Title: joinTextNodes(sel, ""),
		})
	})
	return chapters, nil
}

// FetchChapter downloads a chapter page and returns the body text, one
// paragraph per line.
func (n *Ncode) FetchChapter(ctx context.Context, chapterURL string) (string, error) {
	doc, err := n.get(ctx, chapterURL)
	if err != nil {
		return "", fmt.Errorf("fetch chapter: %w", err)
	}

	body := doc.Find("div.p-novel__body").First()
	if body.Length() == 0 {
		return "", errors.New("body not found")
	}
	return joinTextNodes(body, "\n"), nil
}

func (n *Ncode) get(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,ja;q=0.8")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
