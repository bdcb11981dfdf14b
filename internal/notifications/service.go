package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tsumugi/internal/config"
)

const userAgent = "Tsumugi/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyChapterReady(ctx context.Context, novelID, chapterTitle string) error
	NotifyChapterFailed(ctx context.Context, chapterTitle, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		chapterDone: cfg.Notifications.ChapterDone,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	chapterDone bool
	errors      bool
}

func (n *ntfyService) NotifyChapterReady(ctx context.Context, novelID, chapterTitle string) error {
	if !n.chapterDone {
		return nil
	}
	chapterTitle = strings.TrimSpace(chapterTitle)
	data := payload{
		title:   "Tsumugi - Chapter Ready",
		message: fmt.Sprintf("✅ Translated: %s (%s)", chapterTitle, strings.TrimSpace(novelID)),
		tags:    []string{"tsumugi", "chapter", "ready"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyChapterFailed(ctx context.Context, chapterTitle, reason string) error {
	if !n.errors {
		return nil
	}
	chapterTitle = strings.TrimSpace(chapterTitle)
	if reason = strings.TrimSpace(reason); reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Tsumugi - Chapter Failed",
		message:  fmt.Sprintf("❌ Translation failed: %s: %s", chapterTitle, reason),
		tags:     []string{"tsumugi", "chapter", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Tsumugi - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"tsumugi", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyChapterReady(context.Context, string, string) error  { return nil }
func (noopService) NotifyChapterFailed(context.Context, string, string) error { return nil }
func (noopService) TestNotification(context.Context) error                    { return nil }
