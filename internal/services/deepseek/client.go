package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tsumugi/internal/glossary"
)

const (
	defaultBaseURL     = "https://api.deepseek.com"
	defaultModel       = "deepseek-chat"
	defaultHTTPTimeout = 5 * time.Minute

	// Completion parameters the upstream API expects for literary
	// translation work.
	maxCompletionTokens = 8192
	requestTemperature  = 1.3
)

// Client wraps the DeepSeek chat completion API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option customizes the DeepSeek client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithModel overrides the default chat model.
func WithModel(model string) Option {
	return func(c *Client) {
		model = strings.TrimSpace(model)
		if model != "" {
			c.model = model
		}
	}
}

// NewClient constructs a DeepSeek API client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Translate renders the chapter text into Chinese. Known glossary pairs are
// prepended to the prompt so recurring names keep their established
// translations.
func (c *Client) Translate(ctx context.Context, text string, known map[string]string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("deepseek translate: text required")
	}
	return c.complete(ctx, "translate", translationPrompt(text, known))
}

// ExtractTerms asks the model for proper nouns appearing in the chapter that
// are not yet in the glossary. The response is JSONL, one pair per line;
// lines that fail to parse are dropped.
func (c *Client) ExtractTerms(ctx context.Context, original, translated string, known map[string]string) ([]glossary.TermPair, error) {
	content, err := c.complete(ctx, "extract", extractionPrompt(original, translated, known))
	if err != nil {
		return nil, err
	}
	return parseTermLines(content), nil
}

// complete performs one chat completion round trip and returns the trimmed
// message content.
func (c *Client) complete(ctx context.Context, op, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("deepseek %s: api key required", op)
	}
	request := chatCompletionRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   maxCompletionTokens,
		Temperature: requestTemperature,
		Stream:      false,
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("deepseek %s: encode request: %w", op, err)
	}
	endpoint, err := url.JoinPath(c.baseURL, "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("deepseek %s: build url: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("deepseek %s: request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek %s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("deepseek %s: read body: %w", op, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("deepseek %s: http %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("deepseek %s: decode response: %w", op, err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("deepseek %s: api error: %s", op, strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("deepseek %s: empty choices", op)
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("deepseek %s: empty content", op)
	}
	return content, nil
}

// parseTermLines decodes the JSONL term list. The whole answer sometimes
// arrives wrapped in a code fence despite the prompt, so that is stripped
// before splitting.
func parseTermLines(content string) []glossary.TermPair {
	var pairs []glossary.TermPair
	for _, line := range strings.Split(stripCodeFenceBlock(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var pair glossary.TermPair
		if err := json.Unmarshal([]byte(line), &pair); err != nil {
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
		body = strings.TrimLeft(body, " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
