package deepseek

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func completionResponse(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{
					"content": content,
				},
			},
		},
	}
}

func TestTranslateSendsPromptAndParsesContent(t *testing.T) {
	var captured chatCompletionRequest
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if err := json.NewEncoder(w).Encode(completionResponse("你好")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	got, err := client.Translate(context.Background(), "こんにちは", map[string]string{"さくら": "樱花"})
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got != "你好" {
		t.Fatalf("translation = %q, want %q", got, "你好")
	}

	if authHeader != "Bearer test-key" {
		t.Fatalf("unexpected Authorization header %q", authHeader)
	}
	if captured.Model != "deepseek-chat" {
		t.Fatalf("model = %q", captured.Model)
	}
	if captured.MaxTokens != 8192 || captured.Temperature != 1.3 || captured.Stream {
		t.Fatalf("unexpected completion parameters: %+v", captured)
	}
	if len(captured.Messages) != 1 || captured.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", captured.Messages)
	}
	prompt := captured.Messages[0].Content
	for _, fragment := range []string{"保持原文段落结构", "已知翻译对照：さくら:樱花", "こんにちは"} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
}

func TestTranslateWithoutKnownPairsOmitsPrefix(t *testing.T) {
	var prompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		prompt = req.Messages[0].Content
		_ = json.NewEncoder(w).Encode(completionResponse("你好"))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	if _, err := client.Translate(context.Background(), "こんにちは", nil); err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if strings.Contains(prompt, "已知翻译对照") {
		t.Fatalf("prompt should not carry known-pairs prefix:\n%s", prompt)
	}
}

func TestTranslateHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	_, err := client.Translate(context.Background(), "text", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "http 500") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTranslateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid api key"},
		})
	}))
	defer server.Close()

	client := NewClient("bad-key", WithBaseURL(server.URL))
	_, err := client.Translate(context.Background(), "text", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTranslateRequiresAPIKey(t *testing.T) {
	client := NewClient("")
	if _, err := client.Translate(context.Background(), "text", nil); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestExtractTermsParsesLinesAndSkipsMalformed(t *testing.T) {
	content := strings.Join([]string{
		`{"japanese":"トウリ","chinese":"托莉"}`,
		`not json at all`,
		``,
		`{"japanese":"ハルカ","chinese":"遥"}`,
	}, "\n")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completionResponse(content))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	pairs, err := client.ExtractTerms(context.Background(), "原文", "译文", nil)
	if err != nil {
		t.Fatalf("ExtractTerms returned error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs = %+v, want 2 entries", pairs)
	}
	if pairs[0].Source != "トウリ" || pairs[0].Target != "托莉" {
		t.Fatalf("unexpected first pair: %+v", pairs[0])
	}
	if pairs[1].Source != "ハルカ" || pairs[1].Target != "遥" {
		t.Fatalf("unexpected second pair: %+v", pairs[1])
	}
}

func TestExtractTermsStripsCodeFence(t *testing.T) {
	content := "```json\n{\"japanese\":\"トウリ\",\"chinese\":\"托莉\"}\n```"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(completionResponse(content))
	}))
	defer server.Close()

	client := NewClient("test-key", WithBaseURL(server.URL))
	pairs, err := client.ExtractTerms(context.Background(), "原文", "译文", nil)
	if err != nil {
		t.Fatalf("ExtractTerms returned error: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Source != "トウリ" {
		t.Fatalf("unexpected pairs: %+v", pairs)
	}
}

func TestExtractionPromptFillsPlaceholders(t *testing.T) {
	prompt := extractionPrompt("日文本文", "中文译文本", map[string]string{
		"さくら": "樱花",
		"トウリ": "托莉",
	})
	for _, fragment := range []string{
		`["さくら:樱花","トウリ:托莉"]`,
		"日文本文",
		"中文译文本",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Fatalf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
	for _, placeholder := range []string{"{existing_pairs}", "{japanese_text}", "{chinese_text}"} {
		if strings.Contains(prompt, placeholder) {
			t.Fatalf("placeholder %s left in prompt", placeholder)
		}
	}
}

func TestTranslationPromptPairOrderIsDeterministic(t *testing.T) {
	known := map[string]string{"b": "2", "a": "1", "c": "3"}
	first := translationPrompt("text", known)
	for i := 0; i < 10; i++ {
		if got := translationPrompt("text", known); got != first {
			t.Fatal("prompt varies between calls")
		}
	}
	if !strings.Contains(first, "已知翻译对照：a:1, b:2, c:3") {
		t.Fatalf("pairs not sorted:\n%s", first)
	}
}
