package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tsumugi/internal/config"
	"tsumugi/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("DEEPSEEK_API_KEY", "")

	cfg := testsupport.NewConfig(t)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndata_dir = %q\nlog_dir = %q\n\n[deepseek]\napi_key = %q\nbase_url = %q\n\n[reader]\ndirectory_url = %q\npoll_interval_ms = %d\n\n[notifications]\nntfy_topic = %q\n",
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.DeepSeek.APIKey,
		cfg.DeepSeek.BaseURL,
		cfg.Reader.DirectoryURL,
		cfg.Reader.PollIntervalMS,
		cfg.Notifications.NtfyTopic,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// newNovelServer serves an ncode-shaped directory with two chapters. Hrefs
// are absolute so chapter fetches come back to this server.
func newNovelServer(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/n1234ab/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<div class="p-eplist">
<a class="p-eplist__subtitle" href="%s/n1234ab/1/">第1話　はじまり</a>
<a class="p-eplist__subtitle" href="%s/n1234ab/2/">第2話　旅立ち</a>
</div>`, server.URL, server.URL)
	})
	mux.HandleFunc("/n1234ab/1/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="p-novel__body"><p>こんにちは</p></div>`)
	})
	mux.HandleFunc("/n1234ab/2/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="p-novel__body"><p>さようなら</p></div>`)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// newTranslatorServer answers chat completions: keyword prompts get one
// JSONL term line, translation prompts get a fixed Chinese sentence.
func newTranslatorServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		content := "你好，世界。"
		if len(req.Messages) > 0 && strings.Contains(req.Messages[0].Content, "JSONL") {
			content = `{"japanese":"トウリ","chinese":"托莉"}`
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}); err != nil {
			t.Errorf("encode response: %v", err)
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}
