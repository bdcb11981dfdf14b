package testsupport

import (
	"path/filepath"
	"testing"

	"tsumugi/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.DeepSeek.APIKey = "test"
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithAPIKey sets the DeepSeek API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.DeepSeek.APIKey = key
	}
}

// WithDirectoryURL sets the reader's default novel directory URL.
func WithDirectoryURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Reader.DirectoryURL = url
	}
}

// WithPollInterval overrides the reader poll interval in milliseconds.
func WithPollInterval(ms int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Reader.PollIntervalMS = ms
	}
}
