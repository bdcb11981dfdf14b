package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. Settings that only matter for
// translation work (the DeepSeek API key) are checked separately by
// ValidateDeepSeek so read-only commands keep working without credentials.
func (c *Config) Validate() error {
	if err := ensurePositiveMap(map[string]int{
		"deepseek.timeout_seconds":      c.DeepSeek.TimeoutSeconds,
		"source.timeout_seconds":        c.Source.TimeoutSeconds,
		"reader.poll_interval_ms":       c.Reader.PollIntervalMS,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	}); err != nil {
		return err
	}
	if err := c.validateDeepSeekBaseURL(); err != nil {
		return err
	}
	if err := c.validateReader(); err != nil {
		return err
	}
	return nil
}

// ValidateDeepSeek ensures translation credentials are present. Called before
// any pipeline work is started.
func (c *Config) ValidateDeepSeek() error {
	if c.DeepSeek.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/tsumugi/config.toml"
		}
		return fmt.Errorf("deepseek.api_key is required. Set DEEPSEEK_API_KEY env var or edit %s (create with 'tsumugi config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateDeepSeekBaseURL() error {
	parsed, err := url.Parse(c.DeepSeek.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("deepseek.base_url must be an absolute URL, got %q", c.DeepSeek.BaseURL)
	}
	return nil
}

func (c *Config) validateReader() error {
	if c.Reader.DirectoryURL == "" {
		return nil
	}
	parsed, err := url.Parse(c.Reader.DirectoryURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("reader.directory_url must be an absolute URL when set")
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return errors.New("reader.directory_url must use http or https")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
