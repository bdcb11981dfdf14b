package main

import (
	"errors"
	"strings"

	"tsumugi/internal/config"
)

// directoryURLFrom picks the novel directory URL from the positional
// arguments, falling back to the configured default. Empty when neither is
// set.
func directoryURLFrom(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		if url := strings.TrimSpace(args[0]); url != "" {
			return url
		}
	}
	if cfg == nil {
		return ""
	}
	return strings.TrimSpace(cfg.Reader.DirectoryURL)
}

// requireDirectoryURL is directoryURLFrom for commands that cannot work
// without a novel.
func requireDirectoryURL(cfg *config.Config, args []string) (string, error) {
	url := directoryURLFrom(cfg, args)
	if url == "" {
		return "", errors.New("no novel URL given; pass one or set reader.directory_url in the config")
	}
	return url, nil
}
