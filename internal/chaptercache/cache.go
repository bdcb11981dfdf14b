package chaptercache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"tsumugi/internal/fileutil"
	"tsumugi/internal/logging"
)

// Cache provides thread-safe access to finished chapter translations, keyed
// by novel ID and chapter URL. Put replaces any existing text; callers that
// want write-once behavior check Get before starting work.
type Cache struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]map[string]string // novel ID -> chapter URL -> translated text
}

// NewCache opens the translation cache at path, loading any existing
// entries. A missing file is a fresh start; an unreadable or corrupt file is
// logged and the cache starts empty.
func NewCache(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "chaptercache")

	c := &Cache{
		path:    path,
		logger:  logger,
		entries: make(map[string]map[string]string),
	}

	if err := c.load(); err != nil {
		logger.Warn("failed to load translation cache",
			logging.String(logging.FieldEventType, "chaptercache_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "cache will start empty"),
			logging.String(logging.FieldImpact, "previously translated chapters will be re-translated on request"))
	}

	return c
}

// Get returns the cached translation for a chapter if present.
func (c *Cache) Get(novelID, chapterURL string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	text, found := c.entries[novelID][chapterURL]
	return text, found
}

// Put stores the translation for a chapter and persists to disk.
func (c *Cache) Put(novelID, chapterURL, text string) error {
	if strings.TrimSpace(novelID) == "" {
		return errors.New("novel ID cannot be empty")
	}
	if strings.TrimSpace(chapterURL) == "" {
		return errors.New("chapter URL cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	chapters := c.entries[novelID]
	if chapters == nil {
		chapters = make(map[string]string)
		c.entries[novelID] = chapters
	}
	chapters[chapterURL] = text

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cached chapter translation",
		logging.String(logging.FieldNovelID, novelID),
		logging.String(logging.FieldChapter, chapterURL),
		logging.Int("text_len", len(text)))

	return nil
}

// ListCached returns the set of chapter URLs with a cached translation for
// the given novel. The presentation layer uses it to mark chapters that are
// already readable.
func (c *Cache) ListCached(novelID string) map[string]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached := make(map[string]bool, len(c.entries[novelID]))
	for chapterURL := range c.entries[novelID] {
		cached[chapterURL] = true
	}
	return cached
}

// Count returns the number of cached chapters for a novel.
func (c *Cache) Count(novelID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries[novelID])
}

// load reads the cache from disk into memory.
func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read cache file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var entries map[string]map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	c.entries = make(map[string]map[string]string, len(entries))
	for novelID, chapters := range entries {
		if novelID == "" || len(chapters) == 0 {
			continue
		}
		c.entries[novelID] = chapters
	}

	total := 0
	for _, chapters := range c.entries {
		total += len(chapters)
	}
	c.logger.Debug("loaded translation cache",
		logging.Int("novel_count", len(c.entries)),
		logging.Int("chapter_count", total),
		logging.String("path", c.path))

	return nil
}

// save writes the cache to disk atomically.
func (c *Cache) save() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := fileutil.WriteAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}
