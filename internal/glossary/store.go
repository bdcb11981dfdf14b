package glossary

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"

	"tsumugi/internal/fileutil"
	"tsumugi/internal/logging"
	"tsumugi/internal/textutil"
)

// TermPair is a proper-noun mapping discovered during translation. The JSON
// field names match the line format the extraction prompt asks the model to
// emit, so responses unmarshal directly into this type.
type TermPair struct {
	Source string `json:"japanese"`
	Target string `json:"chinese"`
}

// Store provides thread-safe access to the glossary file. Terms are grouped
// by novel ID so every chapter of a novel shares one growing vocabulary.
type Store struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	entries map[string]map[string]string // novel ID -> source term -> target term
}

// NewStore opens the glossary at path, loading any existing entries. A
// missing file is a fresh start; an unreadable or corrupt file is logged and
// the store starts empty so translation can proceed.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "glossary")

	s := &Store{
		path:    path,
		logger:  logger,
		entries: make(map[string]map[string]string),
	}

	if err := s.load(); err != nil {
		logger.Warn("failed to load glossary",
			logging.String(logging.FieldEventType, "glossary_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "glossary will start empty"),
			logging.String(logging.FieldImpact, "previously learned terms will be rediscovered"))
	}

	return s
}

// Snapshot returns a copy of the terms known for the given novel. The copy is
// safe to read while other chapters merge new discoveries.
func (s *Store) Snapshot(novelID string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := make(map[string]string, len(s.entries[novelID]))
	for source, target := range s.entries[novelID] {
		terms[source] = target
	}
	return terms
}

// Merge records the given pairs for a novel, keeping the existing translation
// whenever a source term is already known. The file is rewritten only when at
// least one new term was added. Returns the number of terms added.
func (s *Store) Merge(novelID string, pairs []TermPair) (int, error) {
	if novelID == "" {
		return 0, errors.New("novel ID cannot be empty")
	}
	if len(pairs) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	terms := s.entries[novelID]
	if terms == nil {
		terms = make(map[string]string)
	}

	added := 0
	for _, pair := range pairs {
		source := textutil.NormalizeTerm(pair.Source)
		target := textutil.NormalizeTerm(pair.Target)
		if source == "" || target == "" {
			continue
		}
		if _, exists := terms[source]; exists {
			continue
		}
		terms[source] = target
		added++
	}

	if added == 0 {
		return 0, nil
	}
	s.entries[novelID] = terms

	if err := s.save(); err != nil {
		return added, fmt.Errorf("persist glossary: %w", err)
	}

	s.logger.Debug("merged glossary terms",
		logging.String(logging.FieldNovelID, novelID),
		logging.Int("added", added),
		logging.Int("total", len(terms)))

	return added, nil
}

// Count returns the number of terms known for a novel.
func (s *Store) Count(novelID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries[novelID])
}

// Novels returns the IDs of all novels with at least one term, sorted.
func (s *Store) Novels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.entries))
	for id, terms := range s.entries {
		if len(terms) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// load reads the glossary from disk into memory.
func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read glossary file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var entries map[string]map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse glossary file: %w", err)
	}

	s.entries = make(map[string]map[string]string, len(entries))
	for novelID, terms := range entries {
		if novelID == "" || len(terms) == 0 {
			continue
		}
		s.entries[novelID] = terms
	}

	total := 0
	for _, terms := range s.entries {
		total += len(terms)
	}
	s.logger.Debug("loaded glossary",
		logging.Int("novel_count", len(s.entries)),
		logging.Int("term_count", total),
		logging.String("path", s.path))

	return nil
}

// save writes the glossary to disk atomically. encoding/json sorts map keys,
// so output is deterministic.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal glossary: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write glossary file: %w", err)
	}
	return nil
}
