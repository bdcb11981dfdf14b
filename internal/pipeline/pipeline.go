package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"tsumugi/internal/chaptercache"
	"tsumugi/internal/glossary"
	"tsumugi/internal/logging"
	"tsumugi/internal/source"
)

// Status names the phase a pipeline task is in. On the success path a task
// moves through fetching, translating, extracting, merging, and persisting
// in that order before reaching done.
type Status string

const (
	StatusFetching    Status = "fetching"
	StatusTranslating Status = "translating"
	StatusExtracting  Status = "extracting"
	StatusMerging     Status = "merging"
	StatusPersisting  Status = "persisting"
	StatusDone        Status = "done"
	StatusFailed      Status = "failed"
)

// Fetcher is the content-source surface the pipeline needs.
type Fetcher interface {
	FetchChapter(ctx context.Context, chapterURL string) (string, error)
}

// Translator is the translation-service surface the pipeline needs.
type Translator interface {
	Translate(ctx context.Context, text string, known map[string]string) (string, error)
	ExtractTerms(ctx context.Context, original, translated string, known map[string]string) ([]glossary.TermPair, error)
}

// Notifier receives terminal task events. notifications.Service satisfies
// it; a nil Notifier disables delivery.
type Notifier interface {
	NotifyChapterReady(ctx context.Context, novelID, chapterTitle string) error
	NotifyChapterFailed(ctx context.Context, chapterTitle, reason string) error
}

// Ticket is the immediate answer to a Request.
type Ticket struct {
	NovelID    string
	ChapterURL string
	// Cached reports that the translation already existed. Text carries it
	// and no task was started.
	Cached bool
	Text   string
	// AlreadyRunning reports that a live task for this chapter exists and no
	// second one was started.
	AlreadyRunning bool
}

// Outcome is the terminal result of one task, delivered exactly once by
// Poll.
type Outcome struct {
	NovelID      string
	ChapterURL   string
	ChapterTitle string
	Status       Status // StatusDone or StatusFailed
	Text         string
	TermsAdded   int
	Err          error
	Duration     time.Duration
}

// TaskStatus describes one in-flight chapter for display.
type TaskStatus struct {
	ChapterURL string
	Title      string
	Status     Status
	Elapsed    time.Duration
}

// Options configures a Coordinator. Fetcher, Translator, Glossary, and
// Cache are required; Notifier and Logger are optional.
type Options struct {
	NovelID    string
	Fetcher    Fetcher
	Translator Translator
	Glossary   *glossary.Store
	Cache      *chaptercache.Cache
	Notifier   Notifier
	Logger     *slog.Logger
}

// Coordinator runs one translation pipeline per requested chapter. It keeps
// at most one live task per chapter URL, answers cached chapters without
// starting work, and hands terminal outcomes to the caller through Poll.
type Coordinator struct {
	novelID    string
	fetcher    Fetcher
	translator Translator
	glossary   *glossary.Store
	cache      *chaptercache.Cache
	notifier   Notifier
	logger     *slog.Logger

	mu       sync.Mutex
	inflight map[string]*task // keyed by chapter URL
	done     []Outcome
}

// New validates the options and builds a Coordinator.
func New(opts Options) (*Coordinator, error) {
	if opts.NovelID == "" {
		return nil, errors.New("pipeline: novel ID required")
	}
	if opts.Fetcher == nil {
		return nil, errors.New("pipeline: fetcher required")
	}
	if opts.Translator == nil {
		return nil, errors.New("pipeline: translator required")
	}
	if opts.Glossary == nil {
		return nil, errors.New("pipeline: glossary store required")
	}
	if opts.Cache == nil {
		return nil, errors.New("pipeline: translation cache required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		novelID:    opts.NovelID,
		fetcher:    opts.Fetcher,
		translator: opts.Translator,
		glossary:   opts.Glossary,
		cache:      opts.Cache,
		notifier:   opts.Notifier,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		inflight:   make(map[string]*task),
	}, nil
}

// Request asks for a chapter's translation. Cached chapters come back
// immediately and start no work; chapters already in flight are reported as
// such; everything else starts a background task whose outcome a later Poll
// delivers.
func (c *Coordinator) Request(ctx context.Context, chapter source.Chapter) Ticket {
	ticket := Ticket{NovelID: c.novelID, ChapterURL: chapter.URL}

	if text, found := c.cache.Get(c.novelID, chapter.URL); found {
		ticket.Cached = true
		ticket.Text = text
		return ticket
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, running := c.inflight[chapter.URL]; running {
		ticket.AlreadyRunning = true
		return ticket
	}

	t := &task{chapter: chapter, status: StatusFetching, started: time.Now()}
	c.inflight[chapter.URL] = t
	go c.run(ctx, t)

	c.logger.Debug("task started",
		logging.String(logging.FieldNovelID, c.novelID),
		logging.String(logging.FieldChapter, chapter.URL),
		logging.String(logging.FieldChapterTitle, chapter.Title))

	return ticket
}

// Poll drains finished outcomes in completion order. Each outcome is
// delivered exactly once, and its chapter leaves the in-flight set at the
// same moment, so re-requesting a failed chapter starts fresh work.
func (c *Coordinator) Poll() []Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.done) == 0 {
		return nil
	}
	outcomes := c.done
	c.done = nil
	for _, outcome := range outcomes {
		delete(c.inflight, outcome.ChapterURL)
	}
	return outcomes
}

// Snapshot lists in-flight chapters sorted by URL, including finished ones
// whose outcome has not been drained yet.
func (c *Coordinator) Snapshot() []TaskStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	statuses := make([]TaskStatus, 0, len(c.inflight))
	for chapterURL, t := range c.inflight {
		statuses = append(statuses, TaskStatus{
			ChapterURL: chapterURL,
			Title:      t.chapter.Title,
			Status:     t.status,
			Elapsed:    time.Since(t.started),
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].ChapterURL < statuses[j].ChapterURL
	})
	return statuses
}

// InFlight reports whether the chapter currently has a live task.
func (c *Coordinator) InFlight(chapterURL string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, running := c.inflight[chapterURL]
	return running
}
