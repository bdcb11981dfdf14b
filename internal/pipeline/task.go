package pipeline

import (
	"context"
	"log/slog"
	"time"

	"tsumugi/internal/logging"
	"tsumugi/internal/services"
	"tsumugi/internal/source"
)

type task struct {
	chapter source.Chapter
	status  Status // guarded by the coordinator mutex
	started time.Time
}

// run executes the full pipeline for one chapter and records the terminal
// outcome for the next Poll.
func (c *Coordinator) run(ctx context.Context, t *task) {
	logger := logging.WithContext(ctx, c.logger).With(
		logging.String(logging.FieldNovelID, c.novelID),
		logging.String(logging.FieldChapter, t.chapter.URL))

	outcome := Outcome{
		NovelID:      c.novelID,
		ChapterURL:   t.chapter.URL,
		ChapterTitle: t.chapter.Title,
	}

	text, added, err := c.process(ctx, t, logger)
	outcome.Duration = time.Since(t.started)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Err = err
		logger.Error("chapter failed",
			logging.String(logging.FieldEventType, "chapter_failed"),
			logging.String("failure_kind", services.FailureKind(err)),
			logging.Error(err))
		if c.notifier != nil {
			if nerr := c.notifier.NotifyChapterFailed(ctx, t.chapter.Title, services.FailureDetail(err)); nerr != nil {
				logger.Warn("failure notification not delivered", logging.Error(nerr))
			}
		}
	} else {
		outcome.Status = StatusDone
		outcome.Text = text
		outcome.TermsAdded = added
		logger.Info("chapter translated",
			logging.String(logging.FieldEventType, "chapter_translated"),
			logging.Int("terms_added", added),
			logging.Duration("duration", outcome.Duration))
		if c.notifier != nil {
			if nerr := c.notifier.NotifyChapterReady(ctx, c.novelID, t.chapter.Title); nerr != nil {
				logger.Warn("ready notification not delivered", logging.Error(nerr))
			}
		}
	}

	c.mu.Lock()
	t.status = outcome.Status
	c.done = append(c.done, outcome)
	c.mu.Unlock()
}

// process walks the chapter through fetch, translate, extract, merge, and
// persist. Nothing is written to either store unless extraction succeeded.
func (c *Coordinator) process(ctx context.Context, t *task, logger *slog.Logger) (string, int, error) {
	raw, err := c.fetcher.FetchChapter(ctx, t.chapter.URL)
	if err != nil {
		return "", 0, services.Wrap(services.ErrFetch, string(StatusFetching), "source", "download chapter", err)
	}

	// One snapshot serves both service calls: a task's own discoveries never
	// influence its own translation.
	c.setStatus(t, StatusTranslating)
	known := c.glossary.Snapshot(c.novelID)
	logger.Debug("translating chapter",
		logging.Int("text_len", len(raw)),
		logging.Int("known_terms", len(known)))

	translated, err := c.translator.Translate(ctx, raw, known)
	if err != nil {
		return "", 0, services.Wrap(services.ErrTranslation, string(StatusTranslating), "deepseek", "translate chapter", err)
	}

	c.setStatus(t, StatusExtracting)
	pairs, err := c.translator.ExtractTerms(ctx, raw, translated, known)
	if err != nil {
		return "", 0, services.Wrap(services.ErrTranslation, string(StatusExtracting), "deepseek", "extract terms", err)
	}

	c.setStatus(t, StatusMerging)
	added, err := c.glossary.Merge(c.novelID, pairs)
	if err != nil {
		return "", 0, services.Wrap(services.ErrStorageWrite, string(StatusMerging), "glossary", "merge terms", err)
	}

	c.setStatus(t, StatusPersisting)
	if err := c.cache.Put(c.novelID, t.chapter.URL, translated); err != nil {
		return "", 0, services.Wrap(services.ErrStorageWrite, string(StatusPersisting), "cache", "store translation", err)
	}

	return translated, added, nil
}

func (c *Coordinator) setStatus(t *task, status Status) {
	c.mu.Lock()
	t.status = status
	c.mu.Unlock()
}
