package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"tsumugi/internal/chaptercache"
	"tsumugi/internal/config"
	"tsumugi/internal/glossary"
	"tsumugi/internal/logging"
	"tsumugi/internal/notifications"
	"tsumugi/internal/pipeline"
	"tsumugi/internal/services/deepseek"
	"tsumugi/internal/source"
)

func newReadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "read [novel-url]",
		Short: "Read a novel interactively, translating chapters on demand",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg == nil {
				return errors.New("configuration unavailable")
			}
			if err := cfg.ValidateDeepSeek(); err != nil {
				return err
			}
			directoryURL, err := requireDirectoryURL(cfg, args)
			if err != nil {
				return err
			}

			// The stores assume a single writer process.
			lock := flock.New(cfg.LockPath())
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire reader lock: %w", err)
			}
			if !ok {
				return errors.New("another tsumugi reader is already running")
			}
			defer func() { _ = lock.Unlock() }()

			session, err := newReaderSession(cfg, directoryURL)
			if err != nil {
				return err
			}
			return session.run(cmd)
		},
	}
}

// readerSession owns every moving part of one interactive run: the site
// client, both stores, and the translation coordinator.
type readerSession struct {
	cfg          *config.Config
	logger       *slog.Logger
	directoryURL string
	novelID      string
	site         source.Site
	cache        *chaptercache.Cache
	glossary     *glossary.Store
	coord        *pipeline.Coordinator

	chapters []source.Chapter
	filter   string
	colorize bool
}

func newReaderSession(cfg *config.Config, directoryURL string) (*readerSession, error) {
	// Interactive rendering owns stdout, so logs go to the file only.
	logger, err := logging.NewFileOnly(cfg)
	if err != nil {
		return nil, err
	}

	site, err := source.ForURL(directoryURL, source.NewHTTPClient(cfg.SourceTimeout()))
	if err != nil {
		return nil, err
	}
	novelID := source.NovelIDFromURL(directoryURL)

	glossaryStore := glossary.NewStore(cfg.GlossaryPath(), logger)
	cache := chaptercache.NewCache(cfg.CachePath(), logger)

	translator := deepseek.NewClient(cfg.DeepSeek.APIKey,
		deepseek.WithBaseURL(cfg.DeepSeek.BaseURL),
		deepseek.WithModel(cfg.DeepSeek.Model),
		deepseek.WithHTTPClient(&http.Client{Timeout: cfg.DeepSeekTimeout()}))

	coord, err := pipeline.New(pipeline.Options{
		NovelID:    novelID,
		Fetcher:    site,
		Translator: translator,
		Glossary:   glossaryStore,
		Cache:      cache,
		Notifier:   notifications.NewService(cfg),
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	return &readerSession{
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "reader"),
		directoryURL: directoryURL,
		novelID:      novelID,
		site:         site,
		cache:        cache,
		glossary:     glossaryStore,
		coord:        coord,
	}, nil
}
