package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"tsumugi/internal/chaptercache"
	"tsumugi/internal/logging"
	"tsumugi/internal/source"
)

func newChaptersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chapters [novel-url]",
		Short: "List a novel's chapters and their cache state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg == nil {
				return errors.New("configuration unavailable")
			}
			directoryURL, err := requireDirectoryURL(cfg, args)
			if err != nil {
				return err
			}
			logger, err := logging.NewFileOnly(cfg)
			if err != nil {
				return err
			}

			site, err := source.ForURL(directoryURL, source.NewHTTPClient(cfg.SourceTimeout()))
			if err != nil {
				return err
			}
			cache := chaptercache.NewCache(cfg.CachePath(), logger)

			return renderChapterListing(cmd.Context(), cmd.OutOrStdout(), site, directoryURL, source.NovelIDFromURL(directoryURL), cache)
		},
	}
}

func renderChapterListing(ctx context.Context, out io.Writer, site source.Site, directoryURL, novelID string, cache *chaptercache.Cache) error {
	chapters, err := site.FetchDirectory(ctx, directoryURL)
	if err != nil {
		return fmt.Errorf("fetch chapter directory: %w", err)
	}
	if len(chapters) == 0 {
		return fmt.Errorf("no chapters found at %s", directoryURL)
	}

	cached := cache.ListCached(novelID)

	rows := make([][]string, 0, len(chapters))
	translated := 0
	for i, chapter := range chapters {
		marker := "[ ]"
		if cached[chapter.URL] {
			marker = "[C]"
			translated++
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), marker, chapter.Title})
	}

	fmt.Fprintln(out, renderTable([]string{"#", "", "Title"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
	fmt.Fprintf(out, "%s: %d chapters, %d translated\n", novelID, len(chapters), translated)
	return nil
}
