package main

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"tsumugi/internal/glossary"
	"tsumugi/internal/logging"
	"tsumugi/internal/source"
)

func newGlossaryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "glossary [novel-url]",
		Short: "Show the learned term translations for a novel",
		Long: `Show the learned term translations for a novel.

Without a URL (and with no reader.directory_url configured) the command
lists every novel the glossary knows about instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.configValue()
			if cfg == nil {
				return errors.New("configuration unavailable")
			}
			logger, err := logging.NewFileOnly(cfg)
			if err != nil {
				return err
			}
			store := glossary.NewStore(cfg.GlossaryPath(), logger)
			out := cmd.OutOrStdout()

			directoryURL := directoryURLFrom(cfg, args)
			if directoryURL == "" {
				novels := store.Novels()
				if len(novels) == 0 {
					fmt.Fprintln(out, "Glossary is empty")
					return nil
				}
				rows := make([][]string, 0, len(novels))
				for _, novelID := range novels {
					rows = append(rows, []string{novelID, strconv.Itoa(store.Count(novelID))})
				}
				fmt.Fprintln(out, renderTable([]string{"Novel", "Terms"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			}

			novelID := source.NovelIDFromURL(directoryURL)
			terms := store.Snapshot(novelID)
			if len(terms) == 0 {
				fmt.Fprintf(out, "No terms recorded for %s yet\n", novelID)
				return nil
			}

			sources := make([]string, 0, len(terms))
			for term := range terms {
				sources = append(sources, term)
			}
			sort.Strings(sources)

			rows := make([][]string, 0, len(sources))
			for _, term := range sources {
				rows = append(rows, []string{term, terms[term]})
			}
			fmt.Fprintln(out, renderTable([]string{"Term", "Translation"}, rows, nil))
			fmt.Fprintf(out, "%s: %d terms\n", novelID, len(rows))
			return nil
		},
	}
}
