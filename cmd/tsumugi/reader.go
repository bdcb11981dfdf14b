package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"tsumugi/internal/logging"
	"tsumugi/internal/pipeline"
	"tsumugi/internal/services"
	"tsumugi/internal/source"
	"tsumugi/internal/textutil"
)

// run fetches the chapter directory and drives the prompt loop until the
// user quits or input ends.
func (s *readerSession) run(cmd *cobra.Command) error {
	ctx := services.WithRequestID(cmd.Context(), uuid.NewString())
	out := cmd.OutOrStdout()
	s.colorize = shouldColorize(out)

	chapters, err := s.site.FetchDirectory(ctx, s.directoryURL)
	if err != nil {
		return fmt.Errorf("fetch chapter directory: %w", err)
	}
	if len(chapters) == 0 {
		return fmt.Errorf("no chapters found at %s", s.directoryURL)
	}
	s.chapters = chapters
	s.logger.Info("reader session started",
		logging.String(logging.FieldNovelID, s.novelID),
		logging.Int("chapters", len(chapters)))

	fmt.Fprintf(out, "%s: %d chapters, %d glossary terms\n", s.novelID, len(chapters), s.glossary.Count(s.novelID))
	s.printChapters(out)
	s.printHelp(out)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		s.announceCompletions(out)
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		quit, err := s.dispatch(ctx, out, line)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			fmt.Fprintln(out, paint(err.Error(), ansiRed, s.colorize))
			continue
		}
		if quit {
			break
		}
	}
	return scanner.Err()
}

func (s *readerSession) dispatch(ctx context.Context, out io.Writer, line string) (bool, error) {
	switch line {
	case "q", "quit", "exit":
		return true, nil
	case "l", "list":
		s.printChapters(out)
		return false, nil
	case "c":
		s.filter = ""
		s.printChapters(out)
		return false, nil
	case "h", "help", "?":
		s.printHelp(out)
		return false, nil
	}

	if strings.HasPrefix(line, "/") {
		s.filter = strings.TrimSpace(strings.TrimPrefix(line, "/"))
		s.printChapters(out)
		return false, nil
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "get":
		if len(fields) != 2 {
			return false, errors.New("usage: get N")
		}
		return false, s.readChapter(ctx, out, fields[1])
	case "pre":
		if len(fields) < 2 {
			return false, errors.New("usage: pre N [M ...]")
		}
		return false, s.prefetch(ctx, out, fields[1:])
	}
	if len(fields) == 1 {
		if _, convErr := strconv.Atoi(fields[0]); convErr == nil {
			return false, s.readChapter(ctx, out, fields[0])
		}
	}
	return false, fmt.Errorf("unknown command %q (try 'help')", line)
}

func (s *readerSession) chapterAt(arg string) (source.Chapter, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return source.Chapter{}, fmt.Errorf("chapter number expected, got %q", arg)
	}
	if n < 1 || n > len(s.chapters) {
		return source.Chapter{}, fmt.Errorf("chapter %d out of range (1-%d)", n, len(s.chapters))
	}
	return s.chapters[n-1], nil
}

func (s *readerSession) readChapter(ctx context.Context, out io.Writer, arg string) error {
	chapter, err := s.chapterAt(arg)
	if err != nil {
		return err
	}
	ticket := s.coord.Request(ctx, chapter)
	if ticket.Cached {
		s.printChapterText(out, chapter.Title, ticket.Text)
		return nil
	}
	if ticket.AlreadyRunning {
		fmt.Fprintf(out, "%s is already being translated; waiting for it\n", chapter.Title)
	}
	return s.await(ctx, out, chapter)
}

// await polls until the chapter reaches a terminal state, echoing stage
// changes and announcing unrelated completions as they drain.
func (s *readerSession) await(ctx context.Context, out io.Writer, chapter source.Chapter) error {
	ticker := time.NewTicker(s.cfg.PollInterval())
	defer ticker.Stop()

	var lastStatus pipeline.Status
	for {
		for _, outcome := range s.coord.Poll() {
			if outcome.ChapterURL != chapter.URL {
				s.announceOutcome(out, outcome)
				continue
			}
			if outcome.Err != nil {
				return fmt.Errorf("%s: %s", chapter.Title, services.FailureDetail(outcome.Err))
			}
			fmt.Fprintf(out, "%s %s translated in %s (%d new terms)\n",
				paint("✓", ansiGreen, s.colorize), chapter.Title,
				outcome.Duration.Round(100*time.Millisecond), outcome.TermsAdded)
			s.printChapterText(out, chapter.Title, outcome.Text)
			return nil
		}

		for _, st := range s.coord.Snapshot() {
			if st.ChapterURL == chapter.URL && st.Status != lastStatus {
				lastStatus = st.Status
				fmt.Fprintf(out, "  %s\n", paint(string(st.Status), ansiBlue, s.colorize))
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *readerSession) prefetch(ctx context.Context, out io.Writer, args []string) error {
	for _, arg := range args {
		chapter, err := s.chapterAt(arg)
		if err != nil {
			return err
		}
		ticket := s.coord.Request(ctx, chapter)
		switch {
		case ticket.Cached:
			fmt.Fprintf(out, "%s is already cached\n", chapter.Title)
		case ticket.AlreadyRunning:
			fmt.Fprintf(out, "%s is already in flight\n", chapter.Title)
		default:
			fmt.Fprintf(out, "queued %s\n", chapter.Title)
		}
	}
	return nil
}

// announceCompletions drains finished background work between prompts.
func (s *readerSession) announceCompletions(out io.Writer) {
	for _, outcome := range s.coord.Poll() {
		s.announceOutcome(out, outcome)
	}
}

func (s *readerSession) announceOutcome(out io.Writer, outcome pipeline.Outcome) {
	if outcome.Err != nil {
		fmt.Fprintf(out, "%s %s failed: %s\n",
			paint("✗", ansiRed, s.colorize), outcome.ChapterTitle, services.FailureDetail(outcome.Err))
		return
	}
	fmt.Fprintf(out, "%s %s ready (%d new terms, %s)\n",
		paint("✓", ansiGreen, s.colorize), outcome.ChapterTitle, outcome.TermsAdded,
		outcome.Duration.Round(100*time.Millisecond))
}

func (s *readerSession) printChapters(out io.Writer) {
	cached := s.cache.ListCached(s.novelID)
	rows := make([][]string, 0, len(s.chapters))
	for i, chapter := range s.chapters {
		number := strconv.Itoa(i + 1)
		if !s.matchesFilter(number, chapter.Title) {
			continue
		}
		marker := "[ ]"
		switch {
		case cached[chapter.URL]:
			marker = "[C]"
		case s.coord.InFlight(chapter.URL):
			marker = "[P]"
		}
		rows = append(rows, []string{number, marker, chapter.Title})
	}
	if len(rows) == 0 {
		fmt.Fprintf(out, "no chapters match %q ('c' clears the filter)\n", s.filter)
		return
	}
	fmt.Fprintln(out, renderTable([]string{"#", "", "Title"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft}))
	if s.filter != "" {
		fmt.Fprintf(out, "showing %d of %d chapters for %q\n", len(rows), len(s.chapters), s.filter)
	}
}

// matchesFilter folds width and case so a query like "10" also hits "１０".
func (s *readerSession) matchesFilter(number, title string) bool {
	if s.filter == "" {
		return true
	}
	return textutil.ContainsFold(title, s.filter) || number == textutil.FoldSearch(s.filter)
}

func (s *readerSession) printChapterText(out io.Writer, title, text string) {
	fmt.Fprintln(out)
	for _, line := range renderSectionHeader(title, s.colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, text)
	fmt.Fprintln(out)
}

func (s *readerSession) printHelp(out io.Writer) {
	fmt.Fprintln(out, "commands: N or 'get N' read a chapter, 'pre N [M ...]' translate ahead,")
	fmt.Fprintln(out, "          '/text' filter the list, 'c' clear filter, 'l' list, 'q' quit")
	fmt.Fprintln(out, "markers:  [C] cached, [P] translating")
}
