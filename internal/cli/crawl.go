package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/badmintongame/tournament-sync/internal/calendar"
	"github.com/badmintongame/tournament-sync/internal/filter"
	"github.com/badmintongame/tournament-sync/internal/logger"
	"github.com/badmintongame/tournament-sync/internal/scheduler"
	"github.com/badmintongame/tournament-sync/internal/scraper"
	"github.com/badmintongame/tournament-sync/internal/storage"
)

type crawlOptions struct {
	*globalOptions

	startID  int
	endID    int
	year     int
	month    int
	out      string
	delay    time.Duration
	jitter   time.Duration
	maxHits  int
	sort     string
	format   string
	ics      string
	schedule string

	// set by validate
	target    filter.Target
	sortOrder SortOrder
	outFormat OutputFormat

	// replaced in tests
	getter scraper.Getter
	now    func() time.Time
}

func newCrawlCmd(global *globalOptions) *cobra.Command {
	opts := &crawlOptions{globalOptions: global, now: time.Now}

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl detail pages and save tournaments in a target period to CSV",
		Example: `  tournament-sync crawl --end-id 5000 --year 2025 --month 3
  tournament-sync crawl --start-id 4000 --end-id 6000 --year 2025 --ics 2025.ics
  tournament-sync crawl --end-id 6000 --year 2025 --schedule "0 6 * * *"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return opts.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.startID, "start-id", 1, "First ga_id to visit")
	f.IntVar(&opts.endID, "end-id", 0, "Last ga_id to visit, inclusive (required)")
	f.IntVar(&opts.year, "year", 0, "Target year, e.g. 2025 (required)")
	f.IntVar(&opts.month, "month", 0, "Target month 1-12; 0 keeps the whole year")
	f.StringVar(&opts.out, "out", "", "Output CSV path (default badmintongame_<year>[_<month>].csv)")
	f.DurationVar(&opts.delay, "delay", scraper.DefaultDelay, "Base pause after each page")
	f.DurationVar(&opts.jitter, "jitter", scraper.DefaultJitter, "Random ± added to each pause")
	f.IntVar(&opts.maxHits, "max-hits", 0, "Stop after this many hits (0 = no limit)")
	f.StringVar(&opts.sort, "sort", string(SortByID), "Order of saved rows: id, date or title")
	f.StringVar(&opts.format, "format", string(FormatText), "Summary format: text or json")
	f.StringVar(&opts.ics, "ics", "", "Also write hits as an iCalendar file to this path")
	f.StringVar(&opts.schedule, "schedule", "", "Repeat the crawl on this cron spec until interrupted")

	cmd.MarkFlagRequired("end-id") // nolint:errcheck
	cmd.MarkFlagRequired("year")   // nolint:errcheck

	return cmd
}

func (o *crawlOptions) validate() error {
	if o.startID < 1 {
		return fmt.Errorf("--start-id must be at least 1, got %d", o.startID)
	}
	if o.endID < 1 {
		return fmt.Errorf("--end-id must be at least 1, got %d", o.endID)
	}
	if o.delay < 0 || o.jitter < 0 {
		return fmt.Errorf("--delay and --jitter must not be negative")
	}

	target, err := filter.NewTarget(o.year, o.month)
	if err != nil {
		return err
	}
	o.target = target

	if o.sortOrder, err = parseSortOrder(o.sort); err != nil {
		return err
	}
	if o.outFormat, err = parseFormat(o.format); err != nil {
		return err
	}

	if o.out == "" {
		o.out = target.DefaultOutputPath()
	}
	return nil
}

func (o *crawlOptions) run(ctx context.Context, stdout, stderr io.Writer) error {
	if o.getter == nil {
		o.getter = scraper.NewHTTPGetter(o.cfg.UserAgent, o.cfg.AcceptLanguage, o.cfg.Timeout)
	}

	if o.schedule == "" {
		return o.crawlOnce(ctx, stdout, stderr)
	}

	s, err := scheduler.New(o.schedule, func(ctx context.Context) error {
		logger.ResetMetrics()
		return o.crawlOnce(ctx, stdout, stderr)
	})
	if err != nil {
		return err
	}
	s.Run(ctx)
	return nil
}

// crawlOnce runs one full crawl and writes its outputs. Hits found before an
// interruption are still saved.
func (o *crawlOptions) crawlOnce(ctx context.Context, stdout, stderr io.Writer) error {
	runID := uuid.New().String()
	fields := logger.Fields{
		"run_id":   runID,
		"target":   o.target.String(),
		"start_id": o.startID,
		"end_id":   o.endID,
	}
	logger.Info("crawl started", fields)

	// Keep stdout clean for the JSON summary.
	progress := stdout
	if o.outFormat == FormatJSON {
		progress = stderr
	}

	c := scraper.New(o.getter, scraper.Options{
		BaseURL: o.cfg.BaseURL,
		Target:  o.target,
		Delay:   o.delay,
		Jitter:  o.jitter,
	})

	result, crawlErr := c.Collect(ctx, o.startID, o.endID, o.maxHits, func(out scraper.Outcome) {
		writeOutcome(progress, out, o.verbose)
	})
	sortListings(result.Hits, o.sortOrder)

	summary := &CrawlSummary{
		RunID:   runID,
		StartID: o.startID,
		EndID:   o.endID,
		Result:  result,
	}

	if len(result.Hits) == 0 {
		fmt.Fprintln(progress, "[SAVE] no items to save.")
	} else {
		if err := storage.SaveListings(o.out, result.Hits); err != nil {
			return fmt.Errorf("saving results: %w", err)
		}
		writeSaved(progress, o.out, result.Hits)
		summary.Output = o.out

		if o.ics != "" {
			if err := writeCalendar(o.ics, calendar.GenerateICS(result.Hits, o.now())); err != nil {
				return err
			}
			summary.Calendar = o.ics
		}
	}

	summary.FinishedAt = o.now().UTC()
	summary.Metrics = metricsIfVerbose(o.verbose)

	fields["hits"] = len(result.Hits)
	fields["scanned"] = result.Scanned
	if crawlErr != nil {
		logger.Warn("crawl interrupted", fields)
	} else {
		logger.Info("crawl finished", fields)
	}

	if err := WriteCrawlSummary(stdout, summary, o.outFormat); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if crawlErr != nil {
		return fmt.Errorf("crawl interrupted after %d pages: %w", result.Scanned, crawlErr)
	}
	return nil
}

func writeCalendar(path, ics string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating calendar directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(ics), 0644); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}
