package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/badmintongame/tournament-sync/internal/importer"
	"github.com/badmintongame/tournament-sync/internal/logger"
	"github.com/badmintongame/tournament-sync/internal/scraper"
	"github.com/badmintongame/tournament-sync/internal/tournament"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatText, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
}

// CrawlSummary is the final report of a crawl run.
type CrawlSummary struct {
	RunID      string                 `json:"run_id"`
	FinishedAt time.Time              `json:"finished_at"`
	StartID    int                    `json:"start_id"`
	EndID      int                    `json:"end_id"`
	Output     string                 `json:"output,omitempty"`
	Calendar   string                 `json:"calendar,omitempty"`
	Result     *scraper.CrawlResult   `json:"result"`
	Metrics    map[string]interface{} `json:"metrics,omitempty"`
}

// ImportSummary is the final report of an import run.
type ImportSummary struct {
	RunID      string                 `json:"run_id"`
	FinishedAt time.Time              `json:"finished_at"`
	Source     string                 `json:"source"`
	DryRun     bool                   `json:"dry_run"`
	Result     importer.Result        `json:"result"`
	Error      string                 `json:"error,omitempty"`
	Metrics    map[string]interface{} `json:"metrics,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// WriteCrawlSummary writes the crawl report in the given format.
func WriteCrawlSummary(w io.Writer, s *CrawlSummary, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, s)
	}

	r := s.Result
	fmt.Fprintf(w, "\nTarget %s, ga_id %d..%d: scanned %d, hits %d, filtered %d, absent %d\n",
		r.Target, s.StartID, s.EndID, r.Scanned, len(r.Hits), r.Filtered, r.Absent)
	if s.Calendar != "" {
		fmt.Fprintf(w, "Calendar: %s\n", s.Calendar)
	}
	writeMetrics(w, s.Metrics)
	return nil
}

// WriteImportSummary writes the import report in the given format.
func WriteImportSummary(w io.Writer, s *ImportSummary, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, s)
	}

	r := s.Result
	if s.DryRun {
		fmt.Fprintf(w, "\n[DONE] previewed: %d, skipped: %d (dry run, nothing inserted)\n", r.Previewed, r.Skipped)
	} else {
		fmt.Fprintf(w, "\n[DONE] inserted: %d, skipped: %d\n", r.Inserted, r.Skipped)
	}
	writeMetrics(w, s.Metrics)
	return nil
}

func writeMetrics(w io.Writer, metrics map[string]interface{}) {
	if len(metrics) == 0 {
		return
	}
	fmt.Fprintln(w, "\nMetrics:")
	if counters, ok := metrics["counters"].(map[string]int64); ok {
		for _, name := range sortedKeys(counters) {
			fmt.Fprintf(w, "  %-18s %d\n", name, counters[name])
		}
	}
	if timings, ok := metrics["timings"].(map[string]map[string]interface{}); ok {
		for _, name := range sortedKeys(timings) {
			t := timings[name]
			fmt.Fprintf(w, "  %-18s count=%v avg=%v min=%v max=%v\n", name, t["count"], t["average"], t["min"], t["max"])
		}
	}
}

// writeOutcome prints the progress line for one crawl outcome. Absent and
// filtered pages are only shown when verbose.
func writeOutcome(w io.Writer, out scraper.Outcome, verbose bool) {
	switch out.Kind {
	case scraper.Hit:
		fmt.Fprintf(w, "[HIT] ga_id=%d period=%s title=%s\n", out.ID, out.Listing.EventPeriod, out.Listing.Title)
	case scraper.FilteredOut:
		if verbose {
			fmt.Fprintf(w, "[FILTERED] ga_id=%d %s\n", out.ID, out.Reason)
		}
	case scraper.Absent:
		if verbose {
			fmt.Fprintf(w, "[ABSENT] ga_id=%d %s\n", out.ID, out.Reason)
		}
	}
}

// writeRowEvent prints the progress line for one imported row.
func writeRowEvent(w io.Writer, ev importer.RowEvent) {
	rec := ev.Record
	switch ev.Action {
	case importer.Skipped:
		fmt.Fprintf(w, "[SKIP] line %d: %s: ga_id=%s, name=%s\n", ev.Line, ev.Reason, gaIDText(ev.GaID), rec.Name)
	case importer.Previewed:
		fmt.Fprintf(w, "[PREVIEW] %s\n", rec.Name)
		fmt.Fprintf(w, "          period: %s ~ %s\n", dateText(rec.StartDate), dateText(rec.EndDate))
		fmt.Fprintf(w, "          apply:  %s ~ %s\n", dateText(rec.ApplyStartDate), dateText(rec.ApplyEndDate))
		fmt.Fprintf(w, "          region: %s, location: %s\n", orNone(rec.Region), orNone(rec.Location))
		fmt.Fprintln(w)
	case importer.Inserted:
		fmt.Fprintf(w, "[INSERT] %s\n", rec.Name)
	}
}

func writeSaved(w io.Writer, path string, listings []tournament.Listing) {
	fmt.Fprintf(w, "[SAVE] %s (count=%d)\n", path, len(listings))
}

func dateText(t time.Time) string {
	if t.IsZero() {
		return "None"
	}
	return t.Format(time.DateOnly)
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func gaIDText(id int) string {
	if id == 0 {
		return "None"
	}
	return fmt.Sprint(id)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// metricsIfVerbose returns the process metrics snapshot, or nil.
func metricsIfVerbose(verbose bool) map[string]interface{} {
	if !verbose {
		return nil
	}
	return logger.GetMetricsSnapshot()
}
