package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/badmintongame/tournament-sync/internal/filter"
	"github.com/badmintongame/tournament-sync/internal/importer"
	"github.com/badmintongame/tournament-sync/internal/scraper"
	"github.com/badmintongame/tournament-sync/internal/tournament"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWriteOutcome(t *testing.T) {
	hit := scraper.Outcome{ID: 42, Kind: scraper.Hit, Listing: &tournament.Listing{
		GaID: 42, Title: "Spring Open", EventPeriod: "2025년 3월 1일",
	}}
	absent := scraper.Outcome{ID: 43, Kind: scraper.Absent, Reason: "not found (status 404)"}
	filtered := scraper.Outcome{ID: 44, Kind: scraper.FilteredOut, Reason: "outside 2025-03"}

	tests := []struct {
		name    string
		out     scraper.Outcome
		verbose bool
		want    string
	}{
		{"hit", hit, false, "[HIT] ga_id=42 period=2025년 3월 1일 title=Spring Open\n"},
		{"absent quiet", absent, false, ""},
		{"absent verbose", absent, true, "[ABSENT] ga_id=43 not found (status 404)\n"},
		{"filtered quiet", filtered, false, ""},
		{"filtered verbose", filtered, true, "[FILTERED] ga_id=44 outside 2025-03\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeOutcome(&buf, tt.out, tt.verbose)
			if got := buf.String(); got != tt.want {
				t.Errorf("writeOutcome() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteRowEvent(t *testing.T) {
	rec := tournament.Record{Name: "Spring Open", StartDate: date(2025, 3, 1), EndDate: date(2025, 3, 2)}

	tests := []struct {
		name string
		ev   importer.RowEvent
		want []string
	}{
		{
			name: "skip",
			ev:   importer.RowEvent{Line: 5, Action: importer.Skipped, Reason: "missing name"},
			want: []string{"[SKIP] line 5: missing name: ga_id=None, name=\n"},
		},
		{
			name: "preview",
			ev:   importer.RowEvent{Line: 2, GaID: 42, Action: importer.Previewed, Record: rec},
			want: []string{
				"[PREVIEW] Spring Open\n",
				"period: 2025-03-01 ~ 2025-03-02\n",
				"apply:  None ~ None\n",
				"region: None, location: None\n",
			},
		},
		{
			name: "insert",
			ev:   importer.RowEvent{Line: 2, GaID: 42, Action: importer.Inserted, Record: rec},
			want: []string{"[INSERT] Spring Open\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeRowEvent(&buf, tt.ev)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestWriteCrawlSummary(t *testing.T) {
	summary := &CrawlSummary{
		RunID:   "run-1",
		StartID: 1,
		EndID:   10,
		Result: &scraper.CrawlResult{
			Target:   filter.Target{Year: 2025, Month: 3},
			Hits:     []tournament.Listing{{GaID: 4, Title: "Spring Open"}},
			Scanned:  10,
			Absent:   6,
			Filtered: 3,
		},
	}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteCrawlSummary(&buf, summary, FormatText); err != nil {
			t.Fatalf("WriteCrawlSummary() error = %v", err)
		}
		want := "Target 2025-03, ga_id 1..10: scanned 10, hits 1, filtered 3, absent 6"
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
		if strings.Contains(buf.String(), "Metrics:") {
			t.Error("metrics should only be shown when present")
		}
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteCrawlSummary(&buf, summary, FormatJSON); err != nil {
			t.Fatalf("WriteCrawlSummary() error = %v", err)
		}

		var decoded struct {
			RunID  string `json:"run_id"`
			Result struct {
				Target struct {
					Year  int `json:"year"`
					Month int `json:"month"`
				} `json:"target"`
				Hits    []tournament.Listing `json:"hits"`
				Scanned int                  `json:"scanned"`
			} `json:"result"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
		}
		if decoded.RunID != "run-1" || decoded.Result.Target.Month != 3 || decoded.Result.Scanned != 10 {
			t.Errorf("decoded = %+v", decoded)
		}
		if len(decoded.Result.Hits) != 1 || decoded.Result.Hits[0].GaID != 4 {
			t.Errorf("hits = %+v", decoded.Result.Hits)
		}
	})
}

func TestWriteImportSummary(t *testing.T) {
	tests := []struct {
		name    string
		summary ImportSummary
		want    string
	}{
		{
			name:    "commit",
			summary: ImportSummary{Result: importer.Result{Read: 3, Inserted: 2, Skipped: 1}},
			want:    "[DONE] inserted: 2, skipped: 1\n",
		},
		{
			name:    "dry run",
			summary: ImportSummary{DryRun: true, Result: importer.Result{Read: 3, Previewed: 2, Skipped: 1}},
			want:    "[DONE] previewed: 2, skipped: 1 (dry run, nothing inserted)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteImportSummary(&buf, &tt.summary, FormatText); err != nil {
				t.Fatalf("WriteImportSummary() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWriteMetrics(t *testing.T) {
	var buf bytes.Buffer
	writeMetrics(&buf, map[string]interface{}{
		"counters": map[string]int64{"crawl.hit": 2, "crawl.absent": 5},
		"timings": map[string]map[string]interface{}{
			"crawl.fetch": {"count": 7, "average": "10ms", "min": "5ms", "max": "20ms"},
		},
	})

	out := buf.String()
	absent := strings.Index(out, "crawl.absent")
	hit := strings.Index(out, "crawl.hit")
	if absent < 0 || hit < 0 || absent > hit {
		t.Errorf("counters should be listed in name order:\n%s", out)
	}
	if !strings.Contains(out, "count=7 avg=10ms min=5ms max=20ms") {
		t.Errorf("timing line missing:\n%s", out)
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := parseFormat("yaml"); err == nil {
		t.Error("parseFormat(yaml) expected error")
	}
	if f, err := parseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("parseFormat(json) = %q, %v", f, err)
	}
}
