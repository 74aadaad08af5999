package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/badmintongame/tournament-sync/internal/config"
	"github.com/badmintongame/tournament-sync/internal/storage"
)

// siteGetter serves detail pages by ga_id; unknown IDs are 404.
type siteGetter map[int]string

func (s siteGetter) Get(_ context.Context, rawURL string) (int, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, "", err
	}
	id, _ := strconv.Atoi(u.Query().Get("ga_id"))
	period, ok := s[id]
	if !ok {
		return http.StatusNotFound, "", nil
	}
	body := fmt.Sprintf(`<html><head><title>Open %d | 전국배드민턴대회</title></head><body>
<table><tr><th>대회기간</th><td>%s</td></tr><tr><th>참가지역</th><td>서울</td></tr></table>
</body></html>`, id, period)
	return http.StatusOK, body, nil
}

func newTestCrawl(t *testing.T, getter siteGetter) (*crawlOptions, string) {
	t.Helper()
	dir := t.TempDir()
	opts := &crawlOptions{
		globalOptions: &globalOptions{cfg: config.Config{BaseURL: "http://example.test"}},
		startID:       1,
		endID:         5,
		year:          2025,
		month:         3,
		out:           filepath.Join(dir, "out.csv"),
		sort:          "id",
		format:        "text",
		getter:        getter,
		now:           func() time.Time { return time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC) },
	}
	return opts, dir
}

func TestCrawlCommand(t *testing.T) {
	getter := siteGetter{
		1: "2025년 3월 1일 ~ 2025년 3월 2일",
		2: "2025년 4월 5일",
		4: "2025.03.22",
	}
	opts, dir := newTestCrawl(t, getter)
	opts.ics = filepath.Join(dir, "hits.ics")

	if err := opts.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	var stdout, stderr bytes.Buffer
	if err := opts.run(context.Background(), &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"[HIT] ga_id=1 period=2025년 3월 1일 ~ 2025년 3월 2일 title=Open 1\n",
		"[HIT] ga_id=4 period=2025.03.22 title=Open 4\n",
		"[SAVE] " + opts.out + " (count=2)\n",
		"scanned 5, hits 2, filtered 1, absent 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "[ABSENT]") {
		t.Errorf("absent pages should only be shown with --verbose:\n%s", out)
	}

	f, err := os.Open(opts.out)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	defer f.Close()

	listings, err := storage.ReadListings(f)
	if err != nil {
		t.Fatalf("ReadListings() error = %v", err)
	}
	if len(listings) != 2 || listings[0].GaID != 1 || listings[1].GaID != 4 {
		t.Fatalf("saved listings = %+v", listings)
	}
	if listings[0].Region != "서울" || listings[0].URL != "http://example.test/game/game_view.html?ga_id=1" {
		t.Errorf("listing fields = %+v", listings[0])
	}

	ics, err := os.ReadFile(opts.ics)
	if err != nil {
		t.Fatalf("reading calendar: %v", err)
	}
	// only ga_id 1 has a Korean-format date the calendar can place
	if got := strings.Count(string(ics), "BEGIN:VEVENT"); got != 1 {
		t.Errorf("calendar events = %d, want 1", got)
	}
}

func TestCrawlCommandNoHits(t *testing.T) {
	opts, _ := newTestCrawl(t, siteGetter{2: "2024년 3월 1일"})
	if err := opts.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	var stdout, stderr bytes.Buffer
	if err := opts.run(context.Background(), &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if !strings.Contains(stdout.String(), "[SAVE] no items to save.\n") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if _, err := os.Stat(opts.out); !os.IsNotExist(err) {
		t.Errorf("no file should be written without hits, stat error = %v", err)
	}
}

func TestCrawlCommandJSON(t *testing.T) {
	opts, _ := newTestCrawl(t, siteGetter{3: "2025-03-08"})
	opts.format = "json"
	if err := opts.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	var stdout, stderr bytes.Buffer
	if err := opts.run(context.Background(), &stdout, &stderr); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if !strings.HasPrefix(strings.TrimSpace(stdout.String()), "{") {
		t.Errorf("stdout should hold only the JSON summary:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "[HIT] ga_id=3") {
		t.Errorf("progress should move to stderr in json mode:\n%s", stderr.String())
	}
}

func TestCrawlCommandCancelled(t *testing.T) {
	opts, _ := newTestCrawl(t, siteGetter{1: "2025년 3월 1일"})
	if err := opts.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	if err := opts.run(ctx, &stdout, &stderr); err == nil {
		t.Fatal("expected an error for a cancelled crawl")
	}
}

func TestCrawlValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *crawlOptions)
	}{
		{"start below one", func(o *crawlOptions) { o.startID = 0 }},
		{"missing end", func(o *crawlOptions) { o.endID = 0 }},
		{"bad year", func(o *crawlOptions) { o.year = 25 }},
		{"bad month", func(o *crawlOptions) { o.month = 13 }},
		{"bad sort", func(o *crawlOptions) { o.sort = "state" }},
		{"bad format", func(o *crawlOptions) { o.format = "xml" }},
		{"negative delay", func(o *crawlOptions) { o.delay = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, _ := newTestCrawl(t, nil)
			tt.mutate(opts)
			if err := opts.validate(); err == nil {
				t.Error("validate() expected error")
			}
		})
	}
}

func TestCrawlValidateDefaultOutput(t *testing.T) {
	opts, _ := newTestCrawl(t, nil)
	opts.out = ""
	if err := opts.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}
	if opts.out != "badmintongame_2025_03.csv" {
		t.Errorf("out = %q", opts.out)
	}
}

func TestCrawlCommandFlags(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetArgs([]string{"crawl", "--year", "2025"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "end-id") {
		t.Errorf("expected a missing --end-id error, got %v", err)
	}
}
