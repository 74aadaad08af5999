package scraper

import (
	"context"
	"fmt"
	"iter"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/badmintongame/tournament-sync/internal/filter"
	"github.com/badmintongame/tournament-sync/internal/logger"
	"github.com/badmintongame/tournament-sync/internal/tournament"
)

const (
	DefaultBaseURL = "http://www.badmintongame.co.kr"
	DefaultDelay   = 250 * time.Millisecond
	DefaultJitter  = 100 * time.Millisecond

	detailPath = "/game/game_view.html?ga_id=%d"
)

// Some missing pages come back as 200 with an error message instead of a 404
var missingPageMarkers = []string{"존재하지", "삭제", "잘못된"}

// Kind classifies what happened to one page ID
type Kind int

const (
	Absent Kind = iota
	FilteredOut
	Hit
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case FilteredOut:
		return "filtered"
	case Hit:
		return "hit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the result of visiting one page ID.
// Listing is set only for hits; Reason explains absent and filtered pages.
type Outcome struct {
	ID      int
	Kind    Kind
	Reason  string
	Listing *tournament.Listing
}

// Options configures a Crawler. Zero values fall back to the package defaults,
// except Delay and Jitter which may legitimately be zero.
type Options struct {
	BaseURL  string
	SiteName string
	Target   filter.Target
	Delay    time.Duration
	Jitter   time.Duration
}

// Crawler walks a range of detail page IDs sequentially
type Crawler struct {
	getter    Getter
	extractor *Extractor
	baseURL   string
	target    filter.Target
	delay     time.Duration
	jitter    time.Duration

	// replaced in tests
	sleep func(ctx context.Context, d time.Duration) bool
	rand  func() float64
}

// New creates a Crawler that fetches pages through getter.
func New(getter Getter, opts Options) *Crawler {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.SiteName == "" {
		opts.SiteName = DefaultSiteName
	}

	return &Crawler{
		getter:    getter,
		extractor: NewExtractor(opts.SiteName),
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		target:    opts.Target,
		delay:     opts.Delay,
		jitter:    opts.Jitter,
		sleep:     sleepContext,
		rand:      rand.Float64,
	}
}

// DetailURL returns the detail page URL for a ga_id.
func DetailURL(baseURL string, id int) string {
	return strings.TrimRight(baseURL, "/") + fmt.Sprintf(detailPath, id)
}

// Crawl returns the outcomes for startID..endID inclusive, in order.
// After each outcome is consumed the crawler sleeps delay ± jitter, whatever
// the outcome was. The sequence ends early when the consumer stops or ctx is done.
func (c *Crawler) Crawl(ctx context.Context, startID, endID int) iter.Seq[Outcome] {
	return func(yield func(Outcome) bool) {
		for id := startID; id <= endID; id++ {
			if ctx.Err() != nil {
				return
			}
			if !yield(c.visit(ctx, id)) {
				return
			}
			if !c.sleep(ctx, JitterDelay(c.delay, c.jitter, c.rand())) {
				return
			}
		}
	}
}

// CrawlResult accumulates a whole crawl
type CrawlResult struct {
	Target   filter.Target        `json:"target"`
	Hits     []tournament.Listing `json:"hits"`
	Scanned  int                  `json:"scanned"`
	Absent   int                  `json:"absent"`
	Filtered int                  `json:"filtered"`
}

// Collect runs Crawl and accumulates the hits, stopping once maxHits hits are
// found (maxHits <= 0 means no limit). observe, if non-nil, sees every outcome.
// The partial result is returned together with ctx's error on cancellation.
func (c *Crawler) Collect(ctx context.Context, startID, endID, maxHits int, observe func(Outcome)) (*CrawlResult, error) {
	result := &CrawlResult{
		Target: c.target,
		Hits:   make([]tournament.Listing, 0),
	}

	for out := range c.Crawl(ctx, startID, endID) {
		result.Scanned++
		switch out.Kind {
		case Absent:
			result.Absent++
		case FilteredOut:
			result.Filtered++
		case Hit:
			result.Hits = append(result.Hits, *out.Listing)
		}

		if observe != nil {
			observe(out)
		}

		if maxHits > 0 && len(result.Hits) >= maxHits {
			break
		}
	}

	return result, ctx.Err()
}

// visit fetches, extracts and filters one page ID
func (c *Crawler) visit(ctx context.Context, id int) Outcome {
	url := DetailURL(c.baseURL, id)

	body, reason := c.fetch(ctx, url)
	if reason != "" {
		logger.IncrCounter("crawl.absent")
		logger.Debug("page absent", logger.Fields{"ga_id": id, "reason": reason})
		return Outcome{ID: id, Kind: Absent, Reason: reason}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		logger.IncrCounter("crawl.absent")
		return Outcome{ID: id, Kind: Absent, Reason: fmt.Sprintf("parsing HTML: %v", err)}
	}

	page := c.extractor.Extract(doc)
	if !c.target.Matches(page.EventPeriod) {
		logger.IncrCounter("crawl.filtered")
		return Outcome{
			ID:     id,
			Kind:   FilteredOut,
			Reason: fmt.Sprintf("event period %q outside %s", page.EventPeriod, c.target),
		}
	}

	logger.IncrCounter("crawl.hit")
	return Outcome{
		ID:   id,
		Kind: Hit,
		Listing: &tournament.Listing{
			GaID:        id,
			URL:         url,
			Title:       page.Title,
			EventPeriod: page.EventPeriod,
			ApplyPeriod: page.ApplyPeriod,
			Venue:       page.Venue,
			Region:      page.Region,
			Phone:       page.Phone,
		},
	}
}

// fetch returns the page body, or a non-empty reason when the page is absent
func (c *Crawler) fetch(ctx context.Context, url string) (string, string) {
	start := time.Now()
	status, body, err := c.getter.Get(ctx, url)
	logger.RecordTiming("crawl.fetch", time.Since(start))

	if err != nil {
		return "", fmt.Sprintf("fetch error: %v", err)
	}

	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return "", fmt.Sprintf("not found (status %d)", status)
	case status != http.StatusOK:
		return "", fmt.Sprintf("unexpected status code: %d", status)
	}

	for _, marker := range missingPageMarkers {
		if strings.Contains(body, marker) {
			return "", fmt.Sprintf("missing-page marker %q", marker)
		}
	}
	if strings.TrimSpace(body) == "" {
		return "", "empty body"
	}

	return body, ""
}

// JitterDelay returns base + jitter scaled by r in [0,1) onto [-1,1), floored at zero.
func JitterDelay(base, jitter time.Duration, r float64) time.Duration {
	d := base + time.Duration((2*r-1)*float64(jitter))
	if d < 0 {
		return 0
	}
	return d
}

// sleepContext sleeps for d and reports false if ctx ended first
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
