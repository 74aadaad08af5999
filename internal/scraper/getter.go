package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "ko-KR,ko;q=0.9,en;q=0.8"
	DefaultTimeout        = 20 * time.Second
)

// Getter fetches a URL and returns the status code and the decoded body.
// A non-2xx status is not an error; only connection-level failures are.
type Getter interface {
	Get(ctx context.Context, url string) (status int, body string, err error)
}

// HTTPGetter is the Getter used against the live site
type HTTPGetter struct {
	client *http.Client
	header http.Header
}

// NewHTTPGetter creates a getter that sends the given User-Agent and
// Accept-Language on every request and gives up after timeout.
func NewHTTPGetter(userAgent, acceptLanguage string, timeout time.Duration) *HTTPGetter {
	header := make(http.Header)
	header.Set("User-Agent", userAgent)
	header.Set("Accept-Language", acceptLanguage)

	return &HTTPGetter{
		client: &http.Client{Timeout: timeout},
		header: header,
	}
}

// Get performs a GET and decodes the body to UTF-8 using the response charset.
func (g *HTTPGetter) Get(ctx context.Context, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header = g.header.Clone()

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("reading body: %w", err)
	}

	enc, _, _ := charset.DetermineEncoding(data, resp.Header.Get("Content-Type"))
	data, err = enc.NewDecoder().Bytes(data)
	if err != nil {
		return resp.StatusCode, "", fmt.Errorf("decoding body: %w", err)
	}

	return resp.StatusCode, string(data), nil
}
