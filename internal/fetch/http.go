// Package fetch provides the page fetchers and the link resolver. Two
// fetchers exist: a plain HTTP one for static sites and a headless
// Chrome one that renders JavaScript and triggers lazy-loaded content
// before reading anchors.
package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/linkparity/linkparity/internal/page"
	"github.com/linkparity/linkparity/internal/parser"
)

const maxBodySize = 20 << 20 // 20 MB

// newClient builds the shared HTTP client configuration: pooled
// transport, bounded redirects, and the run-wide timeout.
func newClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("too many redirects")
			}
			return nil
		},
	}
}

// HTTPFetcher fetches pages with a plain GET and extracts anchors from
// the raw markup. It sees no JavaScript-inserted links; use the Chrome
// fetcher for sites that need rendering.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates an HTTP page fetcher.
func NewHTTPFetcher(userAgent string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:    newClient(timeout),
		userAgent: userAgent,
	}
}

// Fetch retrieves one page. Any failure degrades to an empty-anchor,
// zero-status result; the crawl decides what to do with it.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) *page.FetchResult {
	result := &page.FetchResult{FinalURL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return result
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Warn("page fetch failed", "url", url, "error", err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.FinalURL = resp.Request.URL.String()
	result.Status = resp.StatusCode

	ct := resp.Header.Get("Content-Type")
	isHTML := strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
	if !isHTML || resp.StatusCode >= 400 {
		slog.Debug("skipping anchor extraction", "url", url, "content_type", ct, "status", resp.StatusCode)
		return result
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		slog.Warn("page body read failed", "url", url, "error", err)
		return result
	}

	parsed, err := parser.Parse(body)
	if err != nil {
		slog.Warn("page parse failed", "url", url, "error", err)
		return result
	}

	result.Title = parsed.Title
	result.Anchors = parsed.Anchors
	return result
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
