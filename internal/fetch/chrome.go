package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/linkparity/linkparity/internal/page"
)

// Settle waits while rendering a page. The initial wait lets client-side
// frameworks hydrate their links; the scroll wait lets lazy-loaded
// content appear.
const (
	chromeInitialWait = 1500 * time.Millisecond
	chromeScrollWait  = 2 * time.Second
	chromeFinalWait   = 500 * time.Millisecond
)

// anchorsJS reads every <a> element from the rendered DOM: the raw href
// attribute (not the resolved property, so fragment-only and scheme
// hrefs stay recognizable), visible text with an aria-label fallback
// captured separately, target and rel.
const anchorsJS = `Array.from(document.querySelectorAll('a')).map(a => ({
	href: a.getAttribute('href') || '',
	text: a.innerText || '',
	ariaLabel: a.getAttribute('aria-label') || '',
	target: a.getAttribute('target') || '',
	rel: a.getAttribute('rel') || ''
}))`

type jsAnchor struct {
	Href      string `json:"href"`
	Text      string `json:"text"`
	AriaLabel string `json:"ariaLabel"`
	Target    string `json:"target"`
	Rel       string `json:"rel"`
}

// ChromeFetcher renders pages in one headless (or headful) Chrome
// session, shared for the whole run so cookies and logins persist across
// pages.
type ChromeFetcher struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	browserStop context.CancelFunc
	timeout     time.Duration
}

// NewChromeFetcher starts the browser. A startup failure here is the one
// fatal error of a run: it aborts before any budget is consumed.
func NewChromeFetcher(userAgent string, timeout time.Duration, headful bool) (*ChromeFetcher, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !headful),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1400, 2000),
		chromedp.UserAgent(userAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserStop := chromedp.NewContext(allocCtx)

	// Run with no actions forces the browser to actually launch.
	if err := chromedp.Run(browserCtx); err != nil {
		browserStop()
		allocCancel()
		return nil, fmt.Errorf("failed to start Chrome: %w", err)
	}

	return &ChromeFetcher{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		browserStop: browserStop,
		timeout:     timeout,
	}, nil
}

// Open navigates the session to a URL and waits for readiness, without
// extracting anything. Used for the manual pause before a crawl, so an
// operator can log in first.
func (f *ChromeFetcher) Open(ctx context.Context, url string) error {
	tctx, cancel := f.tabContext(ctx)
	defer cancel()
	return chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Fetch renders one page: navigate, wait for the document, give scripts
// time to hydrate, scroll to the bottom to trigger lazy loading, scroll
// back, then read the title, final URL and anchors. Render failures
// degrade to an empty-anchor, zero-status result.
func (f *ChromeFetcher) Fetch(ctx context.Context, url string) *page.FetchResult {
	result := &page.FetchResult{FinalURL: url}

	tctx, cancel := f.tabContext(ctx)
	defer cancel()

	var title, finalURL string
	var raw []jsAnchor
	err := chromedp.Run(tctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(chromeInitialWait),
		chromedp.Evaluate(`window.scrollTo({top: document.body.scrollHeight, behavior: 'smooth'})`, nil),
		chromedp.Sleep(chromeScrollWait),
		chromedp.Evaluate(`window.scrollTo({top: 0})`, nil),
		chromedp.Sleep(chromeFinalWait),
		chromedp.Location(&finalURL),
		chromedp.Title(&title),
		chromedp.Evaluate(anchorsJS, &raw),
	)
	if err != nil {
		slog.Warn("page render failed", "url", url, "error", err)
		return result
	}

	if finalURL != "" {
		result.FinalURL = finalURL
	}
	result.Title = title
	result.Anchors = make([]page.Anchor, 0, len(raw))
	for _, a := range raw {
		result.Anchors = append(result.Anchors, page.Anchor{
			Href:      a.Href,
			Text:      a.Text,
			AriaLabel: a.AriaLabel,
			Target:    a.Target,
			Rel:       a.Rel,
		})
	}
	return result
}

// tabContext scopes one navigation to both the caller's context and the
// per-page timeout, while keeping the shared browser session alive.
func (f *ChromeFetcher) tabContext(ctx context.Context) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(f.browserCtx, f.timeout)
	stop := context.AfterFunc(ctx, cancel)
	return tctx, func() {
		stop()
		cancel()
	}
}

// Close shuts the browser down. Safe on every exit path, including an
// aborted run.
func (f *ChromeFetcher) Close() error {
	f.browserStop()
	f.allocCancel()
	return nil
}
