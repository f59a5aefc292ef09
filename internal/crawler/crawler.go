// Package crawler implements the crawl frontier: a breadth-first
// scheduler over (URL, depth) entries with page, link and depth budgets,
// robots gating, per-host politeness, and an optional compare workflow
// that samples an upgraded deployment at every path the baseline has.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/linkparity/linkparity/internal/config"
	"github.com/linkparity/linkparity/internal/diff"
	"github.com/linkparity/linkparity/internal/page"
	"github.com/linkparity/linkparity/internal/urlnorm"
)

const (
	maxTitleLen = 300
	maxTextLen  = 250
)

// Crawler owns the frontier queue, the visited set and every budget
// counter for one run. All of that state sits behind a single mutex, so
// budgets are never overrun no matter how many workers fetch
// concurrently. Nothing is shared across runs.
type Crawler struct {
	cfg      *config.Config
	fetcher  Fetcher
	resolver Resolver
	sink     Sink
	limiter  *RateLimiter

	baseHost  string
	upgOrigin *url.URL // nil in single-site mode
	baseGate  *RobotsGate
	upgGate   *RobotsGate

	mu        sync.Mutex
	queue     []FrontierEntry
	visited   map[string]struct{}
	nextSeq   int
	inFlight  int
	pages     int
	links     int
	exhausted bool // maxTotalLinks hit
	results   []pageResult

	wg sync.WaitGroup
}

// New creates a crawler for one run. In compare mode the configured
// upgraded URL supplies the origin that baseline page URLs are rewritten
// onto; its path is ignored.
func New(cfg *config.Config, fetcher Fetcher, resolver Resolver, sink Sink) (*Crawler, error) {
	seed, err := url.Parse(cfg.SeedURL())
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}

	c := &Crawler{
		cfg:      cfg,
		fetcher:  fetcher,
		resolver: resolver,
		sink:     sink,
		limiter:  NewRateLimiter(cfg.Delay),
		baseHost: seed.Host,
		visited:  make(map[string]struct{}),
	}

	if cfg.CompareMode() {
		upg, err := url.Parse(cfg.UpgradedURL)
		if err != nil {
			return nil, fmt.Errorf("invalid upgraded URL: %w", err)
		}
		c.upgOrigin = upg
	}

	return c, nil
}

// Run executes the crawl until the frontier drains, a budget is
// exhausted, or ctx is cancelled. Snapshots produced before a stop are
// always flushed to the sink, in BFS discovery order, followed by the run
// summary.
func (c *Crawler) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if c.cfg.RespectRobots {
		client := &http.Client{Timeout: c.cfg.RequestTimeout}
		c.baseGate = LoadRobots(ctx, client, c.cfg.SeedURL(), c.cfg.UserAgent)
		if c.upgOrigin != nil {
			c.upgGate = LoadRobots(ctx, client, c.cfg.UpgradedURL, c.cfg.UserAgent)
		}
	}

	c.queue = []FrontierEntry{{URL: c.cfg.SeedURL(), Depth: 0}}

	slog.Info("starting crawl",
		"seed", c.cfg.SeedURL(),
		"compare", c.cfg.CompareMode(),
		"max_pages", c.cfg.MaxPages,
		"max_depth", c.cfg.MaxDepth,
		"workers", c.cfg.Concurrency)

	for i := 0; i < c.cfg.Concurrency; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i)
	}
	c.wg.Wait()

	return c.flush()
}

// Stats returns the totals accumulated so far.
func (c *Crawler) Stats() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	sum := Summary{PagesVisited: c.pages, LinksCaptured: c.links}
	for _, r := range c.results {
		sum.Diff.Add(r.counts)
	}
	return sum
}

// worker pulls frontier entries until the queue drains with no fetch in
// flight, a budget trips, or the context is cancelled.
func (c *Crawler) worker(ctx context.Context, id int) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		entry, seq, ok := c.next()
		if !ok {
			if c.drained() {
				slog.Debug("worker exiting, frontier drained", "worker_id", id)
				return
			}
			// Another worker may still enqueue discoveries.
			time.Sleep(50 * time.Millisecond)
			continue
		}

		c.processEntry(ctx, entry, seq)
	}
}

// next dequeues the first frontier entry that survives the robots gate,
// canonicalization and the visited set, consuming one unit of the page
// budget. Discarded entries consume nothing. Returns false when the
// queue is empty or a budget is exhausted.
func (c *Crawler) next() (FrontierEntry, int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		if c.pages >= c.cfg.MaxPages || c.exhausted || len(c.queue) == 0 {
			return FrontierEntry{}, 0, false
		}
		entry := c.queue[0]
		c.queue = c.queue[1:]

		if !c.baseGate.Allowed(entry.URL) {
			slog.Debug("robots disallowed", "url", entry.URL)
			continue
		}
		canon := urlnorm.Canonicalize(entry.URL, "", c.cfg.KeepQuery)
		if canon == "" {
			continue
		}
		if _, seen := c.visited[canon]; seen {
			continue
		}

		c.visited[canon] = struct{}{}
		c.pages++
		seq := c.nextSeq
		c.nextSeq++
		c.inFlight++
		return entry, seq, true
	}
}

// drained reports whether no work remains anywhere: queue empty and no
// worker mid-fetch. A stopped budget also counts as drained.
func (c *Crawler) drained() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pages >= c.cfg.MaxPages || c.exhausted {
		return c.inFlight == 0
	}
	return len(c.queue) == 0 && c.inFlight == 0
}

// processEntry fetches one page, captures its links, enqueues eligible
// discoveries at depth+1, and in compare mode fetches and diffs the
// upgraded counterpart.
func (c *Crawler) processEntry(ctx context.Context, entry FrontierEntry, seq int) {
	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}()

	if err := c.limiter.Wait(ctx, entry.URL); err != nil {
		return
	}

	res := c.fetcher.Fetch(ctx, entry.URL)
	snap := c.buildSnapshot(ctx, res, entry.URL, true)

	result := pageResult{seq: seq}
	if c.upgOrigin == nil {
		result.snap = snap
		slog.Info("page visited", "url", snap.PageURL, "status", snap.FetchStatus, "links", len(snap.Links), "depth", entry.Depth)
	} else {
		upgSnap := c.fetchUpgraded(ctx, snap.PageURL)
		result.base = snap
		result.upg = upgSnap
		result.rows, result.counts = diff.Compare(snap, upgSnap, diff.CompareBy(c.cfg.CompareBy))
		slog.Info("page pair compared",
			"base", snap.PageURL,
			"upgraded", upgSnap.PageURL,
			"missing", result.counts.Missing,
			"extra", result.counts.Extra,
			"wrong", result.counts.Wrong)
	}

	c.mu.Lock()
	c.results = append(c.results, result)
	if entry.Depth < c.cfg.MaxDepth {
		c.enqueueDiscoveries(snap, entry.Depth)
	}
	c.mu.Unlock()
}

// buildSnapshot turns a fetch result into an immutable snapshot,
// canonicalizing every useful href, optionally resolving it, and applying
// the per-page and (for budgeted pages) global link budgets.
func (c *Crawler) buildSnapshot(ctx context.Context, res *page.FetchResult, reqURL string, budgeted bool) *page.Snapshot {
	pageURL := res.FinalURL
	if pageURL == "" {
		pageURL = reqURL
	}

	snap := &page.Snapshot{
		PageURL:     pageURL,
		PageTitle:   urlnorm.SanitizeText(res.Title, maxTitleLen),
		FetchStatus: res.Status,
	}
	if snap.FetchStatus == 0 && c.cfg.ResolveLinks && len(res.Anchors) > 0 {
		_, snap.FetchStatus = c.resolver.Resolve(ctx, pageURL)
	}

	for _, a := range res.Anchors {
		if c.cfg.MaxLinksPerPage > 0 && len(snap.Links) >= c.cfg.MaxLinksPerPage {
			break
		}
		if !urlnorm.IsUsefulHref(a.Href, c.cfg.IncludeFragments) {
			continue
		}
		abs := urlnorm.Canonicalize(pageURL, a.Href, c.cfg.KeepQuery)
		if abs == "" {
			continue
		}
		if budgeted && !c.reserveLink() {
			break
		}

		text := a.Text
		if text == "" {
			text = a.AriaLabel
		}
		rec := page.LinkRecord{
			Text:        urlnorm.SanitizeText(text, maxTextLen),
			AbsoluteURL: abs,
			FinalURL:    abs,
			Target:      a.Target,
			Rel:         a.Rel,
		}
		if c.cfg.ResolveLinks {
			rec.FinalURL, rec.Status = c.resolver.Resolve(ctx, abs)
		}
		snap.Links = append(snap.Links, rec)
	}

	return snap
}

// reserveLink consumes one unit of the global link budget. Consuming the
// last unit marks the run exhausted so no further pages are dequeued,
// even when the cap lands exactly on a page boundary and no reservation
// is ever refused; snapshots already produced are kept.
func (c *Crawler) reserveLink() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.links >= c.cfg.MaxTotalLinks {
		c.exhausted = true
		return false
	}
	c.links++
	if c.links >= c.cfg.MaxTotalLinks {
		c.exhausted = true
	}
	return true
}

// enqueueDiscoveries pushes the eligible links of a baseline snapshot
// onto the frontier at depth+1. Caller holds c.mu.
func (c *Crawler) enqueueDiscoveries(snap *page.Snapshot, depth int) {
	seen := make(map[string]struct{})
	for _, rec := range snap.Links {
		u := rec.AbsoluteURL
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		if !c.eligible(u) {
			continue
		}
		if !c.baseGate.Allowed(u) {
			continue
		}
		if _, visited := c.visited[u]; visited {
			continue
		}
		c.queue = append(c.queue, FrontierEntry{URL: u, Depth: depth + 1})
	}
}

// eligible applies the same-domain and include/exclude pattern filters
// that decide crawl eligibility for a discovered URL.
func (c *Crawler) eligible(u string) bool {
	if c.cfg.SameDomainOnly && !urlnorm.IsInternal(u, c.baseHost, c.cfg.IncludeSubdomains) {
		return false
	}
	if re := c.cfg.IncludeRegexp(); re != nil && !re.MatchString(u) {
		return false
	}
	if re := c.cfg.ExcludeRegexp(); re != nil && re.MatchString(u) {
		return false
	}
	return true
}

// fetchUpgraded samples the upgraded deployment at the path of one
// baseline page. A robots denial on the upgraded side yields an empty
// snapshot rather than skipping the page pair, so the diff still reports
// every baseline link as missing context. Upgraded links never feed
// discovery and never consume the global link budget.
func (c *Crawler) fetchUpgraded(ctx context.Context, basePageURL string) *page.Snapshot {
	upgURL := c.rewriteToUpgraded(basePageURL)
	if !c.upgGate.Allowed(upgURL) {
		slog.Debug("upgraded page robots disallowed", "url", upgURL)
		return &page.Snapshot{PageURL: upgURL}
	}

	if err := c.limiter.Wait(ctx, upgURL); err != nil {
		return &page.Snapshot{PageURL: upgURL}
	}
	res := c.fetcher.Fetch(ctx, upgURL)
	snap := c.buildSnapshot(ctx, res, upgURL, false)
	// Diff joins page pairs by construction; keep the derived URL even if
	// the upgraded server redirected elsewhere.
	snap.PageURL = upgURL
	return snap
}

// rewriteToUpgraded substitutes the upgraded origin onto a baseline page
// URL, keeping path and parameters, dropping the fragment, and keeping
// the query only when query retention is on.
func (c *Crawler) rewriteToUpgraded(basePageURL string) string {
	parsed, err := url.Parse(basePageURL)
	if err != nil {
		return c.upgOrigin.Scheme + "://" + c.upgOrigin.Host
	}
	upg := url.URL{
		Scheme:  c.upgOrigin.Scheme,
		Host:    c.upgOrigin.Host,
		Path:    parsed.Path,
		RawPath: parsed.RawPath,
	}
	if c.cfg.KeepQuery {
		upg.RawQuery = parsed.RawQuery
	}
	return upg.String()
}

// flush hands every buffered result to the sink in BFS discovery order,
// then the summary. Workers may have completed out of order; consumers
// depend on deterministic ordering, not completion order.
func (c *Crawler) flush() error {
	c.mu.Lock()
	results := c.results
	sum := Summary{PagesVisited: c.pages, LinksCaptured: c.links}
	c.mu.Unlock()

	sort.Slice(results, func(i, j int) bool { return results[i].seq < results[j].seq })

	for _, r := range results {
		var err error
		if r.snap != nil {
			err = c.sink.WriteSnapshot(r.snap)
		} else {
			sum.Diff.Add(r.counts)
			err = c.sink.WritePageDiff(r.base, r.upg, r.rows, r.counts)
		}
		if err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if err := c.sink.WriteSummary(sum); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	slog.Info("crawl complete",
		"pages", sum.PagesVisited,
		"links", sum.LinksCaptured,
		"missing", sum.Diff.Missing,
		"extra", sum.Diff.Extra,
		"wrong", sum.Diff.Wrong)
	return nil
}
