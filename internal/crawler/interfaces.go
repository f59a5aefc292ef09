package crawler

import (
	"context"

	"github.com/linkparity/linkparity/internal/diff"
	"github.com/linkparity/linkparity/internal/page"
)

// Fetcher renders one page and returns its final URL, title, fetch status
// and raw anchors. A per-page failure must surface as an empty-anchor,
// zero-status result, never as an error; the only fatal fetcher error is
// failing to start its driver, which happens at construction time.
type Fetcher interface {
	Fetch(ctx context.Context, url string) *page.FetchResult
	Close() error
}

// Resolver follows redirects for a single absolute URL and reports the
// final URL and HTTP status. A transport failure yields the input URL and
// a zero status.
type Resolver interface {
	Resolve(ctx context.Context, url string) (finalURL string, status int)
}

// Sink consumes crawl output. Snapshots (single-site mode) or page-pair
// diffs (compare mode) arrive in BFS discovery order, followed by exactly
// one summary.
type Sink interface {
	WriteSnapshot(s *page.Snapshot) error
	WritePageDiff(base, upg *page.Snapshot, rows []diff.Row, counts diff.Counts) error
	WriteSummary(sum Summary) error
	Close() error
}

// Summary is the per-run total handed to the sink after the last page.
type Summary struct {
	PagesVisited  int
	LinksCaptured int
	Diff          diff.Counts // zero in single-site mode
}
