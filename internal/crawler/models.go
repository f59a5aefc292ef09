package crawler

import (
	"github.com/linkparity/linkparity/internal/diff"
	"github.com/linkparity/linkparity/internal/page"
)

// FrontierEntry is one unit of BFS work: a URL and its discovery depth
// from the seed. Entries are created when a discovered link passes every
// filter and are consumed once dequeued; the visited set stores canonical
// page URLs only, so first-seen depth wins.
type FrontierEntry struct {
	URL   string
	Depth int
}

// pageResult is one finished page, tagged with its BFS discovery sequence
// so the final report can be flushed in visitation order regardless of
// which worker completed first.
type pageResult struct {
	seq  int
	snap *page.Snapshot // single-site mode

	// compare mode
	base   *page.Snapshot
	upg    *page.Snapshot
	rows   []diff.Row
	counts diff.Counts
}
