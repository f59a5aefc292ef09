// Package page defines the data model shared by the crawler, the diff
// engine, and the report sinks.
package page

// Anchor is one <a> element as returned by a page fetcher, before any
// normalization. Href may be relative.
type Anchor struct {
	Href      string
	Text      string
	AriaLabel string // fallback when the visible text is empty
	Target    string
	Rel       string
}

// LinkRecord is one captured link on a page. AbsoluteURL is the canonical
// form of the href resolved against its containing page. FinalURL is the
// resolver's answer after redirects, or AbsoluteURL when resolution was
// skipped. Status is the resolved HTTP status; 0 means resolution was
// skipped or failed.
type LinkRecord struct {
	Text        string
	AbsoluteURL string
	FinalURL    string
	Status      int
	Target      string
	Rel         string
}

// Snapshot is the immutable record of one visited page: its URL, title,
// fetch status (0 when unknown) and the links captured on it, in DOM order.
type Snapshot struct {
	PageURL     string
	PageTitle   string
	FetchStatus int
	Links       []LinkRecord
}

// FetchResult is what a page fetcher returns for one URL. A failed fetch
// yields an empty anchor list and a zero status rather than an error.
type FetchResult struct {
	FinalURL string
	Title    string
	Status   int
	Anchors  []Anchor
}
