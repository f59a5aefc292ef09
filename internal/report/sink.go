// Package report provides the durable outputs of a run: an Excel
// workbook mirroring the classic report layout, and a SQLite database
// for ad-hoc querying. Sinks receive pages in BFS discovery order and a
// single final summary.
package report

import (
	"github.com/linkparity/linkparity/internal/crawler"
	"github.com/linkparity/linkparity/internal/diff"
	"github.com/linkparity/linkparity/internal/page"
)

// MultiSink fans every write out to several sinks in order.
type MultiSink struct {
	sinks []crawler.Sink
}

// NewMultiSink combines sinks. With a single sink it is returned as-is.
func NewMultiSink(sinks ...crawler.Sink) crawler.Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return &MultiSink{sinks: sinks}
}

// WriteSnapshot forwards a single-site snapshot to every sink.
func (m *MultiSink) WriteSnapshot(s *page.Snapshot) error {
	for _, sink := range m.sinks {
		if err := sink.WriteSnapshot(s); err != nil {
			return err
		}
	}
	return nil
}

// WritePageDiff forwards a compared page pair to every sink.
func (m *MultiSink) WritePageDiff(base, upg *page.Snapshot, rows []diff.Row, counts diff.Counts) error {
	for _, sink := range m.sinks {
		if err := sink.WritePageDiff(base, upg, rows, counts); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary forwards the run summary to every sink.
func (m *MultiSink) WriteSummary(sum crawler.Summary) error {
	for _, sink := range m.sinks {
		if err := sink.WriteSummary(sum); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, returning the first error.
func (m *MultiSink) Close() error {
	var firstErr error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
