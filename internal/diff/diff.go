// Package diff classifies the differences between two link snapshots of
// the same logical page: one taken on a baseline site and one on an
// upgraded deployment of it.
//
// Links are joined on a compare key, either the resolved final URL or the
// canonical absolute URL. Every key found on either side ends up in at
// most one classification: target-changed (same anchor text, different
// targets), broken on the upgraded side, missing from the upgraded side,
// or extra on the upgraded side.
package diff

import (
	"sort"
	"strings"

	"github.com/linkparity/linkparity/internal/page"
)

// CompareBy selects the identity function used to join link records.
type CompareBy string

const (
	// ByFinalURL joins on the post-redirect resolved URL.
	ByFinalURL CompareBy = "final-url"
	// ByAbsoluteURL joins on the canonical absolute URL. Use this when
	// link resolution is disabled, since final URLs then carry no
	// information.
	ByAbsoluteURL CompareBy = "abs-url"
)

// Kind is the classification of one diff row.
type Kind string

const (
	Missing Kind = "Missing"
	Extra   Kind = "Extra"
	Wrong   Kind = "Wrong"
)

// Notes attached to Wrong rows.
const (
	NoteTargetChanged = "Target changed for same anchor text"
	NoteBrokenLink    = "Upgraded link broken"
)

// Row is one classified difference between the two sides of a page pair.
// URL and status fields are populated only for the sides they apply to;
// a zero status means the status was absent.
type Row struct {
	BasePageURL string
	UpgPageURL  string
	Kind        Kind
	LinkText    string
	BaseURL     string
	UpgURL      string
	BaseStatus  int
	UpgStatus   int
	Note        string
}

// Counts tallies rows per kind for one page pair.
type Counts struct {
	Missing int
	Extra   int
	Wrong   int
}

// Total returns the number of diff rows across all kinds.
func (c Counts) Total() int {
	return c.Missing + c.Extra + c.Wrong
}

// Add accumulates another page's counts.
func (c *Counts) Add(o Counts) {
	c.Missing += o.Missing
	c.Extra += o.Extra
	c.Wrong += o.Wrong
}

// Key returns the compare key of a link record. When joining on final
// URLs a record that was never resolved falls back to its absolute URL.
func Key(r page.LinkRecord, by CompareBy) string {
	if by == ByAbsoluteURL {
		return r.AbsoluteURL
	}
	if r.FinalURL != "" {
		return r.FinalURL
	}
	return r.AbsoluteURL
}

// keyURL is the URL shown in diff rows for a record, matching the join key
// choice.
func keyURL(r page.LinkRecord, by CompareBy) string {
	if by == ByAbsoluteURL {
		return r.AbsoluteURL
	}
	return r.FinalURL
}

// Compare diffs the baseline and upgraded snapshots of one page and
// returns the classified rows plus per-kind counts.
//
// Rows are emitted in a fixed order: target-changed rows sorted by anchor
// text, then broken-on-upgraded rows, then missing rows, then extra rows,
// each sorted by compare key. Duplicate keys within one snapshot collapse
// last-write-wins. Keys touched by a target-changed row are excluded from
// every later phase, so one semantic change never surfaces twice.
func Compare(base, upg *page.Snapshot, by CompareBy) ([]Row, Counts) {
	var rows []Row
	var counts Counts

	baseByKey := indexByKey(base.Links, by)
	upgByKey := indexByKey(upg.Links, by)

	// Anchor text -> set of keys carrying that text. Empty-text links
	// never participate in target-changed detection.
	baseTexts := textMap(base.Links, by)
	upgTexts := textMap(upg.Links, by)

	consumed := make(map[string]bool)
	for _, text := range sortedCommonTexts(baseTexts, upgTexts) {
		bKeys, uKeys := baseTexts[text], upgTexts[text]
		if sameKeySet(bKeys, uKeys) {
			continue
		}
		rows = append(rows, Row{
			BasePageURL: base.PageURL,
			UpgPageURL:  upg.PageURL,
			Kind:        Wrong,
			LinkText:    text,
			BaseURL:     joinTargets(bKeys, baseByKey, by),
			UpgURL:      joinTargets(uKeys, upgByKey, by),
			Note:        NoteTargetChanged,
		})
		counts.Wrong++
		for k := range bKeys {
			consumed[k] = true
		}
		for k := range uKeys {
			consumed[k] = true
		}
	}

	// Broken on the upgraded side: key exists on both sides but the
	// upgraded record resolved to an error status (or not at all).
	for _, k := range sortedKeys(baseByKey) {
		if consumed[k] {
			continue
		}
		u, ok := upgByKey[k]
		if !ok {
			continue
		}
		if u.Status != 0 && u.Status < 400 {
			continue
		}
		b := baseByKey[k]
		rows = append(rows, Row{
			BasePageURL: base.PageURL,
			UpgPageURL:  upg.PageURL,
			Kind:        Wrong,
			LinkText:    u.Text,
			BaseURL:     keyURL(b, by),
			UpgURL:      keyURL(u, by),
			BaseStatus:  b.Status,
			UpgStatus:   u.Status,
			Note:        NoteBrokenLink,
		})
		counts.Wrong++
	}

	for _, k := range sortedKeys(baseByKey) {
		if consumed[k] {
			continue
		}
		if _, ok := upgByKey[k]; ok {
			continue
		}
		b := baseByKey[k]
		rows = append(rows, Row{
			BasePageURL: base.PageURL,
			UpgPageURL:  upg.PageURL,
			Kind:        Missing,
			LinkText:    b.Text,
			BaseURL:     keyURL(b, by),
			BaseStatus:  b.Status,
		})
		counts.Missing++
	}

	for _, k := range sortedKeys(upgByKey) {
		if consumed[k] {
			continue
		}
		if _, ok := baseByKey[k]; ok {
			continue
		}
		u := upgByKey[k]
		rows = append(rows, Row{
			BasePageURL: base.PageURL,
			UpgPageURL:  upg.PageURL,
			Kind:        Extra,
			LinkText:    u.Text,
			UpgURL:      keyURL(u, by),
			UpgStatus:   u.Status,
		})
		counts.Extra++
	}

	return rows, counts
}

func sortedKeys(m map[string]page.LinkRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func indexByKey(links []page.LinkRecord, by CompareBy) map[string]page.LinkRecord {
	m := make(map[string]page.LinkRecord, len(links))
	for _, r := range links {
		m[Key(r, by)] = r
	}
	return m
}

func textMap(links []page.LinkRecord, by CompareBy) map[string]map[string]bool {
	m := make(map[string]map[string]bool)
	for _, r := range links {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		if m[text] == nil {
			m[text] = make(map[string]bool)
		}
		m[text][Key(r, by)] = true
	}
	return m
}

func sortedCommonTexts(a, b map[string]map[string]bool) []string {
	var texts []string
	for t := range a {
		if _, ok := b[t]; ok {
			texts = append(texts, t)
		}
	}
	sort.Strings(texts)
	return texts
}

func sameKeySet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// joinTargets renders the distinct target URLs of a key set, sorted and
// pipe-joined, for a target-changed row.
func joinTargets(keys map[string]bool, byKey map[string]page.LinkRecord, by CompareBy) string {
	seen := make(map[string]bool)
	var targets []string
	for k := range keys {
		r, ok := byKey[k]
		if !ok {
			continue
		}
		t := keyURL(r, by)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return strings.Join(targets, " | ")
}
