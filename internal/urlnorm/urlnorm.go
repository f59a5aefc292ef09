// Package urlnorm provides URL canonicalization and same-site
// classification for the crawler.
//
// A canonical URL is absolute, http or https, fragment-free, and carries a
// query only when query retention is enabled. Canonical equality is plain
// string equality, so canonical forms double as identity keys in the
// visited set and the diff engine.
package urlnorm

import (
	"net/url"
	"regexp"
	"strings"
)

var skipSchemes = []string{"javascript:", "mailto:", "tel:", "sms:", "data:"}

// IsUsefulHref reports whether an href is worth canonicalizing at all.
// Empty hrefs, non-navigational schemes, and pure-fragment hrefs (unless
// includeFragments is set) are rejected. Runs before Canonicalize.
func IsUsefulHref(href string, includeFragments bool) bool {
	href = strings.TrimSpace(href)
	if href == "" {
		return false
	}
	for _, s := range skipSchemes {
		if strings.HasPrefix(href, s) {
			return false
		}
	}
	if !includeFragments && strings.HasPrefix(href, "#") {
		return false
	}
	return true
}

// Canonicalize resolves href against baseURL and returns the canonical
// form, or "" when the resolved URL is not http/https or does not parse.
// A non-canonicalizable URL is a filtered URL, not an error.
//
// Canonicalization is idempotent: feeding a canonical URL back in (with an
// empty href) returns it unchanged.
func Canonicalize(baseURL, href string, keepQuery bool) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	if !keepQuery {
		abs.RawQuery = ""
	}
	return abs.String()
}

// HostCore lowercases a host and strips one leading "www." label. It is a
// deliberate approximation of registrable-domain matching that does not
// consult a public-suffix list.
func HostCore(host string) string {
	host = strings.ToLower(host)
	return strings.TrimPrefix(host, "www.")
}

// IsInternal reports whether rawURL belongs to the site identified by
// baseHost. Hosts match on HostCore equality; with includeSubdomains a
// host also matches when its core ends with "." + the base core, so
// a.b.example.com is internal to example.com but notexample.com is not.
func IsInternal(rawURL, baseHost string, includeSubdomains bool) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	core := HostCore(u.Host)
	baseCore := HostCore(baseHost)
	if core == baseCore {
		return true
	}
	return includeSubdomains && strings.HasSuffix(core, "."+baseCore)
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// SanitizeText collapses runs of whitespace, trims, and truncates to
// maxLen. Used for anchor text and page titles before they enter records.
func SanitizeText(s string, maxLen int) string {
	s = strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
	if maxLen > 0 {
		if r := []rune(s); len(r) > maxLen {
			s = string(r[:maxLen])
		}
	}
	return s
}
