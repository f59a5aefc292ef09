package urlnorm

import (
	"strings"
	"testing"
)

func TestIsUsefulHref(t *testing.T) {
	tests := []struct {
		name             string
		href             string
		includeFragments bool
		want             bool
	}{
		{"empty", "", false, false},
		{"whitespace only", "   ", false, false},
		{"javascript scheme", "javascript:void(0)", false, false},
		{"mailto scheme", "mailto:info@example.com", false, false},
		{"tel scheme", "tel:+1234567890", false, false},
		{"sms scheme", "sms:+1234567890", false, false},
		{"data scheme", "data:text/html,hello", false, false},
		{"fragment only", "#section", false, false},
		{"fragment only, fragments included", "#section", true, true},
		{"relative path", "/about", false, true},
		{"absolute url", "https://example.com/page", false, true},
		{"path with fragment", "/about#team", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUsefulHref(tt.href, tt.includeFragments); got != tt.want {
				t.Errorf("IsUsefulHref(%q, %v) = %v, want %v", tt.href, tt.includeFragments, got, tt.want)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		href      string
		keepQuery bool
		want      string
	}{
		{"relative path", "https://example.com/docs/", "guide", false, "https://example.com/docs/guide"},
		{"root relative", "https://example.com/docs/page", "/about", false, "https://example.com/about"},
		{"absolute href", "https://example.com/", "https://other.com/x", false, "https://other.com/x"},
		{"strips fragment", "https://example.com/", "/page#section", false, "https://example.com/page"},
		{"strips fragment with query kept", "https://example.com/", "/page?a=1#frag", true, "https://example.com/page?a=1"},
		{"strips query by default", "https://example.com/", "/page?a=1&b=2", false, "https://example.com/page"},
		{"keeps query when enabled", "https://example.com/", "/page?a=1&b=2", true, "https://example.com/page?a=1&b=2"},
		{"ftp filtered", "https://example.com/", "ftp://example.com/file", false, ""},
		{"protocol relative", "https://example.com/", "//cdn.example.com/lib.js", false, "https://cdn.example.com/lib.js"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.base, tt.href, tt.keepQuery); got != tt.want {
				t.Errorf("Canonicalize(%q, %q, %v) = %q, want %q", tt.base, tt.href, tt.keepQuery, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	urls := []string{
		"https://example.com/",
		"https://example.com/docs/guide",
		"http://www.example.com/a/b",
		"https://example.com/page?a=1",
	}
	for _, keepQuery := range []bool{false, true} {
		for _, u := range urls {
			first := Canonicalize(u, "", keepQuery)
			if first == "" {
				t.Fatalf("Canonicalize(%q) unexpectedly filtered", u)
			}
			second := Canonicalize(first, "", keepQuery)
			if first != second {
				t.Errorf("not idempotent: %q -> %q -> %q", u, first, second)
			}
		}
	}
}

func TestHostCore(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"WWW.Example.COM", "example.com"},
		{"www.www.example.com", "www.example.com"}, // only one www stripped
		{"shop.example.com", "shop.example.com"},
	}
	for _, tt := range tests {
		if got := HostCore(tt.host); got != tt.want {
			t.Errorf("HostCore(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestIsInternal(t *testing.T) {
	tests := []struct {
		name              string
		rawURL            string
		baseHost          string
		includeSubdomains bool
		want              bool
	}{
		{"same host", "https://example.com/x", "example.com", false, true},
		{"www vs bare", "https://www.example.com/x", "example.com", false, true},
		{"bare vs www base", "https://example.com/x", "www.example.com", false, true},
		{"subdomain excluded", "https://shop.example.com/x", "example.com", false, false},
		{"subdomain included", "https://shop.example.com/x", "example.com", true, true},
		{"nested subdomain included", "https://a.b.example.com/x", "example.com", true, true},
		{"suffix collision", "https://notexample.com/x", "example.com", true, false},
		{"external host", "https://other.com/x", "example.com", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInternal(tt.rawURL, tt.baseHost, tt.includeSubdomains); got != tt.want {
				t.Errorf("IsInternal(%q, %q, %v) = %v, want %v", tt.rawURL, tt.baseHost, tt.includeSubdomains, got, tt.want)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	if got := SanitizeText("  hello\n\t  world  ", 0); got != "hello world" {
		t.Errorf("expected collapsed whitespace, got %q", got)
	}
	long := strings.Repeat("ab", 200)
	if got := SanitizeText(long, 250); len([]rune(got)) != 250 {
		t.Errorf("expected truncation to 250 runes, got %d", len([]rune(got)))
	}
	// Truncation must not split multibyte runes.
	if got := SanitizeText(strings.Repeat("é", 10), 5); got != strings.Repeat("é", 5) {
		t.Errorf("rune truncation wrong: %q", got)
	}
}
