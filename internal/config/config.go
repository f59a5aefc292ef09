// Package config provides configuration management for linkparity.
// It defines the run options for both crawl modes and their defaults.
package config

import (
	"fmt"
	"net/url"
	"regexp"
	"time"
)

// Renderer names the page-fetcher implementation to use.
const (
	RendererHTTP   = "http"
	RendererChrome = "chrome"
)

// Output formats.
const (
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
	FormatBoth   = "both"
)

// Compare key choices.
const (
	CompareByFinalURL    = "final-url"
	CompareByAbsoluteURL = "abs-url"
)

// Config holds every knob for one crawl or compare run.
type Config struct {
	// Mode selection: StartURL for a single-site crawl, or BaselineURL +
	// UpgradedURL for a compare run.
	StartURL    string `mapstructure:"start_url" yaml:"start_url"`
	BaselineURL string `mapstructure:"baseline_url" yaml:"baseline_url"`
	UpgradedURL string `mapstructure:"upgraded_url" yaml:"upgraded_url"`

	// Output
	Output       string `mapstructure:"output" yaml:"output"`                 // report path (xlsx)
	Format       string `mapstructure:"format" yaml:"format"`                 // xlsx, sqlite or both
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`   // sqlite report path

	// Budgets
	MaxPages        int `mapstructure:"max_pages" yaml:"max_pages"`
	MaxDepth        int `mapstructure:"max_depth" yaml:"max_depth"`
	MaxLinksPerPage int `mapstructure:"max_links_per_page" yaml:"max_links_per_page"`
	MaxTotalLinks   int `mapstructure:"max_total_links" yaml:"max_total_links"`

	// Politeness and networking
	Delay          time.Duration `mapstructure:"delay" yaml:"delay"`
	Concurrency    int           `mapstructure:"concurrency" yaml:"concurrency"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`

	// URL scoping
	SameDomainOnly    bool   `mapstructure:"same_domain_only" yaml:"same_domain_only"`
	IncludeSubdomains bool   `mapstructure:"include_subdomains" yaml:"include_subdomains"`
	KeepQuery         bool   `mapstructure:"keep_query" yaml:"keep_query"`
	IncludeFragments  bool   `mapstructure:"include_fragments" yaml:"include_fragments"`
	PatternInclude    string `mapstructure:"pattern_include" yaml:"pattern_include"`
	PatternExclude    string `mapstructure:"pattern_exclude" yaml:"pattern_exclude"`

	// Behavior toggles
	RespectRobots bool   `mapstructure:"respect_robots" yaml:"respect_robots"`
	ResolveLinks  bool   `mapstructure:"resolve_links" yaml:"resolve_links"`
	CompareBy     string `mapstructure:"compare_by" yaml:"compare_by"`

	// Fetcher selection
	Renderer     string `mapstructure:"renderer" yaml:"renderer"`
	Headful      bool   `mapstructure:"headful" yaml:"headful"`
	PauseOnFirst bool   `mapstructure:"pause_on_first" yaml:"pause_on_first"`

	// Logging
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`

	includeRE *regexp.Regexp
	excludeRE *regexp.Regexp
}

// DefaultConfig returns a configuration with default values, mirroring
// the defaults of the report tool this replaces.
func DefaultConfig() *Config {
	return &Config{
		Output:          "site_links_report.xlsx",
		Format:          FormatXLSX,
		DatabasePath:    "./linkparity.db",
		MaxPages:        30,
		MaxDepth:        2,
		MaxLinksPerPage: 300,
		MaxTotalLinks:   3000,
		Delay:           500 * time.Millisecond,
		Concurrency:     1,
		RequestTimeout:  8 * time.Second,
		UserAgent:       "Mozilla/5.0 (compatible; LinkParity/1.0)",
		SameDomainOnly:  true,
		RespectRobots:   false,
		ResolveLinks:    true,
		CompareBy:       CompareByFinalURL,
		Renderer:        RendererHTTP,
		LogLevel:        "info",
	}
}

// CompareMode reports whether this run diffs a baseline against an
// upgraded deployment rather than cataloging a single site.
func (c *Config) CompareMode() bool {
	return c.BaselineURL != "" && c.UpgradedURL != ""
}

// SeedURL returns the URL the BFS starts from: the start URL in
// single-site mode, the baseline URL in compare mode.
func (c *Config) SeedURL() string {
	if c.CompareMode() {
		return c.BaselineURL
	}
	return c.StartURL
}

// Validate checks the configuration, compiles the URL patterns, and
// normalizes dependent options. A compare key of final-url is forced to
// abs-url when resolution is disabled, because final URLs are meaningless
// without it.
func (c *Config) Validate() error {
	switch {
	case c.StartURL == "" && c.BaselineURL == "" && c.UpgradedURL == "":
		return ErrNoMode
	case c.StartURL != "" && (c.BaselineURL != "" || c.UpgradedURL != ""):
		return ErrBothModes
	case c.StartURL == "" && !c.CompareMode():
		return ErrHalfComparePair
	}

	for _, u := range []string{c.StartURL, c.BaselineURL, c.UpgradedURL} {
		if u == "" {
			continue
		}
		parsed, err := url.Parse(u)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid URL %q: need an absolute http(s) URL", u)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("invalid URL %q: scheme must be http or https", u)
		}
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Format != FormatSQLite && c.Output == "" {
		return ErrEmptyOutput
	}
	if c.Format != FormatXLSX && c.Format != FormatSQLite && c.Format != FormatBoth {
		return fmt.Errorf("invalid format %q: use xlsx, sqlite or both", c.Format)
	}
	if c.Renderer != RendererHTTP && c.Renderer != RendererChrome {
		return fmt.Errorf("invalid renderer %q: use http or chrome", c.Renderer)
	}

	if c.MaxPages <= 0 {
		c.MaxPages = 1
	}
	if c.MaxDepth < 0 {
		c.MaxDepth = 0
	}
	if c.MaxLinksPerPage < 0 {
		c.MaxLinksPerPage = 0
	}
	if c.MaxTotalLinks <= 0 {
		c.MaxTotalLinks = 1
	}
	if c.Delay < 0 {
		c.Delay = 0
	}

	if !c.ResolveLinks && c.CompareBy == CompareByFinalURL {
		c.CompareBy = CompareByAbsoluteURL
	}
	if c.CompareBy != CompareByFinalURL && c.CompareBy != CompareByAbsoluteURL {
		return fmt.Errorf("invalid compare key %q: use %s or %s", c.CompareBy, CompareByFinalURL, CompareByAbsoluteURL)
	}

	var err error
	if c.PatternInclude != "" {
		// Case-insensitive substring search, not a full match.
		if c.includeRE, err = regexp.Compile("(?i)" + c.PatternInclude); err != nil {
			return fmt.Errorf("invalid include pattern: %w", err)
		}
	}
	if c.PatternExclude != "" {
		if c.excludeRE, err = regexp.Compile("(?i)" + c.PatternExclude); err != nil {
			return fmt.Errorf("invalid exclude pattern: %w", err)
		}
	}

	return nil
}

// IncludeRegexp returns the compiled include pattern, or nil when unset.
// Valid only after Validate.
func (c *Config) IncludeRegexp() *regexp.Regexp { return c.includeRE }

// ExcludeRegexp returns the compiled exclude pattern, or nil when unset.
// Valid only after Validate.
func (c *Config) ExcludeRegexp() *regexp.Regexp { return c.excludeRE }
