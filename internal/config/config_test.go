package config

import (
	"errors"
	"testing"
)

func validCrawlConfig() *Config {
	cfg := DefaultConfig()
	cfg.StartURL = "https://example.com"
	return cfg
}

func validCompareConfig() *Config {
	cfg := DefaultConfig()
	cfg.BaselineURL = "https://old.example.com"
	cfg.UpgradedURL = "https://new.example.com"
	return cfg
}

func TestValidateModes(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"no mode", func(c *Config) { c.StartURL = "" }, ErrNoMode},
		{"both modes", func(c *Config) { c.BaselineURL = "https://old.example.com"; c.UpgradedURL = "https://new.example.com" }, ErrBothModes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validCrawlConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.BaselineURL = "https://old.example.com" // no upgraded URL
	if err := cfg.Validate(); !errors.Is(err, ErrHalfComparePair) {
		t.Errorf("half compare pair: Validate() = %v, want %v", err, ErrHalfComparePair)
	}
}

func TestValidateAcceptsGoodConfigs(t *testing.T) {
	if err := validCrawlConfig().Validate(); err != nil {
		t.Errorf("crawl config should validate: %v", err)
	}
	if err := validCompareConfig().Validate(); err != nil {
		t.Errorf("compare config should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative URL", func(c *Config) { c.StartURL = "/just/a/path" }},
		{"ftp scheme", func(c *Config) { c.StartURL = "ftp://example.com" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"empty output", func(c *Config) { c.Output = "" }},
		{"unknown format", func(c *Config) { c.Format = "csv" }},
		{"unknown renderer", func(c *Config) { c.Renderer = "firefox" }},
		{"bad include pattern", func(c *Config) { c.PatternInclude = "([unclosed" }},
		{"bad exclude pattern", func(c *Config) { c.PatternExclude = "([unclosed" }},
		{"bad compare key", func(c *Config) { c.CompareBy = "text" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validCrawlConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should have failed")
			}
		})
	}
}

func TestValidateClampsBudgets(t *testing.T) {
	cfg := validCrawlConfig()
	cfg.MaxPages = 0
	cfg.MaxDepth = -1
	cfg.MaxTotalLinks = -5
	cfg.Delay = -1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if cfg.MaxPages != 1 || cfg.MaxDepth != 0 || cfg.MaxTotalLinks != 1 || cfg.Delay != 0 {
		t.Errorf("budgets not clamped: %+v", cfg)
	}
}

func TestValidateForcesAbsURLWithoutResolution(t *testing.T) {
	cfg := validCompareConfig()
	cfg.ResolveLinks = false
	cfg.CompareBy = CompareByFinalURL
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if cfg.CompareBy != CompareByAbsoluteURL {
		t.Errorf("expected compare key forced to %s, got %s", CompareByAbsoluteURL, cfg.CompareBy)
	}
}

func TestValidateCompilesPatterns(t *testing.T) {
	cfg := validCrawlConfig()
	cfg.PatternInclude = "/docs/"
	cfg.PatternExclude = `\.pdf$`
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	// Patterns match case-insensitively as substrings.
	if !cfg.IncludeRegexp().MatchString("https://example.com/DOCS/intro") {
		t.Error("include pattern should match case-insensitively")
	}
	if !cfg.ExcludeRegexp().MatchString("https://example.com/file.PDF") {
		t.Error("exclude pattern should match case-insensitively")
	}
}

func TestSeedURL(t *testing.T) {
	if got := validCrawlConfig().SeedURL(); got != "https://example.com" {
		t.Errorf("SeedURL() = %q", got)
	}
	if got := validCompareConfig().SeedURL(); got != "https://old.example.com" {
		t.Errorf("compare SeedURL() = %q, want baseline", got)
	}
}

func TestCompareMode(t *testing.T) {
	if validCrawlConfig().CompareMode() {
		t.Error("crawl config reported compare mode")
	}
	if !validCompareConfig().CompareMode() {
		t.Error("compare config did not report compare mode")
	}
}
