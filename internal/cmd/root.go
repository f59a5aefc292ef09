// Package cmd provides the command-line interface for linkparity.
// It handles command parsing, configuration loading, and run execution.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/linkparity/linkparity/internal/config"
	"github.com/linkparity/linkparity/internal/crawler"
	"github.com/linkparity/linkparity/internal/fetch"
	"github.com/linkparity/linkparity/internal/logging"
	"github.com/linkparity/linkparity/internal/report"
)

// Page renders in the browser involve settle waits for hydration and
// lazy loading, so they get a longer budget than plain HTTP requests.
const chromePageTimeout = 35 * time.Second

var (
	cfgFile   string
	version   string
	buildTime string
)

var rootCmd = &cobra.Command{
	Use:   "linkparity [startURL]",
	Short: "Crawl a site's link graph, or diff it against an upgraded deployment",
	Long: `linkparity discovers the link graph of a web site by breadth-first
traversal and catalogs every link it finds, or compares the link graphs
of a baseline and an upgraded deployment of the same pages and reports
only the differences (missing, extra, and wrong links).

Single-site crawl:
  linkparity https://www.example.com --out site_links_report.xlsx \
    --max-pages 40 --depth 2 --delay 600ms --respect-robots

Compare baseline vs upgraded:
  linkparity --baseline https://old.example.com \
    --upgraded https://new.example.com --out link_diff_report.xlsx`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

// Execute runs the root command with ctx as the run's lifetime.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersionInfo sets version information for the CLI.
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./linkparity.yml)")
	rootCmd.Flags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	// Mode
	rootCmd.Flags().String("baseline", "", "Baseline site start URL (compare mode)")
	rootCmd.Flags().String("upgraded", "", "Upgraded site base URL (compare mode)")

	// Output
	rootCmd.Flags().StringP("out", "o", "site_links_report.xlsx", "Output workbook path")
	rootCmd.Flags().String("format", config.FormatXLSX, "Report format: xlsx, sqlite or both")
	rootCmd.Flags().StringP("database", "d", "./linkparity.db", "SQLite report path (format sqlite/both)")

	// Budgets
	rootCmd.Flags().Int("max-pages", 30, "Max number of pages to crawl")
	rootCmd.Flags().Int("depth", 2, "Max crawl depth from the start URL")
	rootCmd.Flags().Int("max-links-per-page", 300, "Max link records per page")
	rootCmd.Flags().Int("max-total-links", 3000, "Global max link records")

	// Politeness and networking
	rootCmd.Flags().DurationP("delay", "r", 500*time.Millisecond, "Delay between page fetches per host")
	rootCmd.Flags().IntP("concurrency", "c", 1, "Number of concurrent page workers")
	rootCmd.Flags().DurationP("timeout", "t", 8*time.Second, "HTTP request timeout")
	rootCmd.Flags().StringP("user-agent", "u", "Mozilla/5.0 (compatible; LinkParity/1.0)", "HTTP User-Agent header")

	// Scoping
	rootCmd.Flags().Bool("same-domain-only", true, "Restrict the crawl to the start domain")
	rootCmd.Flags().Bool("include-subdomains", false, "Treat subdomains as internal")
	rootCmd.Flags().Bool("keep-query", false, "Do not strip query params during normalization")
	rootCmd.Flags().Bool("include-fragments", false, "Include #fragment-only links on pages")
	rootCmd.Flags().String("pattern-include", "", "Regex; only URLs matching are crawled")
	rootCmd.Flags().String("pattern-exclude", "", "Regex; URLs matching are excluded from the crawl")

	// Behavior
	rootCmd.Flags().Bool("respect-robots", false, "Obey robots.txt")
	rootCmd.Flags().Bool("no-resolve", false, "Skip resolving final URLs and statuses (faster)")
	rootCmd.Flags().String("compare-by", config.CompareByFinalURL,
		fmt.Sprintf("Link identity for diffing: %s or %s", config.CompareByFinalURL, config.CompareByAbsoluteURL))

	// Fetcher
	rootCmd.Flags().String("renderer", config.RendererHTTP, "Page fetcher: http or chrome")
	rootCmd.Flags().Bool("headful", false, "Run a visible browser (renderer chrome)")
	rootCmd.Flags().Bool("pause-on-first", false, "Open the start URL and wait for ENTER before crawling (login etc.)")

	// Logging
	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().String("log-file", "", "Log file path (console only when empty)")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"baseline_url", "baseline"},
		{"upgraded_url", "upgraded"},
		{"output", "out"},
		{"format", "format"},
		{"database_path", "database"},
		{"max_pages", "max-pages"},
		{"max_depth", "depth"},
		{"max_links_per_page", "max-links-per-page"},
		{"max_total_links", "max-total-links"},
		{"delay", "delay"},
		{"concurrency", "concurrency"},
		{"request_timeout", "timeout"},
		{"user_agent", "user-agent"},
		{"same_domain_only", "same-domain-only"},
		{"include_subdomains", "include-subdomains"},
		{"keep_query", "keep-query"},
		{"include_fragments", "include-fragments"},
		{"pattern_include", "pattern-include"},
		{"pattern_exclude", "pattern-exclude"},
		{"respect_robots", "respect-robots"},
		{"compare_by", "compare-by"},
		{"renderer", "renderer"},
		{"headful", "headful"},
		{"pause_on_first", "pause-on-first"},
		{"log_level", "log-level"},
		{"log_file", "log-file"},
	}
	for _, bind := range bindFlags {
		if err := viper.BindPFlag(bind.viperKey, rootCmd.Flags().Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}
}

// initConfig reads in the config file and matching environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("linkparity")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("LP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func showCurrentConfig(cfg *config.Config) error {
	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Printf("# Current linkparity configuration\n")
	fmt.Printf("# Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("# Config file search path: ./linkparity.yml, env prefix: LP_\n\n")
	fmt.Print(string(yamlData))
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(args) == 1 {
		cfg.StartURL = args[0]
	}
	if noResolve, _ := cmd.Flags().GetBool("no-resolve"); noResolve {
		cfg.ResolveLinks = false
	}

	if showConfig, _ := cmd.Flags().GetBool("show-config"); showConfig {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: configuration validation failed: %v\n\n", err)
		}
		return showCurrentConfig(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.Setup(logging.Options{
		Level:    cfg.LogLevel,
		FilePath: cfg.LogFile,
		MaxSize:  logging.DefaultOptions().MaxSize,
		Backups:  logging.DefaultOptions().Backups,
	}); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	return runCrawl(cmd.Context(), cfg)
}

func runCrawl(ctx context.Context, cfg *config.Config) error {
	fetcher, err := newFetcher(cfg)
	if err != nil {
		// The one fatal failure: the fetcher driver could not start.
		return err
	}
	defer func() { _ = fetcher.Close() }()

	resolver := fetch.NewHTTPResolver(cfg.UserAgent, cfg.RequestTimeout)
	defer func() { _ = resolver.Close() }()

	sink, err := newSink(cfg)
	if err != nil {
		return err
	}

	if cfg.PauseOnFirst {
		if err := pauseOnFirst(ctx, fetcher, cfg.SeedURL()); err != nil {
			_ = sink.Close()
			return err
		}
	}

	c, err := crawler.New(cfg, fetcher, resolver, sink)
	if err != nil {
		_ = sink.Close()
		return err
	}

	runErr := c.Run(ctx)
	closeErr := sink.Close()
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("failed to finalize report: %w", closeErr)
	}

	stats := c.Stats()
	if cfg.CompareMode() {
		fmt.Printf("Compare complete: %d baseline page(s) assessed\n", stats.PagesVisited)
		fmt.Printf("Differences: %d missing, %d extra, %d wrong\n",
			stats.Diff.Missing, stats.Diff.Extra, stats.Diff.Wrong)
	} else {
		fmt.Printf("Crawl complete: %d page(s) visited, %d link(s) captured\n",
			stats.PagesVisited, stats.LinksCaptured)
	}
	if cfg.Format != config.FormatSQLite {
		fmt.Printf("Report saved: %s\n", cfg.Output)
	}
	if cfg.Format != config.FormatXLSX {
		fmt.Printf("Database saved: %s\n", cfg.DatabasePath)
	}
	return nil
}

func newFetcher(cfg *config.Config) (crawler.Fetcher, error) {
	if cfg.Renderer == config.RendererChrome {
		return fetch.NewChromeFetcher(cfg.UserAgent, chromePageTimeout, cfg.Headful)
	}
	return fetch.NewHTTPFetcher(cfg.UserAgent, cfg.RequestTimeout), nil
}

func newSink(cfg *config.Config) (crawler.Sink, error) {
	var sinks []crawler.Sink

	if cfg.Format == config.FormatXLSX || cfg.Format == config.FormatBoth {
		var excel *report.ExcelSink
		var err error
		if cfg.CompareMode() {
			excel, err = report.NewCompareExcelSink(cfg.Output)
		} else {
			seed, _ := url.Parse(cfg.StartURL)
			excel, err = report.NewCrawlExcelSink(cfg.Output, seed.Host, cfg.IncludeSubdomains)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create workbook: %w", err)
		}
		sinks = append(sinks, excel)
	}

	if cfg.Format == config.FormatSQLite || cfg.Format == config.FormatBoth {
		db, err := report.NewSQLiteSink(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open report database: %w", err)
		}
		sinks = append(sinks, db)
	}

	return report.NewMultiSink(sinks...), nil
}

// pauseOnFirst opens the start URL and waits for ENTER, so an operator
// can log in or solve a CAPTCHA before the crawl starts. Most useful
// with --renderer chrome --headful, where the session persists.
func pauseOnFirst(ctx context.Context, fetcher crawler.Fetcher, seedURL string) error {
	if cf, ok := fetcher.(*fetch.ChromeFetcher); ok {
		if err := cf.Open(ctx, seedURL); err != nil {
			return fmt.Errorf("failed to open start URL: %w", err)
		}
	}
	fmt.Print("Press ENTER to start the crawl...")
	_, err := bufio.NewReader(os.Stdin).ReadString('\n')
	return err
}
