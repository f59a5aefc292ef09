package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.3", "2026-08-30T10:00:00Z")

	expected := "1.2.3 (built 2026-08-30T10:00:00Z)"
	if rootCmd.Version != expected {
		t.Errorf("Expected version %s, got %s", expected, rootCmd.Version)
	}
}

func TestInitConfig(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "linkparity.yml")

	configContent := `
concurrency: 5
delay: 2s
user_agent: "TestAgent/1.0"
`
	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	cfgFile = configFile
	defer func() {
		cfgFile = ""
		viper.Reset()
	}()

	initConfig()

	if viper.ConfigFileUsed() != configFile {
		t.Errorf("Expected config file %s, got %s", configFile, viper.ConfigFileUsed())
	}
	if viper.GetInt("concurrency") != 5 {
		t.Errorf("Expected concurrency 5, got %d", viper.GetInt("concurrency"))
	}
	if viper.GetString("user_agent") != "TestAgent/1.0" {
		t.Errorf("Unexpected user agent %q", viper.GetString("user_agent"))
	}
}

func TestRootCmdFlags(t *testing.T) {
	for _, name := range []string{
		"baseline", "upgraded", "out", "format", "database",
		"max-pages", "depth", "max-links-per-page", "max-total-links",
		"delay", "concurrency", "timeout", "user-agent",
		"same-domain-only", "include-subdomains", "keep-query", "include-fragments",
		"pattern-include", "pattern-exclude",
		"respect-robots", "no-resolve", "compare-by",
		"renderer", "headful", "pause-on-first",
		"log-level", "log-file", "show-config",
	} {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("missing flag --%s", name)
		}
	}
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("missing persistent flag --config")
	}
}

func TestRootCmdMetadata(t *testing.T) {
	if rootCmd.Use != "linkparity [startURL]" {
		t.Errorf("unexpected Use %q", rootCmd.Use)
	}
	if rootCmd.RunE == nil {
		t.Error("rootCmd must have a RunE")
	}
}
