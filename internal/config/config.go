package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the top-level configuration for rvenc.
type Config struct {
	// Corpus selects the instruction definition files.
	Corpus CorpusConfig `json:"corpus,omitempty"`

	// ExtensionsFile optionally overrides the built-in extension-name table.
	ExtensionsFile string `json:"extensionsFile,omitempty"`

	// Site controls static-site output.
	Site SiteConfig `json:"site,omitempty"`

	// Lint controls policy rule severities.
	Lint LintConfig `json:"lint,omitempty"`

	// Analysis contains pipeline options.
	Analysis AnalysisConfig `json:"analysis,omitempty"`
}

// CorpusConfig selects the YAML instruction definitions to process.
type CorpusConfig struct {
	// Files is a list of glob patterns (supporting **) for definition files.
	Files []string `json:"files,omitempty"`

	// Exclude is a list of glob patterns to leave out.
	Exclude []string `json:"exclude,omitempty"`
}

// SiteConfig controls the generated site.
type SiteConfig struct {
	// OutputDir is where the site is written.
	OutputDir string `json:"outputDir,omitempty"`

	// Title is the site title on the index page.
	Title string `json:"title,omitempty"`
}

// LintConfig contains policy rule configuration.
type LintConfig struct {
	// Rules maps rule names to severity: "off", "warning", "error".
	Rules map[string]string `json:"rules,omitempty"`
}

// CacheConfig controls the resolved-results cache.
type CacheConfig struct {
	// Enabled turns on the read-through cache.
	Enabled *bool `json:"enabled,omitempty"`

	// Dir is the cache directory (relative to the corpus root if not absolute).
	Dir string `json:"dir,omitempty"`
}

// AnalysisConfig contains pipeline options.
type AnalysisConfig struct {
	// MaxParallelFiles limits concurrent file processing (0 = unbounded).
	MaxParallelFiles int `json:"maxParallelFiles,omitempty"`

	// Cache controls the resolved-results cache.
	Cache CacheConfig `json:"cache,omitempty"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Files: []string{"*.yaml", "*.yml", "**/*.yaml", "**/*.yml"},
		},
		Site: SiteConfig{
			OutputDir: "site",
			Title:     "Instruction Encodings",
		},
		Lint: LintConfig{
			Rules: map[string]string{},
		},
		Analysis: AnalysisConfig{
			MaxParallelFiles: 0,
			Cache: CacheConfig{
				Enabled: boolPtr(true),
				Dir:     ".rvenc_cache",
			},
		},
	}
}

func boolPtr(v bool) *bool {
	return &v
}

// Load finds and loads the configuration file.
// Search order:
//  1. ./rvenc.json (current working directory)
//  2. ./.rvenc.json (current working directory)
//  3. <rootPath>/rvenc.json (if different from cwd)
//  4. ~/.config/rvenc/config.json
//
// Returns DefaultConfig if no config file is found.
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "rvenc.json"),
		filepath.Join(cwd, ".rvenc.json"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "rvenc.json"),
				filepath.Join(rootPath, ".rvenc.json"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "rvenc", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.Corpus.Files) == 0 {
		c.Corpus.Files = []string{"*.yaml", "*.yml", "**/*.yaml", "**/*.yml"}
	}
	if c.Site.OutputDir == "" {
		c.Site.OutputDir = "site"
	}
	if c.Site.Title == "" {
		c.Site.Title = "Instruction Encodings"
	}
	if c.Lint.Rules == nil {
		c.Lint.Rules = make(map[string]string)
	}
	if c.Analysis.Cache.Dir == "" {
		c.Analysis.Cache.Dir = ".rvenc_cache"
	}
	if c.Analysis.Cache.Enabled == nil {
		c.Analysis.Cache.Enabled = boolPtr(true)
	}
}

// Save writes the configuration to a file.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// RuleSeverity returns the configured severity for a policy rule, or the
// rule's own default if not configured.
func (c *Config) RuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true unless the rule is set to "off".
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity != "off"
	}
	return true
}
