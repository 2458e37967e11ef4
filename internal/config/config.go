package config

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/gobref/internal/errors"
)

var (
	validFormats  = []string{"json", "yaml"}
	validColors   = []string{"auto", "always", "never"}
	validKeyCases = []string{"", "preserve", "camel", "lower_camel", "snake", "screaming_snake", "kebab"}
)

// Config represents the complete configuration for gobref
type Config struct {
	Output OutputConfig `yaml:"output" toml:"output"`
	Parser ParserConfig `yaml:"parser" toml:"parser"`
	Keys   KeysConfig   `yaml:"keys" toml:"keys"`
	Query  string       `yaml:"query" toml:"query"`
	Dev    DevConfig    `yaml:"dev" toml:"dev"`
}

// OutputConfig controls how documents are written
type OutputConfig struct {
	Format  string `yaml:"format" toml:"format"`
	Indent  int    `yaml:"indent" toml:"indent"`
	Compact bool   `yaml:"compact" toml:"compact"`
	Color   string `yaml:"color" toml:"color"`
}

// ParserConfig controls parsing limits and strictness
type ParserConfig struct {
	MaxDepth           int  `yaml:"max_depth" toml:"max_depth"`
	StrictDeclarations bool `yaml:"strict_declarations" toml:"strict_declarations"`
}

// KeysConfig controls how object keys are rendered
type KeysConfig struct {
	Case     string            `yaml:"case" toml:"case"`
	Mappings map[string]string `yaml:"mappings" toml:"mappings"`
	Skip     []SkipRule        `yaml:"skip" toml:"skip"`
}

// SkipRule drops keys matching a pattern from the output
type SkipRule struct {
	Pattern string `yaml:"pattern" toml:"pattern"`
	Comment string `yaml:"comment,omitempty" toml:"comment,omitempty"`

	// compiled regex (not serialized)
	regex *regexp.Regexp
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug   bool `yaml:"debug" toml:"debug"`
	Verbose bool `yaml:"verbose" toml:"verbose"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: "json",
			Indent: 2,
			Color:  "auto",
		},
		Parser: ParserConfig{
			MaxDepth: 1000,
		},
		Keys: KeysConfig{
			Mappings: make(map[string]string),
			Skip:     []SkipRule{},
		},
	}
}

// LoadConfig loads configuration from a YAML or TOML file, chosen by extension
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("failed to read config file", err)
	}

	// Start with defaults
	cfg := NewConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, errors.NewConfigError("failed to parse config file", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.NewConfigError("failed to parse config file", err)
		}
	}

	if err := cfg.compilePatterns(); err != nil {
		return nil, errors.NewConfigError("failed to compile patterns", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{
		".gobref.yml", ".gobref.yaml", ".gobref.toml",
		"gobref.yml", "gobref.yaml", "gobref.toml",
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks enumerated settings and numeric limits
func (c *Config) Validate() error {
	if !slices.Contains(validFormats, c.Output.Format) {
		return errors.NewConfigError(
			fmt.Sprintf("invalid output format '%s' (expected one of %s)", c.Output.Format, strings.Join(validFormats, ", ")),
			errors.ErrUnsupportedFormat,
		)
	}
	if !slices.Contains(validColors, c.Output.Color) {
		return errors.NewConfigError(
			fmt.Sprintf("invalid color mode '%s' (expected one of %s)", c.Output.Color, strings.Join(validColors, ", ")),
			nil,
		)
	}
	if !slices.Contains(validKeyCases, c.Keys.Case) {
		return errors.NewConfigError(
			fmt.Sprintf("invalid key case '%s' (expected one of %s)", c.Keys.Case, strings.Join(validKeyCases[1:], ", ")),
			nil,
		)
	}
	if c.Output.Indent < 0 {
		return errors.NewConfigError(fmt.Sprintf("indent must not be negative, got %d", c.Output.Indent), nil)
	}
	if c.Parser.MaxDepth < 0 {
		return errors.NewConfigError(fmt.Sprintf("max_depth must not be negative, got %d", c.Parser.MaxDepth), nil)
	}
	return nil
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	for i := range c.Keys.Skip {
		rule := &c.Keys.Skip[i]
		regex, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return fmt.Errorf("invalid skip pattern '%s': %w", rule.Pattern, err)
		}
		rule.regex = regex
	}
	return nil
}

// MatchesKey checks if this skip rule matches the given key. A rule that was
// never compiled compiles its pattern per call and is left unchanged.
func (sr SkipRule) MatchesKey(key string) bool {
	regex := sr.regex
	if regex == nil {
		var err error
		if regex, err = regexp.Compile(sr.Pattern); err != nil {
			return false
		}
	}
	return regex.MatchString(key)
}

// KeyName returns the output name for a key: an explicit mapping wins,
// otherwise the configured case is applied
func (c *Config) KeyName(key string) string {
	if mapped, exists := c.Keys.Mappings[key]; exists {
		return mapped
	}

	switch c.Keys.Case {
	case "camel":
		return strcase.ToCamel(key)
	case "lower_camel":
		return strcase.ToLowerCamel(key)
	case "snake":
		return strcase.ToSnake(key)
	case "screaming_snake":
		return strcase.ToScreamingSnake(key)
	case "kebab":
		return strcase.ToKebab(key)
	default:
		return key
	}
}

// ShouldSkipKey checks if a key matches any skip rule
func (c *Config) ShouldSkipKey(key string) bool {
	for i := range c.Keys.Skip {
		if c.Keys.Skip[i].MatchesKey(key) {
			return true
		}
	}
	return false
}

// CLIOverrides holds values given on the command line. Zero values mean the
// flag was not given.
type CLIOverrides struct {
	Format   string
	Indent   int
	Compact  bool
	Color    string
	KeyCase  string
	Query    string
	MaxDepth int
	Strict   bool
	Debug    bool
	Verbose  bool
}

// MergeConfigs merges CLI overrides into a base config
// Non-empty values from override take precedence over base values
func MergeConfigs(base *Config, override CLIOverrides) *Config {
	merged := *base
	merged.Keys.Mappings = maps.Clone(base.Keys.Mappings)
	merged.Keys.Skip = slices.Clone(base.Keys.Skip)
	// Invalid patterns stay uncompiled and never match
	_ = merged.compilePatterns()

	if override.Format != "" {
		merged.Output.Format = override.Format
	}
	if override.Indent > 0 {
		merged.Output.Indent = override.Indent
	}
	if override.Color != "" {
		merged.Output.Color = override.Color
	}
	if override.KeyCase != "" {
		merged.Keys.Case = override.KeyCase
	}
	if override.Query != "" {
		merged.Query = override.Query
	}
	if override.MaxDepth > 0 {
		merged.Parser.MaxDepth = override.MaxDepth
	}

	// Boolean flags can only switch a setting on; a false flag is
	// indistinguishable from an absent one.
	merged.Output.Compact = merged.Output.Compact || override.Compact
	merged.Parser.StrictDeclarations = merged.Parser.StrictDeclarations || override.Strict
	merged.Dev.Debug = merged.Dev.Debug || override.Debug
	merged.Dev.Verbose = merged.Dev.Verbose || override.Verbose

	return &merged
}

// LoadConfigWithCLI loads config with CLI argument precedence:
// CLI > config file > defaults
func LoadConfigWithCLI(configPath string, overrides CLIOverrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	merged := MergeConfigs(cfg, overrides)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}
