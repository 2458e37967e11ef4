package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/gobref/internal/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 2, cfg.Output.Indent)
	assert.Equal(t, "auto", cfg.Output.Color)
	assert.False(t, cfg.Output.Compact)
	assert.Equal(t, 1000, cfg.Parser.MaxDepth)
	assert.False(t, cfg.Parser.StrictDeclarations)
	assert.Empty(t, cfg.Keys.Case)
	assert.Empty(t, cfg.Query)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_LoadFromYAML(t *testing.T) {
	yamlContent := `
output:
  format: yaml
  indent: 4
  color: never
parser:
  max_depth: 50
  strict_declarations: true
keys:
  case: lower_camel
  mappings:
    "is_favorite": "favourite"
  skip:
    - pattern: "^_"
      comment: "private keys"
query: "title"
dev:
  debug: true
`
	cfg, err := LoadConfig(writeConfig(t, "config.yml", yamlContent))
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 4, cfg.Output.Indent)
	assert.Equal(t, "never", cfg.Output.Color)
	assert.Equal(t, 50, cfg.Parser.MaxDepth)
	assert.True(t, cfg.Parser.StrictDeclarations)
	assert.Equal(t, "lower_camel", cfg.Keys.Case)
	assert.Equal(t, "favourite", cfg.Keys.Mappings["is_favorite"])
	assert.Equal(t, "title", cfg.Query)
	assert.True(t, cfg.Dev.Debug)

	require.Len(t, cfg.Keys.Skip, 1)
	assert.Equal(t, "^_", cfg.Keys.Skip[0].Pattern)
	assert.Equal(t, "private keys", cfg.Keys.Skip[0].Comment)
}

func TestConfig_LoadFromTOML(t *testing.T) {
	tomlContent := `
query = "len(data)"

[output]
format = "json"
compact = true

[parser]
max_depth = 10

[keys]
case = "kebab"

[keys.mappings]
title = "name"

[[keys.skip]]
pattern = "secret"
`
	cfg, err := LoadConfig(writeConfig(t, "gobref.toml", tomlContent))
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.Compact)
	assert.Equal(t, 2, cfg.Output.Indent, "unset values keep their defaults")
	assert.Equal(t, 10, cfg.Parser.MaxDepth)
	assert.Equal(t, "kebab", cfg.Keys.Case)
	assert.Equal(t, "name", cfg.Keys.Mappings["title"])
	assert.Equal(t, "len(data)", cfg.Query)
	assert.True(t, cfg.ShouldSkipKey("my_secret"))
}

func TestConfig_LoadNonExistentFile(t *testing.T) {
	_, err := LoadConfig("/non/existent/config.yml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no such file or directory")
}

func TestConfig_LoadInvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantMsg string
	}{
		{
			name:    "invalid yaml",
			file:    "bad.yml",
			content: "output:\n  format: [unclosed array\n",
			wantMsg: "failed to parse config file",
		},
		{
			name:    "invalid toml",
			file:    "bad.toml",
			content: "[output\nformat = 1",
			wantMsg: "failed to parse config file",
		},
		{
			name:    "invalid skip pattern",
			file:    "pattern.yml",
			content: "keys:\n  skip:\n    - pattern: \"[invalid regex\"\n",
			wantMsg: "failed to compile patterns",
		},
		{
			name:    "invalid format",
			file:    "format.yml",
			content: "output:\n  format: xml\n",
			wantMsg: "invalid output format 'xml'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.file, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var appErr *errors.AppError
			require.True(t, stderrors.As(err, &appErr))
			assert.Equal(t, errors.ErrorTypeConfig, appErr.Type)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "yaml output", mutate: func(c *Config) { c.Output.Format = "yaml" }},
		{name: "bad format", mutate: func(c *Config) { c.Output.Format = "toml" }, wantErr: true},
		{name: "bad color", mutate: func(c *Config) { c.Output.Color = "sometimes" }, wantErr: true},
		{name: "bad key case", mutate: func(c *Config) { c.Keys.Case = "title" }, wantErr: true},
		{name: "preserve key case", mutate: func(c *Config) { c.Keys.Case = "preserve" }},
		{name: "negative indent", mutate: func(c *Config) { c.Output.Indent = -1 }, wantErr: true},
		{name: "negative depth", mutate: func(c *Config) { c.Parser.MaxDepth = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_FindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	nestedDir := filepath.Join(tmpDir, "project", "subdir")
	require.NoError(t, os.MkdirAll(nestedDir, 0o755))

	// Create config file in project root
	configPath := filepath.Join(tmpDir, "project", ".gobref.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`query = "found"`), 0o644))

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()
	require.NoError(t, os.Chdir(nestedDir))

	// Should find it in the parent directory
	foundPath := FindConfigFile()
	require.NotEmpty(t, foundPath, "Should find config file")

	foundContent, err := os.ReadFile(foundPath)
	require.NoError(t, err)
	assert.Contains(t, string(foundContent), `query = "found"`)
}

func TestConfig_FindConfigFileNotFound(t *testing.T) {
	tmpDir := t.TempDir()

	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(originalWd) }()
	require.NoError(t, os.Chdir(tmpDir))

	assert.Empty(t, FindConfigFile())
}

func TestSkipRule_MatchesKey(t *testing.T) {
	rule := SkipRule{Pattern: "^_"}

	assert.True(t, rule.MatchesKey("_id"))
	assert.True(t, rule.MatchesKey("_internal"))
	assert.False(t, rule.MatchesKey("id_"))
}

func TestSkipRule_InvalidPattern(t *testing.T) {
	rule := SkipRule{Pattern: "[invalid regex"}

	// Should not panic and should return false for invalid regex
	assert.False(t, rule.MatchesKey("anything"))
}

func TestMergeConfigs_DoesNotShareKeyRules(t *testing.T) {
	base := NewConfig()
	base.Keys.Skip = []SkipRule{{Pattern: "^secret$"}}
	base.Keys.Mappings["a"] = "b"

	merged := MergeConfigs(base, CLIOverrides{})
	merged.Keys.Skip[0].Pattern = "^other$"
	merged.Keys.Mappings["a"] = "c"

	assert.Equal(t, "^secret$", base.Keys.Skip[0].Pattern)
	assert.Equal(t, "b", base.Keys.Mappings["a"])
	assert.Nil(t, base.Keys.Skip[0].regex, "merging must not compile the base rules")
	assert.NotNil(t, merged.Keys.Skip[0].regex)
}

func TestConfig_ShouldSkipKeyConcurrent(t *testing.T) {
	base := NewConfig()
	base.Keys.Skip = []SkipRule{{Pattern: "^secret$"}, {Pattern: "^_"}}

	configs := []*Config{base, MergeConfigs(base, CLIOverrides{}), MergeConfigs(base, CLIOverrides{})}

	var wg sync.WaitGroup
	for _, cfg := range configs {
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.True(t, cfg.ShouldSkipKey("secret"))
				assert.True(t, cfg.ShouldSkipKey("_id"))
				assert.False(t, cfg.ShouldSkipKey("title"))
			}()
		}
	}
	wg.Wait()
}

func TestConfig_KeyName(t *testing.T) {
	tests := []struct {
		keyCase string
		key     string
		want    string
	}{
		{keyCase: "", key: "is_favorite", want: "is_favorite"},
		{keyCase: "preserve", key: "is_favorite", want: "is_favorite"},
		{keyCase: "camel", key: "is_favorite", want: "IsFavorite"},
		{keyCase: "lower_camel", key: "is_favorite", want: "isFavorite"},
		{keyCase: "snake", key: "releaseDate", want: "release_date"},
		{keyCase: "screaming_snake", key: "release_date", want: "RELEASE_DATE"},
		{keyCase: "kebab", key: "release_date", want: "release-date"},
	}

	for _, tt := range tests {
		t.Run(tt.keyCase+"/"+tt.key, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Keys.Case = tt.keyCase
			assert.Equal(t, tt.want, cfg.KeyName(tt.key))
		})
	}
}

func TestConfig_KeyNameMappingsTakePrecedence(t *testing.T) {
	cfg := NewConfig()
	cfg.Keys.Case = "camel"
	cfg.Keys.Mappings["is_favorite"] = "fav"

	assert.Equal(t, "fav", cfg.KeyName("is_favorite"))
	assert.Equal(t, "ReleaseDate", cfg.KeyName("release_date"))
}

func TestConfig_MergeWithCLI(t *testing.T) {
	base := NewConfig()
	base.Output.Format = "yaml"
	base.Output.Indent = 4
	base.Parser.StrictDeclarations = true
	base.Query = "title"

	merged := MergeConfigs(base, CLIOverrides{
		Format:  "json",
		Compact: true,
		Query:   "year",
	})

	assert.Equal(t, "json", merged.Output.Format)       // Overridden by CLI
	assert.Equal(t, 4, merged.Output.Indent)            // Kept from base
	assert.True(t, merged.Output.Compact)               // Overridden by CLI
	assert.True(t, merged.Parser.StrictDeclarations)    // Kept from base
	assert.Equal(t, "year", merged.Query)               // Overridden by CLI
	assert.Equal(t, "yaml", base.Output.Format, "base is not modified")
}

func TestLoadConfigWithPrecedence(t *testing.T) {
	path := writeConfig(t, "precedence.yml", `
output:
  format: yaml
  indent: 4
parser:
  max_depth: 20
`)

	cfg, err := LoadConfigWithCLI(path, CLIOverrides{Format: "json", MaxDepth: 5, Debug: true})
	require.NoError(t, err)

	// Verify precedence: CLI > config file > defaults
	assert.Equal(t, "json", cfg.Output.Format) // From CLI
	assert.Equal(t, 5, cfg.Parser.MaxDepth)    // From CLI
	assert.True(t, cfg.Dev.Debug)              // From CLI
	assert.Equal(t, 4, cfg.Output.Indent)      // From config file
	assert.Equal(t, "auto", cfg.Output.Color)  // Default value
}

func TestLoadConfigWithPrecedence_NoConfigFile(t *testing.T) {
	cfg, err := LoadConfigWithCLI("", CLIOverrides{})
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoadConfigWithCLI_InvalidOverride(t *testing.T) {
	_, err := LoadConfigWithCLI("", CLIOverrides{Color: "rainbow"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid color mode 'rainbow'")
}
