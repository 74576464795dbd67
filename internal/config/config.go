// Package config loads the keytheme configuration from defaults, an optional
// YAML rules file, the environment (including a .env file) and CLI flags.
package config

import (
	"fmt"
	"strings"

	"github.com/kataras/figma-keytheme/pkg/extractor"
	"github.com/kataras/figma-keytheme/pkg/figma"
)

// Config is the complete keytheme configuration.
type Config struct {
	APIToken string   `mapstructure:"api_token"`
	FileKey  string   `mapstructure:"file_key"`
	NodeIDs  []string `mapstructure:"node_ids"`
	URL      string   `mapstructure:"url"`

	Cache  string `mapstructure:"cache"`
	Output string `mapstructure:"output"`

	Theme        MatcherConfig `mapstructure:"theme"`
	Key          MatcherConfig `mapstructure:"key"`
	Attribute    string        `mapstructure:"attribute"`
	ColorFormat  string        `mapstructure:"color_format"`
	DefaultTheme string        `mapstructure:"default_theme"`
	ColumnOrder  []string      `mapstructure:"column_order"`
}

// MatcherConfig configures a theme or key predicate.
type MatcherConfig struct {
	Match   string   `mapstructure:"match"`
	Pattern string   `mapstructure:"pattern"`
	Depth   int      `mapstructure:"depth"`
	Types   []string `mapstructure:"types"`
}

// MatchNone disables theme detection: every key is assigned the default theme.
const MatchNone = "none"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cache:        "figma_nodes.json",
		Output:       "Output/KeyTheme.csv",
		Theme:        MatcherConfig{Match: extractor.MatchDepth, Depth: 1},
		Key:          MatcherConfig{Match: extractor.MatchLeaf},
		Attribute:    string(extractor.AttrFill),
		ColorFormat:  string(extractor.FormatHex),
		DefaultTheme: extractor.DefaultTheme,
	}
}

// ResolveURL fills FileKey and NodeIDs from URL when they are not set explicitly.
func (c *Config) ResolveURL() error {
	if c.URL == "" {
		return nil
	}
	if c.FileKey == "" {
		key, err := figma.ExtractFileKey(c.URL)
		if err != nil {
			return err
		}
		c.FileKey = key
	}
	if len(c.NodeIDs) == 0 {
		ids, err := figma.ExtractNodeIDs(c.URL)
		if err != nil {
			return err
		}
		c.NodeIDs = ids
	}
	return nil
}

// ValidateFetch checks the values needed to call the API.
func (c *Config) ValidateFetch() error {
	var missing []string
	if c.APIToken == "" {
		missing = append(missing, "API token (FIGMA_API_TOKEN or --token)")
	}
	if c.FileKey == "" {
		missing = append(missing, "file key (FIGMA_FILE_KEY, --file-key or --url)")
	}
	if len(c.NodeIDs) == 0 {
		missing = append(missing, "node ids (FIGMA_NODE_IDS, --node-ids or --url)")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Validate checks the transform settings by building the rules once.
func (c *Config) Validate() error {
	if _, err := c.Rules(); err != nil {
		return err
	}
	if c.Cache == "" {
		return fmt.Errorf("cache path must not be empty")
	}
	if c.Output == "" {
		return fmt.Errorf("output path must not be empty")
	}
	return nil
}

// Rules builds the extraction rules described by the configuration.
func (c *Config) Rules() (extractor.Rules, error) {
	rules := extractor.Rules{DefaultTheme: c.DefaultTheme}

	if c.Theme.Match != MatchNone {
		theme, err := extractor.NewMatcher(c.Theme.spec(), extractor.GroupTheme)
		if err != nil {
			return rules, fmt.Errorf("theme: %w", err)
		}
		rules.Theme = theme
	}

	key, err := extractor.NewMatcher(c.Key.spec(), extractor.GroupKey)
	if err != nil {
		return rules, fmt.Errorf("key: %w", err)
	}
	rules.Key = key

	if rules.Attribute, err = extractor.ParseAttribute(c.Attribute); err != nil {
		return rules, err
	}
	if rules.Format, err = extractor.ParseColorFormat(c.ColorFormat); err != nil {
		return rules, err
	}

	return rules, nil
}

func (m MatcherConfig) spec() extractor.MatcherSpec {
	return extractor.MatcherSpec{
		Kind:    m.Match,
		Pattern: m.Pattern,
		Depth:   m.Depth,
		Types:   m.Types,
	}
}

// splitList trims and drops empty entries of values that may have come from a
// single comma-separated string.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
