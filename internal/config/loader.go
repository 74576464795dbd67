package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. KEYTHEME_COLOR_FORMAT.
const EnvPrefix = "KEYTHEME"

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"token":         "api_token",
	"file-key":      "file_key",
	"node-ids":      "node_ids",
	"url":           "url",
	"cache":         "cache",
	"output":        "output",
	"attribute":     "attribute",
	"color-format":  "color_format",
	"default-theme": "default_theme",
	"column-order":  "column_order",
}

// envAliases maps configuration keys to the plain FIGMA_* variables accepted
// next to their KEYTHEME_* names.
var envAliases = map[string]string{
	"api_token": "FIGMA_API_TOKEN",
	"file_key":  "FIGMA_FILE_KEY",
	"node_ids":  "FIGMA_NODE_IDS",
}

// Load loads configuration with the following priority (highest to lowest):
//  1. CLI flags that were set explicitly
//  2. Environment variables (KEYTHEME_*, and FIGMA_API_TOKEN / FIGMA_FILE_KEY / FIGMA_NODE_IDS)
//  3. Config file (configFile, or ./keytheme.yaml when configFile is empty)
//  4. Default values
//
// A .env file in the working directory is loaded into the environment first.
// flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	// Missing .env is fine, the environment may be set already.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("keytheme")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range envAliases {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), name); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", name, err)
		}
	}

	setDefaults(v)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.NodeIDs = splitList(cfg.NodeIDs)
	cfg.ColumnOrder = splitList(cfg.ColumnOrder)
	cfg.Theme.Types = splitList(cfg.Theme.Types)
	cfg.Key.Types = splitList(cfg.Key.Types)

	if err := cfg.ResolveURL(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so that environment overrides are picked up by Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("api_token", d.APIToken)
	v.SetDefault("file_key", d.FileKey)
	v.SetDefault("node_ids", d.NodeIDs)
	v.SetDefault("url", d.URL)
	v.SetDefault("cache", d.Cache)
	v.SetDefault("output", d.Output)

	v.SetDefault("theme.match", d.Theme.Match)
	v.SetDefault("theme.pattern", d.Theme.Pattern)
	v.SetDefault("theme.depth", d.Theme.Depth)
	v.SetDefault("theme.types", d.Theme.Types)
	v.SetDefault("key.match", d.Key.Match)
	v.SetDefault("key.pattern", d.Key.Pattern)
	v.SetDefault("key.depth", d.Key.Depth)
	v.SetDefault("key.types", d.Key.Types)

	v.SetDefault("attribute", d.Attribute)
	v.SetDefault("color_format", d.ColorFormat)
	v.SetDefault("default_theme", d.DefaultTheme)
	v.SetDefault("column_order", d.ColumnOrder)
}
