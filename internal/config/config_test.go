package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kataras/figma-keytheme/pkg/extractor"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads. Empty values count as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"FIGMA_API_TOKEN", "FIGMA_FILE_KEY", "FIGMA_NODE_IDS",
		"KEYTHEME_API_TOKEN", "KEYTHEME_FILE_KEY", "KEYTHEME_NODE_IDS", "KEYTHEME_URL",
		"KEYTHEME_COLOR_FORMAT", "KEYTHEME_THEME_MATCH", "KEYTHEME_THEME_PATTERN", "KEYTHEME_OUTPUT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "figma_nodes.json", cfg.Cache)
	assert.Equal(t, "Output/KeyTheme.csv", cfg.Output)
	assert.Equal(t, extractor.MatchDepth, cfg.Theme.Match)
	assert.Equal(t, 1, cfg.Theme.Depth)
	assert.Equal(t, extractor.MatchLeaf, cfg.Key.Match)
	assert.Equal(t, "fill", cfg.Attribute)
	assert.Equal(t, "hex", cfg.ColorFormat)
	assert.Equal(t, "default", cfg.DefaultTheme)
	assert.Empty(t, cfg.NodeIDs)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("FIGMA_API_TOKEN", "figd_secret")
	t.Setenv("FIGMA_FILE_KEY", "ABC123")
	t.Setenv("FIGMA_NODE_IDS", "1:2, 3:4")
	t.Setenv("KEYTHEME_COLOR_FORMAT", "argb")
	t.Setenv("KEYTHEME_THEME_MATCH", "regexp")
	t.Setenv("KEYTHEME_THEME_PATTERN", `^KBC_(?P<theme>\d+)$`)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "figd_secret", cfg.APIToken)
	assert.Equal(t, "ABC123", cfg.FileKey)
	assert.Equal(t, []string{"1:2", "3:4"}, cfg.NodeIDs)
	assert.Equal(t, "argb", cfg.ColorFormat)
	assert.Equal(t, "regexp", cfg.Theme.Match)
	require.NoError(t, cfg.ValidateFetch())
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvironmentAliases(t *testing.T) {
	for key, alias := range envAliases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(alias, "from-alias")

			cfg, err := Load("", nil)
			require.NoError(t, err)

			prefixed := EnvPrefix + "_" + strings.ToUpper(key)
			t.Setenv(prefixed, "from-prefix")
			withPrefix, err := Load("", nil)
			require.NoError(t, err)

			switch key {
			case "api_token":
				assert.Equal(t, "from-alias", cfg.APIToken)
				assert.Equal(t, "from-prefix", withPrefix.APIToken)
			case "file_key":
				assert.Equal(t, "from-alias", cfg.FileKey)
				assert.Equal(t, "from-prefix", withPrefix.FileKey)
			case "node_ids":
				assert.Equal(t, []string{"from-alias"}, cfg.NodeIDs)
				assert.Equal(t, []string{"from-prefix"}, withPrefix.NodeIDs)
			default:
				t.Fatalf("no assertion for %s", key)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
theme:
  match: glob
  pattern: "Theme/*"
  types: [FRAME, SECTION]
key:
  match: regexp
  pattern: '^Key/(?P<key>\w+)$'
attribute: stroke
color_format: rgba
column_order: [Light, Dark]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, MatcherConfig{Match: "glob", Pattern: "Theme/*", Depth: 1, Types: []string{"FRAME", "SECTION"}}, cfg.Theme)
	assert.Equal(t, "regexp", cfg.Key.Match)
	assert.Equal(t, "stroke", cfg.Attribute)
	assert.Equal(t, []string{"Light", "Dark"}, cfg.ColumnOrder)

	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Equal(t, extractor.AttrStroke, rules.Attribute)
	assert.Equal(t, extractor.FormatRGBA, rules.Format)
	assert.NotNil(t, rules.Theme)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("KEYTHEME_OUTPUT", "env.csv")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	flags.String("node-ids", "", "")
	flags.StringSlice("column-order", nil, "")
	require.NoError(t, flags.Parse([]string{"--output", "flag.csv", "--node-ids", "5:6,7:8", "--column-order", "B,A"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "flag.csv", cfg.Output)
	assert.Equal(t, []string{"5:6", "7:8"}, cfg.NodeIDs)
	assert.Equal(t, []string{"B", "A"}, cfg.ColumnOrder)
}

func TestLoadUnsetFlagKeepsEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("KEYTHEME_OUTPUT", "env.csv")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "env.csv", cfg.Output)
}

func TestResolveURL(t *testing.T) {
	cfg := Default()
	cfg.URL = "https://www.figma.com/design/ABC123/Keyboard?node-id=1-2"
	require.NoError(t, cfg.ResolveURL())
	assert.Equal(t, "ABC123", cfg.FileKey)
	assert.Equal(t, []string{"1:2"}, cfg.NodeIDs)

	cfg = Default()
	cfg.URL = "https://example.com/design/ABC123"
	assert.Error(t, cfg.ResolveURL())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	err := cfg.ValidateFetch()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API token")
	assert.Contains(t, err.Error(), "node ids")

	cfg.Key = MatcherConfig{Match: "regexp", Pattern: "("}
	assert.ErrorContains(t, cfg.Validate(), "key:")

	cfg = Default()
	cfg.Theme.Match = MatchNone
	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Nil(t, rules.Theme)

	cfg.ColorFormat = "cmyk"
	assert.Error(t, cfg.Validate())
}
