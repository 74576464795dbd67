package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/kataras/figma-keytheme"
	"github.com/kataras/figma-keytheme/internal/config"
	"github.com/kataras/figma-keytheme/pkg/figma"
	"github.com/kataras/figma-keytheme/pkg/formatter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const version = figma.Version

// Exit codes.
const (
	exitFailure = 1
	exitNoKeys  = 2
)

var (
	configFile   string
	markdownFile string
	reportFile   string
	metricsFile  string
	paramMap     string
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
	cyan  = color.New(color.FgCyan)
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(exitFailure)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "keytheme",
		Short: "Extract keyboard themes from Figma into CSV",
		Long: "A tool to fetch keyboard theme designs from the Figma API and separate their key colors " +
			"into a table with one row per key and one column per theme",
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Rules file (default ./keytheme.yaml)")
	pf.StringP("token", "t", "", "Figma Personal Access Token (env FIGMA_API_TOKEN)")
	pf.StringP("url", "u", "", "Figma file URL, may carry node-id")
	pf.String("file-key", "", "Figma file key (env FIGMA_FILE_KEY)")
	pf.StringP("node-ids", "n", "", "Comma-separated root node IDs (env FIGMA_NODE_IDS)")
	pf.String("cache", "", "Fetched nodes JSON (default figma_nodes.json)")

	transformFlags := func(cmd *cobra.Command) {
		f := cmd.Flags()
		f.StringP("output", "o", "", "Output CSV file (default Output/KeyTheme.csv)")
		f.String("attribute", "", "Style attribute: fill, stroke, background, fill-gradient-start, fill-gradient-end, stroke-gradient-start, stroke-gradient-end")
		f.String("color-format", "", "Color format: hex, argb, rgba")
		f.String("default-theme", "", "Theme for keys outside any theme node")
		f.StringSlice("column-order", nil, "Themes to place first, in order")
		f.StringVar(&markdownFile, "markdown", "", "Also write a markdown preview of the table")
		f.StringVar(&reportFile, "report", "", "Write a YAML run report")
		f.StringVar(&metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format")
	}

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the theme nodes from Figma and cache them",
		Run:   runFetch,
	}

	transformCmd := &cobra.Command{
		Use:   "transform",
		Short: "Separate the cached nodes into a theme table",
		Run:   runTransform,
	}
	transformFlags(transformCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch and separate in one step, without caching",
		Run:   runAll,
	}
	transformFlags(runCmd)

	constructorsCmd := &cobra.Command{
		Use:   "constructors <csv> <constructor>",
		Short: "Print one constructor call per CSV row",
		Args:  cobra.ExactArgs(2),
		Run:   runConstructors,
	}
	constructorsCmd.Flags().StringVar(&paramMap, "params", "", `Parameter to column map as JSON, e.g. '{"themeName": "ThemeName"}' (required)`)
	constructorsCmd.MarkFlagRequired("params")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("keytheme version %s\n", version)
		},
	}

	rootCmd.AddCommand(fetchCmd, transformCmd, runCmd, constructorsCmd, versionCmd)

	return rootCmd
}

func banner() {
	cyan.Println("\n🎹 Figma Keyboard Theme Extractor")
	cyan.Println("==================================")
	cyan.Println()
}

func fail(err error) {
	red.Printf("Error: %v\n", err)
	os.Exit(exitFailure)
}

func loadConfig(cmd *cobra.Command) *config.Config {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		fail(err)
	}
	return cfg
}

func options(cfg *config.Config) keytheme.Options {
	rules, err := cfg.Rules()
	if err != nil {
		fail(err)
	}
	return keytheme.Options{
		FileKey:     cfg.FileKey,
		NodeIDs:     cfg.NodeIDs,
		CachePath:   cfg.Cache,
		Rules:       rules,
		ColumnOrder: cfg.ColumnOrder,
		Logger:      &cliLogger{},
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runFetch(cmd *cobra.Command, args []string) {
	banner()
	cfg := loadConfig(cmd)
	if err := cfg.ValidateFetch(); err != nil {
		fail(err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := figma.NewClient(cfg.APIToken)
	if err := keytheme.Fetch(ctx, client, options(cfg)); err != nil {
		fail(describeFetchError(err))
	}

	green.Printf("\n✨ Cached %d node(s) to %s\n\n", len(cfg.NodeIDs), cfg.Cache)
}

func runTransform(cmd *cobra.Command, args []string) {
	banner()
	cfg := loadConfig(cmd)
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	result, err := keytheme.TransformCache(options(cfg))
	if err != nil {
		fail(err)
	}

	finish(cfg, result)
}

func runAll(cmd *cobra.Command, args []string) {
	banner()
	cfg := loadConfig(cmd)
	if err := cfg.ValidateFetch(); err != nil {
		fail(err)
	}
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := figma.NewClient(cfg.APIToken)
	result, err := keytheme.Run(ctx, client, options(cfg))
	if err != nil {
		fail(describeFetchError(err))
	}

	finish(cfg, result)
}

// finish prints the summary and writes the table plus any requested side outputs.
func finish(cfg *config.Config, result *keytheme.Result) {
	s := result.Summary

	cyan.Println("\n📊 Separation Summary:")
	fmt.Printf("  • Root nodes: %d\n", s.Roots)
	fmt.Printf("  • Nodes visited: %d\n", s.Visited)
	fmt.Printf("  • Keys: %d across %d theme(s)\n", s.Rows, s.Themes)
	fmt.Printf("  • Skipped nodes: %d\n", len(s.Skipped))
	fmt.Printf("  • Overwritten cells: %d\n", len(s.Conflicts))
	if s.Unstyled > 0 {
		fmt.Printf("  • Keys without %s: %d\n", cfg.Attribute, s.Unstyled)
	}

	green.Printf("\n💾 Writing to %s... ", cfg.Output)
	if err := formatter.WriteCSVFile(cfg.Output, result.Table); err != nil {
		red.Printf("✗\n")
		fail(err)
	}
	green.Println("✓")

	if markdownFile != "" {
		title := result.FileName
		if title == "" {
			title = cfg.FileKey
		}
		if err := os.WriteFile(markdownFile, []byte(formatter.ToMarkdown(result.Table, title)), 0644); err != nil {
			fail(fmt.Errorf("write markdown: %w", err))
		}
	}

	if reportFile != "" {
		f, err := os.Create(reportFile)
		if err != nil {
			fail(fmt.Errorf("write report: %w", err))
		}
		err = keytheme.WriteReport(f, result)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			fail(fmt.Errorf("write report: %w", err))
		}
	}

	if metricsFile != "" {
		if err := keytheme.WriteMetrics(metricsFile, result); err != nil {
			fail(fmt.Errorf("write metrics: %w", err))
		}
	}

	if err := result.Err(); err != nil {
		color.New(color.FgYellow).Printf("\n⚠ %v: the table has a header only. Check the theme and key rules.\n\n", err)
		os.Exit(exitNoKeys)
	}

	green.Printf("\n✨ Successfully separated %d key(s) into %s\n\n", s.Rows, cfg.Output)
}

func describeFetchError(err error) error {
	switch {
	case errors.Is(err, figma.ErrAuth):
		return fmt.Errorf("%w (check FIGMA_API_TOKEN)", err)
	case errors.Is(err, figma.ErrNotFound):
		return fmt.Errorf("%w (check FIGMA_FILE_KEY and FIGMA_NODE_IDS)", err)
	}
	return err
}

func runConstructors(cmd *cobra.Command, args []string) {
	params, err := formatter.ParseParamMap(paramMap)
	if err != nil {
		fail(err)
	}

	f, err := os.Open(args[0])
	if err != nil {
		fail(err)
	}
	defer f.Close()

	calls, err := formatter.GenerateConstructors(f, args[1], params)
	if err != nil {
		fail(err)
	}

	fmt.Print(formatter.FormatConstructors(calls))
}

// cliLogger implements keytheme.Logger with colored terminal output.
type cliLogger struct{}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Printf("✗ "+format+"\n", args...)
}
