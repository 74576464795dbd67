// Package keytheme turns keyboard theme designs kept in a Figma file into a
// table with one row per key and one column per theme.
//
// The pipeline has two steps that can run separately:
//
//   - Fetch downloads the subtrees of the requested nodes from the Figma API
//     and caches the raw response.
//   - TransformCache walks the cached trees, extracts one record per styled
//     key node and separates the records into a per-key, per-theme table.
//
// Run does both in memory. The table is written with the formatter package.
//
// # Quick start
//
//	client := figma.NewClient(os.Getenv("FIGMA_API_TOKEN"))
//	result, err := keytheme.Run(ctx, client, keytheme.Options{
//	    FileKey: "ABC123",
//	    NodeIDs: []string{"12:34"},
//	    Rules:   extractor.DefaultRules(),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	formatter.WriteCSVFile("Output/KeyTheme.csv", result.Table)
//
// # Themes and keys
//
// By default every direct child of a requested node is a theme and every leaf
// below it that has a visible solid fill is a key, identified by its name.
// Keys without a theme ancestor are placed in the "default" theme. Both
// predicates are configurable with depth, glob or regexp rules; see
// [extractor.Rules].
//
// # Issues
//
// Malformed nodes are skipped and keys defined twice for the same theme keep
// the last value. Both are listed in [Summary] and logged as warnings. A run
// that finds no keys is not an error, but [Result.Err] returns [ErrNoKeys].
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output.
package keytheme
