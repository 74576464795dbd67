package keytheme

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kataras/figma-keytheme/pkg/extractor"
	"github.com/kataras/figma-keytheme/pkg/figma"
	"github.com/kataras/figma-keytheme/pkg/separator"
)

// ErrNoKeys is reported when a run completes without finding a single styled key.
var ErrNoKeys = errors.New("no keys found")

// Fetcher retrieves the subtrees of the given nodes as a raw nodes API response.
// *figma.Client implements it; the access token is bound when the client is created.
type Fetcher interface {
	FetchFileNodes(ctx context.Context, fileKey string, nodeIDs []string) ([]byte, error)
}

// Options configures a run.
type Options struct {
	FileKey     string
	NodeIDs     []string // requested roots, also the order of traversal
	CachePath   string   // fetched nodes JSON
	Rules       extractor.Rules
	ColumnOrder []string // themes to move to the front of the table
	Logger      Logger   // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the separated table and what happened while building it.
type Result struct {
	FileName string // design file name reported by the API
	Table    *separator.Table
	Summary  Summary
}

// Summary reports per-node issues absorbed during a run.
type Summary struct {
	Roots     int
	Visited   int
	Records   int
	Unstyled  int
	Skipped   []extractor.Skip
	Conflicts []separator.Conflict
	Rows      int
	Themes    int
}

// Err returns ErrNoKeys when the table has no rows, nil otherwise.
func (r *Result) Err() error {
	if r.Summary.Rows == 0 {
		return ErrNoKeys
	}
	return nil
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

// Fetch downloads the requested nodes and stores the response at opts.CachePath.
// Nothing is written when the fetch fails.
func Fetch(ctx context.Context, fetcher Fetcher, opts Options) error {
	data, err := fetchNodes(ctx, fetcher, &opts)
	if err != nil {
		return err
	}

	dir := filepath.Dir(opts.CachePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %q: %w", dir, err)
	}
	if err := os.WriteFile(opts.CachePath, data, 0644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	opts.logInfo("Cached %d bytes to %s", len(data), opts.CachePath)

	return nil
}

// TransformCache reads the nodes cached by Fetch and separates them.
func TransformCache(opts Options) (*Result, error) {
	opts.logInfo("Reading cached nodes from %s...", opts.CachePath)
	data, err := os.ReadFile(opts.CachePath)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}

	resp, err := figma.ParseNodesResponse(data)
	if err != nil {
		opts.logError("Cache %s is not a nodes response: %v", opts.CachePath, err)
		return nil, fmt.Errorf("decode cache %s: %w", opts.CachePath, err)
	}
	if missing := resp.Missing(opts.NodeIDs); len(missing) > 0 {
		opts.logWarn("Cache has no data for node(s) %v", missing)
	}

	return Transform(resp, opts), nil
}

// Run fetches the requested nodes and separates them without touching the cache.
func Run(ctx context.Context, fetcher Fetcher, opts Options) (*Result, error) {
	data, err := fetchNodes(ctx, fetcher, &opts)
	if err != nil {
		return nil, err
	}

	resp, err := figma.ParseNodesResponse(data)
	if err != nil {
		return nil, err
	}

	return Transform(resp, opts), nil
}

func fetchNodes(ctx context.Context, fetcher Fetcher, opts *Options) ([]byte, error) {
	opts.logInfo("Fetching %d node(s) from file %s...", len(opts.NodeIDs), opts.FileKey)
	data, err := fetcher.FetchFileNodes(ctx, opts.FileKey, opts.NodeIDs)
	if err != nil {
		opts.logError("Fetching nodes failed: %v", err)
		return nil, fmt.Errorf("fetch nodes: %w", err)
	}
	return data, nil
}

// Transform extracts key records from the response and pivots them into a table.
// Roots are visited in opts.NodeIDs order, then any other nodes in id order.
func Transform(resp *figma.NodesResponse, opts Options) *Result {
	roots := resp.Roots(opts.NodeIDs)

	opts.logInfo("Extracting keys from %d root node(s)...", len(roots))
	ex := extractor.Extract(roots, opts.Rules)
	for _, skip := range ex.Skipped {
		opts.logWarn("Skipped node %s", skip)
	}
	opts.logInfo("Found %d key record(s) in %d node(s)", len(ex.Records), ex.Visited)

	opts.logInfo("Separating themes...")
	table, conflicts := separator.Separate(ex.Records)
	for _, c := range conflicts {
		opts.logWarn("Key %q in theme %q defined twice, %s replaces %s", c.KeyID, c.Theme, c.Value, c.Previous)
	}
	table.Reorder(opts.ColumnOrder)

	result := &Result{
		FileName: resp.Name,
		Table:    table,
		Summary: Summary{
			Roots:     len(roots),
			Visited:   ex.Visited,
			Records:   len(ex.Records),
			Unstyled:  ex.Unstyled,
			Skipped:   ex.Skipped,
			Conflicts: conflicts,
			Rows:      len(table.Rows),
			Themes:    len(table.Themes),
		},
	}
	if result.Summary.Rows == 0 {
		opts.logWarn("No keys found: check the theme and key rules")
	}

	return result
}
