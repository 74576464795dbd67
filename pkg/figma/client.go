package figma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Version is the release version of the keytheme tool, reported in the User-Agent header.
const Version = "0.3.0"

const (
	figmaAPIBase = "https://api.figma.com/v1"
	maxRetries   = 3
)

// Client represents a Figma API client with configured HTTP settings for reliable communication
// with the Figma API. It includes retry logic for rate limits and temporary server failures.
type Client struct {
	accessToken string
	baseURL     string
	retryDelay  time.Duration
	httpClient  *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at a different API root, e.g. a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetryDelay sets the base delay between attempts. Attempt n waits n times the delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// NewClient creates a new Figma API client with the provided personal access token.
// The default HTTP client disables HTTP/2 (for large file stability) and times out after 2 minutes.
func NewClient(accessToken string, opts ...ClientOption) *Client {
	transport := &http.Transport{
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		MaxIdleConnsPerHost: 10,
		// Disable HTTP/2 to avoid stream errors with large files
		ForceAttemptHTTP2: false,
	}

	c := &Client{
		accessToken: accessToken,
		baseURL:     figmaAPIBase,
		retryDelay:  2 * time.Second,
		httpClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: transport,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ExtractFileKey extracts the unique file identifier from a Figma URL.
// Supports both /file/ and /design/ URL patterns (e.g., figma.com/file/ABC123/Design-Name).
func ExtractFileKey(figmaURL string) (string, error) {
	matches := fileKeyRe.FindStringSubmatch(figmaURL)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Figma URL format: must be a valid figma.com URL with /file/ or /design/ path")
	}

	return matches[1], nil
}

var (
	// Anchored so that look-alike domains do not match.
	fileKeyRe = regexp.MustCompile(`^https?://(?:www\.)?figma\.com/(?:file|design)/([A-Za-z0-9]+)(?:/|$|\?|#)`)

	nodeIDQueryRe    = regexp.MustCompile(`[?&]node-id=([^&#]*)`)
	nodeIDFragmentRe = regexp.MustCompile(`#([^#?&]+)$`)
	nodeIDPathRe     = regexp.MustCompile(`/nodes/([^?#]+)`)
)

// ExtractNodeIDs returns the node ids referenced by a Figma URL, in the order they appear.
// It understands the node-id query parameter, a #id fragment and a /nodes/id path segment.
// URL-style ids ("12-34") are converted to API ids ("12:34"). The result is never nil.
func ExtractNodeIDs(figmaURL string) ([]string, error) {
	var raw string

	if m := nodeIDQueryRe.FindStringSubmatch(figmaURL); m != nil {
		unescaped, err := url.QueryUnescape(m[1])
		if err != nil {
			return nil, fmt.Errorf("decode node-id parameter: %w", err)
		}
		raw = unescaped
	} else if m := nodeIDPathRe.FindStringSubmatch(figmaURL); m != nil {
		raw = m[1]
	} else if m := nodeIDFragmentRe.FindStringSubmatch(figmaURL); m != nil {
		raw = m[1]
	}

	ids := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		ids = append(ids, strings.ReplaceAll(id, "-", ":"))
	}

	return deduplicateNodeIDs(ids), nil
}

// deduplicateNodeIDs drops repeated ids, keeping the first occurrence of each.
func deduplicateNodeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}

	return result
}

// FetchFileNodes retrieves the subtrees of the given nodes and returns the raw JSON body.
// The body is validated before it is returned: every requested node must be present,
// otherwise the error wraps ErrNotFound.
func (c *Client) FetchFileNodes(ctx context.Context, fileKey string, nodeIDs []string) ([]byte, error) {
	if fileKey == "" {
		return nil, fmt.Errorf("%w: empty file key", ErrNotFound)
	}
	if len(nodeIDs) == 0 {
		return nil, errors.New("no node ids requested")
	}

	endpoint := fmt.Sprintf("%s/files/%s/nodes?ids=%s",
		c.baseURL, url.PathEscape(fileKey), url.QueryEscape(strings.Join(nodeIDs, ",")))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	resp, err := ParseNodesResponse(body)
	if err != nil {
		return nil, err
	}
	if missing := resp.Missing(nodeIDs); len(missing) > 0 {
		return nil, fmt.Errorf("%w: node(s) %s in file %s", ErrNotFound, strings.Join(missing, ", "), fileKey)
	}

	return body, nil
}

// GetFileNodes retrieves and decodes the subtrees of the given nodes.
func (c *Client) GetFileNodes(ctx context.Context, fileKey string, nodeIDs []string) (*NodesResponse, error) {
	body, err := c.FetchFileNodes(ctx, fileKey, nodeIDs)
	if err != nil {
		return nil, err
	}
	return ParseNodesResponse(body)
}

// ParseNodesResponse decodes a nodes API response, as returned by FetchFileNodes or read from a cache file.
func ParseNodesResponse(data []byte) (*NodesResponse, error) {
	var resp NodesResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &resp, nil
}

// Missing returns the requested ids that are absent or null in the response.
func (r *NodesResponse) Missing(nodeIDs []string) []string {
	var missing []string
	for _, id := range nodeIDs {
		if nd := r.Nodes[id]; nd == nil {
			missing = append(missing, id)
		}
	}
	return missing
}

// Roots returns the document of each node in the response. Requested ids come first
// in the given order; any other nodes follow sorted by id.
func (r *NodesResponse) Roots(nodeIDs []string) []*Node {
	roots := make([]*Node, 0, len(r.Nodes))
	used := make(map[string]bool, len(nodeIDs))

	for _, id := range nodeIDs {
		if used[id] {
			continue
		}
		used[id] = true
		if nd := r.Nodes[id]; nd != nil {
			roots = append(roots, &nd.Document)
		}
	}

	rest := make([]string, 0, len(r.Nodes))
	for id, nd := range r.Nodes {
		if !used[id] && nd != nil {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		roots = append(roots, &r.Nodes[id].Document)
	}

	return roots
}

// get performs an authenticated GET, retrying up to 3 attempts on 429, 5xx and transport errors.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		body, retry, err := c.getOnce(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt, err)
		if !retry || attempt == maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrNetwork, ctx.Err())
		case <-time.After(time.Duration(attempt) * c.retryDelay):
		}
	}

	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, endpoint string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("X-Figma-Token", c.accessToken)
	req.Header.Set("User-Agent", "keytheme/"+Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("%w: failed to execute request: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		return nil, apiErr.retryable(), apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("%w: failed to read response body: %w", ErrNetwork, err)
	}

	return body, false, nil
}
