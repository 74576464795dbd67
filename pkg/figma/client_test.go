package figma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFileKey(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "design URL", url: "https://www.figma.com/design/ABC123XYZ/Keyboard-Themes", want: "ABC123XYZ"},
		{name: "file URL", url: "https://www.figma.com/file/ABC123XYZ/Keyboard-Themes", want: "ABC123XYZ"},
		{name: "with node-id", url: "https://www.figma.com/design/4gkABR5gEZnIvlCaXmA4KI/Keys?node-id=11933-305884", want: "4gkABR5gEZnIvlCaXmA4KI"},
		{name: "no www", url: "https://figma.com/file/ABC123XYZ/Keys", want: "ABC123XYZ"},
		{name: "key only", url: "https://www.figma.com/file/ABC123XYZ", want: "ABC123XYZ"},
		{name: "missing key", url: "https://www.figma.com/file/", wantErr: true},
		{name: "wrong domain", url: "https://www.figma.com.evil.io/file/ABC123XYZ", wantErr: true},
		{name: "wrong path", url: "https://www.figma.com/dashboard/ABC123XYZ", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractFileKey(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractFileKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractFileKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractNodeIDs(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want []string
	}{
		{name: "query with colon", url: "https://www.figma.com/file/ABC/Keys?node-id=123:456", want: []string{"123:456"}},
		{name: "query with dash", url: "https://www.figma.com/design/ABC/Keys?node-id=11933-305884&t=Obv-1", want: []string{"11933:305884"}},
		{name: "query escaped", url: "https://www.figma.com/design/ABC/Keys?node-id=1%3A2%2C3%3A4", want: []string{"1:2", "3:4"}},
		{name: "query multiple mixed", url: "https://www.figma.com/file/ABC/Keys?node-id=123:456,789-012", want: []string{"123:456", "789:012"}},
		{name: "query trimmed and deduplicated", url: "https://www.figma.com/file/ABC/Keys?node-id=1:2, 1:2,3:4", want: []string{"1:2", "3:4"}},
		{name: "fragment", url: "https://www.figma.com/file/ABC/Keys#123:456,789:012", want: []string{"123:456", "789:012"}},
		{name: "path", url: "https://www.figma.com/file/ABC/Keys/nodes/123:456", want: []string{"123:456"}},
		{name: "none", url: "https://www.figma.com/file/ABC/Keys", want: []string{}},
		{name: "empty parameter", url: "https://www.figma.com/file/ABC/Keys?node-id=", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractNodeIDs(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeduplicateNodeIDs(t *testing.T) {
	assert.Equal(t, []string{"7:1", "1:2", "3:4"}, deduplicateNodeIDs([]string{"7:1", "1:2", "7:1", "3:4", "1:2"}))
	assert.Equal(t, []string{}, deduplicateNodeIDs(nil))
}

const nodesBody = `{
  "name": "Keyboard Themes",
  "nodes": {
    "1:1": {"document": {"id": "1:1", "name": "Themes", "type": "CANVAS", "children": [
      {"id": "2:1", "name": "Dark", "type": "FRAME"}
    ]}},
    "9:9": {"document": {"id": "9:9", "name": "Extra", "type": "FRAME"}}
  }
}`

func newTestClient(srv *httptest.Server) *Client {
	return NewClient("secret", WithBaseURL(srv.URL), WithRetryDelay(time.Millisecond))
}

func TestFetchFileNodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/FILE/nodes", r.URL.Path)
		assert.Equal(t, "1:1,9:9", r.URL.Query().Get("ids"))
		assert.Equal(t, "secret", r.Header.Get("X-Figma-Token"))
		w.Write([]byte(nodesBody))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv).GetFileNodes(context.Background(), "FILE", []string{"1:1", "9:9"})
	require.NoError(t, err)
	assert.Equal(t, "Keyboard Themes", resp.Name)

	roots := resp.Roots([]string{"1:1"})
	require.Len(t, roots, 2)
	assert.Equal(t, "Themes", roots[0].Name)
	assert.Equal(t, "Extra", roots[1].Name)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "Dark", roots[0].Children[0].Name)
}

func TestNodesResponseRoots(t *testing.T) {
	resp, err := ParseNodesResponse([]byte(`{"nodes": {
	  "9:9": {"document": {"id": "9:9", "name": "Nine"}},
	  "1:1": {"document": {"id": "1:1", "name": "One"}},
	  "5:5": {"document": {"id": "5:5", "name": "Five"}},
	  "3:3": null,
	  "2:2": {"document": {"id": "2:2", "name": "Two"}}
	}}`))
	require.NoError(t, err)

	tests := []struct {
		name    string
		ids     []string
		want    []string
		missing []string
	}{
		{name: "requested first then sorted rest", ids: []string{"5:5", "3:3", "1:1", "5:5", "7:7"}, want: []string{"5:5", "1:1", "2:2", "9:9"}, missing: []string{"3:3", "7:7"}},
		{name: "request order wins over id order", ids: []string{"9:9", "2:2"}, want: []string{"9:9", "2:2", "1:1", "5:5"}},
		{name: "nothing requested", want: []string{"1:1", "2:2", "5:5", "9:9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, root := range resp.Roots(tt.ids) {
				got = append(got, root.ID)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.missing, resp.Missing(tt.ids))
		})
	}
}

func TestFetchFileNodesErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "invalid token", status: http.StatusForbidden, body: `{"status":403,"err":"Invalid token"}`, want: ErrAuth},
		{name: "unknown file", status: http.StatusNotFound, body: `{"status":404,"err":"Not found"}`, want: ErrNotFound},
		{name: "null node", status: http.StatusOK, body: `{"nodes":{"1:1":null}}`, want: ErrNotFound},
		{name: "server down", status: http.StatusBadGateway, body: "bad gateway", want: ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv).FetchFileNodes(context.Background(), "FILE", []string{"1:1"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFetchFileNodesRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(nodesBody))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchFileNodes(context.Background(), "FILE", []string{"1:1"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchFileNodesDoesNotRetryAuth(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchFileNodes(context.Background(), "FILE", []string{"1:1"})
	require.ErrorIs(t, err, ErrAuth)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv).FetchFileNodes(context.Background(), "FILE", []string{"1:1"})
	require.ErrorIs(t, err, ErrNetwork)
}
