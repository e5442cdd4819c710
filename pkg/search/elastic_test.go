package search

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCluster struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies[r.URL.Path] = string(body)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/":
		_, _ = w.Write([]byte(`{"version":{"number":"8.19.1"},"tagline":"You Know, for Search"}`))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_id":"c1","_source":{"id":"c1","name":"Alice"}}]}}`))
	case r.URL.Path == "/existing":
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"resource_already_exists_exception"},"status":400}`))
	case strings.HasPrefix(r.URL.Path, "/customers/_doc/missing"):
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	default:
		_, _ = w.Write([]byte(`{"acknowledged":true,"result":"created"}`))
	}
}

func newTestClient(t *testing.T) (*Client, *fakeCluster) {
	t.Helper()
	fc := &fakeCluster{bodies: map[string]string{}}
	srv := httptest.NewServer(fc)
	t.Cleanup(srv.Close)

	c, err := NewClient(&Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return c, fc
}

func TestClient_IndexAndSearch(t *testing.T) {
	c, fc := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.CreateIndex(ctx, "customers", `{"mappings":{}}`))
	require.NoError(t, c.Index(ctx, "customers", "c1", map[string]string{"name": "Alice"}))

	res, err := c.Search(ctx, "customers", map[string]interface{}{"query": map[string]interface{}{"match_all": map[string]interface{}{}}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Hits.Total.Value)
	require.Len(t, res.Hits.Hits, 1)
	assert.JSONEq(t, `{"id":"c1","name":"Alice"}`, string(res.Hits.Hits[0].Source))

	assert.Contains(t, fc.bodies["/customers/_doc/c1"], `"Alice"`)
}

func TestClient_CreateIndexAlreadyExists(t *testing.T) {
	c, _ := newTestClient(t)
	assert.NoError(t, c.CreateIndex(context.Background(), "existing", `{}`))
}
