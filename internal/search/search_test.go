package search

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/lucaria/internal/models"
)

type fakeES struct {
	mu          sync.Mutex
	indexExists bool
	created     bool
	docs        map[string]map[string]any
	lastQuery   map[string]any
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/" && r.Method == http.MethodGet:
		_, _ = io.WriteString(w, `{"version":{"number":"9.0.0","build_flavor":"default"},"tagline":"You Know, for Search"}`)
	case r.URL.Path == "/products" && r.Method == http.MethodHead:
		if f.indexExists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.URL.Path == "/products" && r.Method == http.MethodPut:
		f.created = true
		f.indexExists = true
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	case strings.HasPrefix(r.URL.Path, "/products/_doc/"):
		var doc map[string]any
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.docs[strings.TrimPrefix(r.URL.Path, "/products/_doc/")] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case r.URL.Path == "/products/_search":
		_ = json.NewDecoder(r.Body).Decode(&f.lastQuery)
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":2},"hits":[{"_source":{"id":3}},{"_source":{"id":1}}]}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{}`)
	}
}

func newFake(t *testing.T) (*fakeES, *Index) {
	t.Helper()
	f := &fakeES{docs: map[string]map[string]any{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	idx, err := NewClient(context.Background(), Config{URL: srv.URL, Index: "products"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return f, idx
}

func TestNewClientCreatesIndex(t *testing.T) {
	f, _ := newFake(t)
	assert.True(t, f.created)
}

func TestIndexProduct(t *testing.T) {
	f, idx := newFake(t)

	err := idx.IndexProduct(context.Background(), models.Product{
		ID: 5, Name: "Graphic Tee", Description: "Soft cotton", Category: "Tops",
		Price: decimal.RequireFromString("24.99"),
	})
	require.NoError(t, err)

	doc, ok := f.docs["5"]
	require.True(t, ok)
	assert.Equal(t, "Graphic Tee", doc["name"])
	assert.InDelta(t, 24.99, doc["price"], 0.0001)
}

func TestSearchIDs(t *testing.T) {
	f, idx := newFake(t)

	total, ids, err := idx.SearchIDs(context.Background(), "jeans", 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []uint{3, 1}, ids)

	mm := f.lastQuery["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "jeans", mm["query"])
}

func TestReindex(t *testing.T) {
	f, idx := newFake(t)
	n, err := idx.Reindex(context.Background(), []models.Product{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, f.docs, 2)
}
