package imagery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeUnsplash(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32, func() string) {
	t.Helper()
	var hits atomic.Int32
	var lastQuery string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		mu.Lock()
		lastQuery = r.URL.Query().Get("query")
		mu.Unlock()
		if r.Header.Get("Authorization") != "Client-ID test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits, func() string {
		mu.Lock()
		defer mu.Unlock()
		return lastQuery
	}
}

const oneResult = `{"results":[{"urls":{"regular":"https://images.example/paris.jpg"}}]}`

func TestResolve_LocalManifest(t *testing.T) {
	r := New(Options{Manifest: []string{"fra", "JPN"}})
	assert.Equal(t, "/images/countries/FRA.jpg", r.Resolve(context.Background(), "FRA"))
	assert.Equal(t, "/images/countries/JPN.jpg", r.Resolve(context.Background(), " jpn"))
}

func TestResolve_StaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images", "countries"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "images", "countries", "PER.jpg"), []byte("x"), 0o644))

	r := New(Options{StaticDir: dir})
	assert.Equal(t, "/images/countries/PER.jpg", r.Resolve(context.Background(), "PER"))
	assert.Equal(t, DefaultImage, r.Resolve(context.Background(), "CHL"))
}

func TestResolve_Remote(t *testing.T) {
	srv, hits, lastQuery := fakeUnsplash(t, http.StatusOK, oneResult)
	r := New(Options{
		APIKey:   "test-key",
		Endpoint: srv.URL,
		Names:    func(id string) string { return map[string]string{"DEU": "Germany"}[id] },
	})

	assert.Equal(t, "https://images.example/paris.jpg", r.Resolve(context.Background(), "DEU"))
	assert.Equal(t, "Germany landmark landscape", lastQuery())

	// Cached: no second request.
	assert.Equal(t, "https://images.example/paris.jpg", r.Resolve(context.Background(), "DEU"))
	assert.Equal(t, int32(1), hits.Load())
}

func TestResolve_RemoteFailureFallsThrough(t *testing.T) {
	srv, hits, _ := fakeUnsplash(t, http.StatusInternalServerError, "")
	r := New(Options{APIKey: "test-key", Endpoint: srv.URL})

	assert.Equal(t, DefaultImage, r.Resolve(context.Background(), "DEU"))
	assert.Equal(t, DefaultImage, r.Resolve(context.Background(), "DEU"))
	assert.Equal(t, int32(2), hits.Load(), "placeholders are not cached")
}

func TestResolve_EmptyResults(t *testing.T) {
	srv, _, _ := fakeUnsplash(t, http.StatusOK, `{"results":[]}`)
	r := New(Options{APIKey: "test-key", Endpoint: srv.URL})
	assert.Equal(t, DefaultImage, r.Resolve(context.Background(), "DEU"))
}

func TestResolve_BadJSON(t *testing.T) {
	srv, _, _ := fakeUnsplash(t, http.StatusOK, `{`)
	r := New(Options{APIKey: "test-key", Endpoint: srv.URL})
	assert.Equal(t, DefaultImage, r.Resolve(context.Background(), "DEU"))
}

func TestResolve_NoKeySkipsRemote(t *testing.T) {
	srv, hits, _ := fakeUnsplash(t, http.StatusOK, oneResult)
	r := New(Options{Endpoint: srv.URL})
	assert.Equal(t, DefaultImage, r.Resolve(context.Background(), "DEU"))
	assert.Equal(t, int32(0), hits.Load())
}

func TestResolve_CancelledContext(t *testing.T) {
	srv, _, _ := fakeUnsplash(t, http.StatusOK, oneResult)
	r := New(Options{APIKey: "test-key", Endpoint: srv.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, DefaultImage, r.Resolve(ctx, "DEU"))
}

func TestResolve_Empty(t *testing.T) {
	assert.Equal(t, DefaultImage, New(Options{}).Resolve(context.Background(), " "))
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	_, ok, err := c.Get(ctx, "FRA")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "FRA", "/x.jpg"))
	u, ok, err := c.Get(ctx, "FRA")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/x.jpg", u)
}
