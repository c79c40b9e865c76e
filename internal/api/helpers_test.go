package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inisoye/halver-sub001/internal/cache"
	"github.com/inisoye/halver-sub001/internal/config"
	"github.com/inisoye/halver-sub001/internal/store"
)

// testBackend wraps an httptest server with per-path request counters.
type testBackend struct {
	server *httptest.Server
	mu     sync.Mutex
	hits   map[string]int
	total  atomic.Int64
}

func newTestBackend(t *testing.T, handler http.HandlerFunc) *testBackend {
	t.Helper()
	b := &testBackend{hits: make(map[string]int)}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits[r.Method+" "+r.URL.Path]++
		b.mu.Unlock()
		b.total.Add(1)
		handler(w, r)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *testBackend) hitCount(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

func (b *testBackend) totalHits() int {
	return int(b.total.Load())
}

// alertRecorder captures user-facing alerts fired by session teardown.
type alertRecorder struct {
	mu     sync.Mutex
	alerts []string
}

func (a *alertRecorder) fn() AlertFunc {
	return func(title, message string) {
		a.mu.Lock()
		a.alerts = append(a.alerts, title+": "+message)
		a.mu.Unlock()
	}
}

func (a *alertRecorder) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.alerts)
}

// newTestClient wires a client to an in-memory store, a fresh cache, and
// the given backend.
func newTestClient(t *testing.T, b *testBackend) (*Client, *store.Store, *cache.Store, *alertRecorder) {
	t.Helper()

	st, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	client, qc, alerts := newTestClientOver(t, b, st)
	return client, st, qc, alerts
}

// newTestClientOver builds a client over an existing store, for tests that
// pre-seed persisted state.
func newTestClientOver(t *testing.T, b *testBackend, st *store.Store) (*Client, *cache.Store, *alertRecorder) {
	t.Helper()

	qc := cache.New(cache.Options{})
	alerts := &alertRecorder{}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(config.APIConfig{
		BaseURL: b.server.URL,
		Timeout: 5 * time.Second,
	}, st, qc, logger, alerts.fn())

	return client, qc, alerts
}

// signIn attaches a token directly, skipping the login endpoint.
func signIn(t *testing.T, c *Client, token string) {
	t.Helper()
	require.NoError(t, c.SetToken(token))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}
