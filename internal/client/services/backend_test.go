package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/botadmin/internal/client/api"
	"github.com/dmitrijs2005/botadmin/internal/client/session"
	"github.com/dmitrijs2005/botadmin/internal/logging"
)

// backend is a fake REST API mounted under /api.
type backend struct {
	srv *httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	handlers map[string]http.HandlerFunc
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{hits: map[string]int{}, handlers: map[string]http.HandlerFunc{}}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")
		b.mu.Lock()
		b.hits[key]++
		h, ok := b.handlers[key]
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "no route " + key})
			return
		}
		h(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) handle(key string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[key] = h
}

func (b *backend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, b *backend, sess *session.Manager) *api.Client {
	t.Helper()
	c, err := api.New(api.Config{
		BaseURL:        b.srv.URL + "/api",
		Session:        sess,
		RefreshTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func newAuth(t *testing.T, b *backend) (AuthService, *session.Manager, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore()
	m := session.NewManager(store, nil)
	return NewAuthService(newClient(t, b, m), m, logging.NewNopLogger()), m, store
}
