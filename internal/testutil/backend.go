// Package testutil starts an in-process backend for tests.
package testutil

import (
	"io"
	"log"
	"net/http/httptest"
	"testing"

	"Yui-Editor/studio/internal/client"
	"Yui-Editor/studio/internal/config"
	"Yui-Editor/studio/internal/interfaces"
	"Yui-Editor/studio/internal/storage"
	"Yui-Editor/studio/internal/web"
)

// Backend is a running stub backend
type Backend struct {
	Server   *httptest.Server
	Store    interfaces.StoryStore
	Handlers *web.Handlers
}

// DiscardLogger drops everything written to it
func DiscardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// NewBackend serves the API over a fresh in-memory store until the test ends
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	return NewBackendWithStore(t, storage.NewMemoryStore())
}

// NewBackendWithStore serves the API over store until the test ends
func NewBackendWithStore(t testing.TB, store interfaces.StoryStore) *Backend {
	t.Helper()

	h := web.NewHandlers(store, DiscardLogger())
	srv := httptest.NewServer(web.NewRouter(h))
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})

	return &Backend{Server: srv, Store: store, Handlers: h}
}

// BaseURL is the address clients should be pointed at
func (b *Backend) BaseURL() string {
	return b.Server.URL + "/"
}

// Requests reports how many API calls the backend has served
func (b *Backend) Requests() int64 {
	return b.Handlers.Requests()
}

// Client returns a quiet client for the backend
func (b *Backend) Client() *client.Client {
	return NewClient(b.BaseURL())
}

// NewClient returns a quiet client for any base URL
func NewClient(baseURL string) *client.Client {
	return client.New(config.ClientConfig{BaseURL: baseURL}, client.WithLogger(DiscardLogger()))
}
