package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"customerdb/internal/config"
	"customerdb/internal/logging"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")

	srv, err := NewServer(cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.GetStore().Close() })
	return srv
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/healthz", http.StatusOK, `"ok"`},
		{http.MethodGet, "/api/status", http.StatusOK, `"initialized":false`},
		{http.MethodGet, "/api/customers", http.StatusOK, `"total":0`},
		{http.MethodGet, "/metrics", http.StatusOK, "go_goroutines"},
		{http.MethodGet, "/nope", http.StatusNotFound, `"error"`},
		{http.MethodOptions, "/api/upload", http.StatusNoContent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.True(t, strings.Contains(w.Body.String(), tt.body), w.Body.String())
			}
		})
	}
}

func TestServer_CORSHeaders(t *testing.T) {
	srv := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
