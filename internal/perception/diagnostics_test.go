package perception

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListModels_FiltersGemini(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if gotKey == "" {
			gotKey = r.URL.Query().Get("key")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"models":[
			{"name":"models/gemini-2.5-flash"},
			{"name":"models/embedding-001"},
			{"name":"models/gemini-2.0-flash-lite"}
		]}`))
	}))
	defer srv.Close()

	cfg := DefaultGeminiConfig("diag-key")
	cfg.BaseURL = srv.URL
	d := NewDiagnostics(cfg, srv.Client())

	names, err := d.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.0-flash-lite"}, names)
	assert.True(t, strings.HasSuffix(gotPath, "/models"), gotPath)
	assert.Equal(t, "diag-key", gotKey)
}

func TestListModels_MissingKey(t *testing.T) {
	d := NewDiagnostics(DefaultGeminiConfig(""), nil)
	_, err := d.ListModels(context.Background())
	assert.Error(t, err)
}

func TestListModels_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	cfg := DefaultGeminiConfig("bad")
	cfg.BaseURL = srv.URL
	_, err := NewDiagnostics(cfg, srv.Client()).ListModels(context.Background())
	assert.Error(t, err)
}
