package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/dbtlineage/internal/config"
	"github.com/matzehuels/dbtlineage/pkg/errors"
	"github.com/matzehuels/dbtlineage/pkg/graph"
	"github.com/matzehuels/dbtlineage/pkg/manifest"
	"github.com/matzehuels/dbtlineage/pkg/observability"
)

func newTestHandler(t *testing.T, manifestPath string) http.Handler {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("DBTLINEAGE_MANIFEST", manifestPath)

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	return New(io.Discard, LogInfo).newHandler(cfg)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServeRoutes(t *testing.T) {
	h := newTestHandler(t, fixture(t))

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/", "text/html; charset=utf-8", "vis-network"},
		{"/graph.json", "application/json", `"project": "healthcare_lineage"`},
		{"/lineage.png", "image/png", "\x89PNG"},
		{"/healthz", "text/plain; charset=utf-8", "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, h, tt.path)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestServeGraphJSON(t *testing.T) {
	h := newTestHandler(t, fixture(t))

	rec := get(t, h, "/graph.json")
	require.Equal(t, http.StatusOK, rec.Code)

	g, err := graph.ReadGraph(rec.Body)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 6)
	assert.Len(t, g.Edges, 5)
	assert.Equal(t, "basic", g.Profile)
}

func TestServeMissingManifest(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "target", "manifest.json")
	h := newTestHandler(t, missing)

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: Manifest file not found at "+missing)
	assert.Contains(t, rec.Body.String(), manifest.GenerateHint)

	rec = get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServeUnknownRoute(t *testing.T) {
	h := newTestHandler(t, fixture(t))
	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.NotFound("manifest.json", ""), http.StatusNotFound},
		{errors.New(errors.ErrCodeInvalidManifest, "bad"), http.StatusUnprocessableEntity},
		{errors.New(errors.ErrCodeInvalidFormat, "bad"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeInternal, "no png artifact was rendered"), http.StatusInternalServerError},
		{context.Canceled, http.StatusServiceUnavailable},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

type recordingServerHooks struct {
	observability.NoopServerHooks
	paths    []string
	statuses []int
}

func (r *recordingServerHooks) OnRequest(_ context.Context, _, path string, status int, _ time.Duration) {
	r.paths = append(r.paths, path)
	r.statuses = append(r.statuses, status)
}

func TestServeReportsRequests(t *testing.T) {
	rec := &recordingServerHooks{}
	observability.SetServerHooks(rec)
	t.Cleanup(observability.Reset)

	h := newTestHandler(t, fixture(t))
	get(t, h, "/healthz")
	get(t, h, "/missing")

	assert.Equal(t, []string{"/healthz", "/missing"}, rec.paths)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, rec.statuses)
}

func TestLogHooksWriteRequests(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)
	c.RegisterHooks()
	t.Cleanup(observability.Reset)

	observability.Server().OnRequest(context.Background(), http.MethodGet, "/graph.json", http.StatusOK, time.Millisecond)
	observability.Pipeline().OnLoadStart(context.Background(), "target/manifest.json")

	out := buf.String()
	assert.Contains(t, out, "/graph.json")
	assert.NotContains(t, out, "load started", "pipeline events are debug level")
}
