// SPDX-License-Identifier: MIT

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayAssets_Loaded(t *testing.T) {
	for _, name := range []string{"index.html", "display.js", "display.css"} {
		a, ok := displayAssets[name]
		require.True(t, ok, name)
		assert.NotEmpty(t, a.body, name)
		assert.NotEmpty(t, a.etag, name)
	}

	raw, err := webFS.ReadFile("web/display.css")
	require.NoError(t, err)
	assert.Less(t, len(displayAssets["display.css"].body), len(raw), "css should be minified")
}

func TestDisplay_Serve(t *testing.T) {
	h := New(testConfig(), newFakeController()).Handler()

	rr := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "/assets/display.js")
	assert.NotEmpty(t, rr.Header().Get("Content-Security-Policy"))

	rr = do(t, h, http.MethodGet, "/assets/display.js", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/javascript; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "/api/v1/slideshow/ws")

	rr = do(t, h, http.MethodGet, "/assets/missing.js", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDisplay_NotModified(t *testing.T) {
	h := New(testConfig(), newFakeController()).Handler()
	etag := displayAssets["display.css"].etag

	req := httptest.NewRequest(http.MethodGet, "/assets/display.css", nil)
	req.Header.Set("If-None-Match", etag)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotModified, rr.Code)
	assert.Empty(t, rr.Body.Bytes())
}
