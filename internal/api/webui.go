// SPDX-License-Identifier: MIT

package api

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
)

//go:embed web/*
var webFS embed.FS

// asset is a minified display file ready to serve.
type asset struct {
	contentType string
	body        []byte
	etag        string
}

var displayAssets = loadAssets()

var assetTypes = map[string]string{
	".html": "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
}

// loadAssets minifies the embedded display page once. A file that fails to
// minify is served as-is.
func loadAssets() map[string]asset {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("application/javascript", js.Minify)

	out := make(map[string]asset)
	_ = fs.WalkDir(webFS, "web", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		mediaType, ok := assetTypes[strings.ToLower(path.Ext(p))]
		if !ok {
			return nil
		}
		raw, err := webFS.ReadFile(p)
		if err != nil {
			return nil
		}
		body, err := m.Bytes(mediaType, raw)
		if err != nil {
			logger := xglog.WithComponent("api")
			logger.Warn().Err(err).Str(xglog.FieldPath, p).Msg("display asset minify failed, using original")
			body = raw
		}
		sum := sha256.Sum256(body)
		out[strings.TrimPrefix(p, "web/")] = asset{
			contentType: mediaType + "; charset=utf-8",
			body:        body,
			etag:        `"` + hex.EncodeToString(sum[:8]) + `"`,
		}
		return nil
	})
	return out
}

func (s *Server) mountDisplay(r chi.Router) {
	r.Get("/", serveAsset("index.html"))
	r.Get("/assets/{name}", func(w http.ResponseWriter, r *http.Request) {
		serveAsset(chi.URLParam(r, "name"))(w, r)
	})
}

func serveAsset(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := displayAssets[name]
		if !ok {
			writeNotFound(w)
			return
		}
		w.Header().Set("ETag", a.etag)
		w.Header().Set("Cache-Control", "no-cache")
		if r.Header.Get("If-None-Match") == a.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", a.contentType)
		_, _ = w.Write(a.body)
	}
}
