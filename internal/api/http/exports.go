// internal/api/http/exports.go
package http

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/history-contest/internal/storage"
)

// MountExports serves generated files such as the score summary.
func MountExports(r chi.Router, bs storage.BlobStore) {
	// GET /exports/*   -> returns the blob at whatever follows /exports/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")        // everything after /exports/
		key = strings.TrimPrefix(key, "/") // normalize
		rc, err := bs.Get(key)
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "store error", http.StatusInternalServerError)
			return
		}
		defer rc.Close()
		ct := "application/octet-stream"
		if path.Ext(key) == ".csv" {
			ct = "text/csv; charset=utf-8"
		}
		w.Header().Set("Content-Type", ct)
		_, _ = io.Copy(w, rc)
	})
}
