package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/media"
	"photo-gallery/internal/streaming"
)

// PhotoThumbnail serves the cached thumbnail of one image.
func (h *Handlers) PhotoThumbnail(w http.ResponseWriter, r *http.Request) {
	width, height, ok := sizeParams(w, r, media.DefaultThumbnailSize)
	if !ok {
		return
	}

	result, err := h.thumbs.PhotoThumbnail(r.Context(), mux.Vars(r)["hash"], width, height)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeImage(w, r, result)
}

// FolderThumbnail serves the number-th cached thumbnail of a folder.
func (h *Handlers) FolderThumbnail(w http.ResponseWriter, r *http.Request) {
	width, height, ok := sizeParams(w, r, media.DefaultThumbnailSize)
	if !ok {
		return
	}
	number, err := queryInRange(r, "number", 1, 1, 100)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.thumbs.FolderThumbnail(r.Context(), mux.Vars(r)["folder"], number, width, height)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeImage(w, r, result)
}

// etag is a strong validator derived from the body.
func etag(data []byte) string {
	sum := sha256.Sum256(data)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}

// writeImage sends image bytes with caching headers, answering a matching
// If-None-Match with 304.
func writeImage(w http.ResponseWriter, r *http.Request, result *media.Result) {
	tag := etag(result.Data)
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(result.MaxAge.Seconds())))
	if result.Cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}

	if matchesETag(r.Header.Get("If-None-Match"), tag) {
		w.Header().Del("Content-Length")
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if err := streaming.WriteBody(r.Context(), w, result.Data, streaming.DefaultConfig()); err != nil {
		if errors.Is(err, streaming.ErrClientGone) {
			logging.Debug("Client left during %s", r.URL.Path)
			return
		}
		logging.Warn("Failed to write %s: %v", r.URL.Path, err)
	}
}

func matchesETag(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == tag {
			return true
		}
	}
	return false
}
