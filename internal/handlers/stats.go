package handlers

import (
	"net/http"

	"photo-gallery/internal/cache"
)

// StatsResponse summarizes the library and the thumbnail cache.
type StatsResponse struct {
	Images      int64       `json:"images"`
	Folders     int64       `json:"folders"`
	Roots       int64       `json:"roots"`
	Tags        int64       `json:"tags"`
	LastIndexed string      `json:"last_indexed,omitempty"`
	Indexing    bool        `json:"indexing"`
	Cache       cache.Stats `json:"cache"`
}

// GetStats returns library counts and cache statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.LibraryStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	writeJSONResponse(w, http.StatusOK, StatsResponse{
		Images:      stats.Images,
		Folders:     stats.Folders,
		Roots:       stats.Roots,
		Tags:        stats.Tags,
		LastIndexed: formatTime(h.indexer.LastIndexTime()),
		Indexing:    h.indexer.IsIndexing(),
		Cache:       h.cache.Stats(),
	})
}
