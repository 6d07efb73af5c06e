package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"photo-gallery/internal/cache"
	"photo-gallery/internal/database"
	"photo-gallery/internal/indexer"
	"photo-gallery/internal/media"
)

// Handlers serves the gallery API.
type Handlers struct {
	db      *database.Database
	indexer *indexer.Indexer
	thumbs  *media.ThumbnailService
	cache   *cache.Cache
}

// New creates the API handlers.
func New(db *database.Database, idx *indexer.Indexer, thumbs *media.ThumbnailService, c *cache.Cache) *Handlers {
	return &Handlers{
		db:      db,
		indexer: idx,
		thumbs:  thumbs,
		cache:   c,
	}
}

// RegisterRoutes installs every API and probe route on r.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet, http.MethodHead).Name("health")
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/index", h.StartIndex).Methods(http.MethodGet, http.MethodPost).Name("index-start")
	api.HandleFunc("/index/cancel", h.CancelIndex).Methods(http.MethodGet, http.MethodPost).Name("index-cancel")
	api.HandleFunc("/index/status", h.IndexStatus).Methods(http.MethodGet).Name("index-status")

	api.HandleFunc("/files", h.ListFiles).Methods(http.MethodGet).Name("files")
	api.HandleFunc("/files/random", h.RandomFiles).Methods(http.MethodGet).Name("files-random")
	api.HandleFunc("/files/tag/{tag}", h.FilesByTag).Methods(http.MethodGet).Name("files-by-tag")
	api.HandleFunc("/files/{hash}/download", h.Download).Methods(http.MethodGet).Name("download")

	api.HandleFunc("/thumbnails/photo/{hash}", h.PhotoThumbnail).Methods(http.MethodGet).Name("thumb-photo")
	api.HandleFunc("/thumbnails/folder/{folder}", h.FolderThumbnail).Methods(http.MethodGet).Name("thumb-folder")

	api.HandleFunc("/folders", h.ListFolders).Methods(http.MethodGet).Name("folders")
	api.HandleFunc("/folders/{name}", h.GetFolder).Methods(http.MethodGet).Name("folder")
	api.HandleFunc("/folders/{name}", h.DeleteFolder).Methods(http.MethodDelete).Name("folder-delete")
	api.HandleFunc("/roots", h.ListRoots).Methods(http.MethodGet).Name("roots")

	api.HandleFunc("/tags", h.ListTags).Methods(http.MethodGet).Name("tags")
	api.HandleFunc("/tags/photo", h.SetPhotoTags).Methods(http.MethodPost).Name("tags-photo")
	api.HandleFunc("/tags/folder", h.SetFolderTags).Methods(http.MethodPost).Name("tags-folder")

	api.HandleFunc("/settings", h.GetSettings).Methods(http.MethodGet).Name("settings")
	api.HandleFunc("/settings", h.UpdateSettings).Methods(http.MethodPut, http.MethodPost).Name("settings-update")

	api.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet).Name("stats")
}
