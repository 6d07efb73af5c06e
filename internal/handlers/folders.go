package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"photo-gallery/internal/database"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/media"
)

// ListFolders pages through folders, optionally filtered by name and root.
func (h *Handlers) ListFolders(w http.ResponseWriter, r *http.Request) {
	settings, err := h.db.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := queryInRange(r, "page", 1, 1, 1<<20)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	perPage, err := queryInRange(r, "per_page", settings.FoldersPerPage, 1, maxPerPage)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	folders, err := h.db.Folders(r.Context(), database.FolderQuery{
		Search:  q.Get("search"),
		Root:    q.Get("root"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"folders":  nonNil(folders),
		"page":     page,
		"per_page": perPage,
	})
}

// GetFolder returns the folder's entry in every root that contains it.
func (h *Handlers) GetFolder(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := media.ValidateFolder(name); err != nil {
		writeError(w, r, err)
		return
	}

	folders, err := h.db.FolderByName(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(folders) == 0 {
		writeJSONError(w, "Folder not found", http.StatusNotFound)
		return
	}
	writeJSONResponse(w, http.StatusOK, folders)
}

// DeleteFolder removes every record of the folder. Files stay on disk.
func (h *Handlers) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := media.ValidateFolder(name); err != nil {
		writeError(w, r, err)
		return
	}

	deleted, err := h.db.DeleteFolder(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if deleted == 0 {
		writeJSONError(w, "Folder not found", http.StatusNotFound)
		return
	}

	logging.Info("Deleted folder %s (%d images)", name, deleted)
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":  "deleted",
		"deleted": deleted,
	})
}

// ListRoots returns every scan root with its image and folder counts.
func (h *Handlers) ListRoots(w http.ResponseWriter, r *http.Request) {
	roots, err := h.db.RootsWithCounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, nonNil(roots))
}
