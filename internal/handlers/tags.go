package handlers

import (
	"net/http"

	"photo-gallery/internal/database"
	"photo-gallery/internal/media"
)

// PhotoTagsRequest replaces the tags of one image.
type PhotoTagsRequest struct {
	Hash string   `json:"hash"`
	Tags []string `json:"tags"`
}

// FolderTagsRequest replaces the tags of every image in a folder.
type FolderTagsRequest struct {
	Folder string   `json:"folder"`
	Tags   []string `json:"tags"`
}

// ListTags returns the distinct tags, optionally within one folder.
func (h *Handlers) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.db.AllTags(r.Context(), r.URL.Query().Get("folder"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"tags": nonNil(tags)})
}

// SetPhotoTags replaces the tags of the image identified by hash.
func (h *Handlers) SetPhotoTags(w http.ResponseWriter, r *http.Request) {
	var req PhotoTagsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := media.ValidateHash(req.Hash); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.db.SetTags(r.Context(), req.Hash, req.Tags)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if updated == 0 {
		writeJSONError(w, "Image not found", http.StatusNotFound)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":  "updated",
		"updated": updated,
		"tags":    nonNil(database.NormalizeTags(req.Tags)),
	})
}

// SetFolderTags replaces the tags of every image in the folder.
func (h *Handlers) SetFolderTags(w http.ResponseWriter, r *http.Request) {
	var req FolderTagsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := media.ValidateFolder(req.Folder); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.db.SetFolderTags(r.Context(), req.Folder, req.Tags)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if updated == 0 {
		writeJSONError(w, "Folder not found", http.StatusNotFound)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":  "updated",
		"updated": updated,
		"tags":    nonNil(database.NormalizeTags(req.Tags)),
	})
}
