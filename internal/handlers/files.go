package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"photo-gallery/internal/database"
	"photo-gallery/internal/logging"
)

const (
	defaultPerPage = 25
	maxPerPage     = 100
	maxPage        = 1_000_000
	maxRandomSize  = 1000
)

// FilesResponse is one page of images.
type FilesResponse struct {
	Images  []database.Image `json:"images"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
	Pages   int64            `json:"pages"`
}

// ListFiles pages through the images of a folder ("*" or empty for all).
func (h *Handlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	page, err := queryInRange(r, "page", 1, 1, maxPage)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	perPage, err := queryInRange(r, "per_page", defaultPerPage, 1, maxPerPage)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	images, total, err := h.db.Paged(r.Context(), r.URL.Query().Get("folder"), page, perPage)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, FilesResponse{
		Images:  nonNil(images),
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   (total + int64(perPage) - 1) / int64(perPage),
	})
}

// RandomFiles returns a random selection of images. With equal=true the
// selection is spread evenly over equal_size random folders.
func (h *Handlers) RandomFiles(w http.ResponseWriter, r *http.Request) {
	settings, err := h.db.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	size := settings.PhotoPerRandom
	if raw := q.Get("size"); raw != "" && raw != "*" {
		if size, err = queryInRange(r, "size", size, 1, maxRandomSize); err != nil {
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	equal, err := queryBool(r, "equal", settings.EqualEnabled)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var images []database.Image
	if equal {
		folders, ferr := queryInRange(r, "equal_size", settings.RandomEqualFolders, 1, maxRandomSize)
		if ferr != nil {
			writeJSONError(w, ferr.Error(), http.StatusBadRequest)
			return
		}
		images, err = h.db.RandomEqual(r.Context(), q.Get("root"), size, folders)
	} else {
		images, err = h.db.Random(r.Context(), database.RandomFilter{
			Folder:    q.Get("folder"),
			Root:      q.Get("root"),
			Tag:       q.Get("tag"),
			Extension: q.Get("extension"),
			Size:      size,
		})
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"images": nonNil(images),
		"count":  len(images),
	})
}

// FilesByTag lists images carrying the tag.
func (h *Handlers) FilesByTag(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	if tag == "" {
		writeJSONError(w, "Tag is required", http.StatusBadRequest)
		return
	}

	images, err := h.db.ByTag(r.Context(), tag)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"tag":    tag,
		"images": nonNil(images),
		"count":  len(images),
	})
}

// Download sends the original image, or a downscaled copy when both width
// and height are given.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	width, height, ok := sizeParams(w, r, 0)
	if !ok {
		return
	}

	result, err := h.thumbs.Download(r.Context(), hash, width, height)
	if err != nil {
		writeError(w, r, err)
		return
	}

	name, err := h.thumbs.Filename(r.Context(), hash)
	if err != nil {
		logging.Warn("Download name lookup failed for %s: %v", hash, err)
		name = hash
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	writeImage(w, r, result)
}

// sizeParams parses the width and height query parameters.
func sizeParams(w http.ResponseWriter, r *http.Request, def int) (int, int, bool) {
	width, err := queryInt(r, "width", def)
	if err == nil && width < 0 {
		err = fmt.Errorf("width must not be negative")
	}
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return 0, 0, false
	}
	height, err := queryInt(r, "height", def)
	if err == nil && height < 0 {
		err = fmt.Errorf("height must not be negative")
	}
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return 0, 0, false
	}
	return width, height, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
