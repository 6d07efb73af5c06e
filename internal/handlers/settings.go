package handlers

import (
	"net/http"

	"photo-gallery/internal/logging"
)

// GetSettings returns the gallery settings.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.db.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, settings)
}

// UpdateSettings replaces the gallery settings. Omitted fields keep their
// stored values.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.db.GetSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !decodeJSON(w, r, &settings) {
		return
	}

	if err := h.db.UpdateSettings(r.Context(), settings); err != nil {
		writeError(w, r, err)
		return
	}

	logging.With("settings", settings).Info("Settings updated")
	writeJSONResponse(w, http.StatusOK, settings)
}
