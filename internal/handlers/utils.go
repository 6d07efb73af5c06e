package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"photo-gallery/internal/database"
	"photo-gallery/internal/logging"
	"photo-gallery/internal/media"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON encodes v as JSON and writes it to the response writer.
// Encoding or write errors are logged since the status is already sent.
func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONResponse writes v with the given status code.
func writeJSONResponse(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	writeJSON(w, v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSONResponse(w, statusCode, map[string]string{"error": message})
}

// writeError maps err to a status. Server errors are logged and their
// detail is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logging.Error("%s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSONError(w, http.StatusText(status), status)
		return
	}
	writeJSONError(w, err.Error(), status)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrInvalidSettings):
		return http.StatusUnprocessableEntity
	default:
		return media.HTTPStatus(err)
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// queryInt parses an integer query parameter. A missing value yields def;
// a malformed value is reported as an error.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return v, nil
}

// queryBool parses a boolean query parameter, defaulting to def.
func queryBool(r *http.Request, key string, def bool) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(key + " must be true or false")
	}
	return v, nil
}

// queryInRange parses key and checks lo <= value <= hi.
func queryInRange(r *http.Request, key string, def, lo, hi int) (int, error) {
	v, err := queryInt(r, key, def)
	if err != nil {
		return 0, err
	}
	if v < lo || v > hi {
		return 0, errors.New(key + " must be between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi))
	}
	return v, nil
}
