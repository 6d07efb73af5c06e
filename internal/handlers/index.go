package handlers

import (
	"net/http"
	"time"
)

const (
	indexStarted        = "started"
	indexAlreadyRunning = "already_running"
	indexCancelled      = "cancelled"
	indexIdle           = "idle"
)

// IndexResponse is returned by the start and cancel endpoints.
type IndexResponse struct {
	Status      string `json:"status"`
	TaskRunning bool   `json:"task_running"`
	Message     string `json:"message"`
	LastIndexed string `json:"last_indexed,omitempty"`
}

// IndexStatusResponse describes the current indexing run.
type IndexStatusResponse struct {
	TaskRunning bool   `json:"task_running"`
	LastIndexed string `json:"last_indexed,omitempty"`
	RunID       string `json:"run_id,omitempty"`
	StartedAt   string `json:"started_at,omitempty"`
	FilesSeen   int64  `json:"files_seen"`
	Inserted    int64  `json:"inserted"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// StartIndex launches an indexing run over every configured root.
// force=true re-hashes every file and overwrites existing records.
func (h *Handlers) StartIndex(w http.ResponseWriter, r *http.Request) {
	force, err := queryBool(r, "force", false)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := h.indexer.Start(h.indexer.Roots(), force)
	resp := IndexResponse{
		TaskRunning: true,
		LastIndexed: formatTime(h.indexer.LastIndexTime()),
	}
	if result.Started {
		resp.Status = indexStarted
		resp.Message = "Indexing started"
		writeJSONResponse(w, http.StatusAccepted, resp)
		return
	}
	if !result.AlreadyRunning {
		writeJSONError(w, "Indexer is shutting down", http.StatusServiceUnavailable)
		return
	}

	resp.Status = indexAlreadyRunning
	resp.Message = "Indexing is already in progress"
	writeJSONResponse(w, http.StatusOK, resp)
}

// CancelIndex stops the running indexing task, if any.
func (h *Handlers) CancelIndex(w http.ResponseWriter, _ *http.Request) {
	if h.indexer.Cancel() {
		writeJSONResponse(w, http.StatusOK, IndexResponse{
			Status:  indexCancelled,
			Message: "Indexing cancelled",
		})
		return
	}

	writeJSONResponse(w, http.StatusOK, IndexResponse{
		Status:  indexIdle,
		Message: "No indexing task is running",
	})
}

// IndexStatus reports progress of the current run.
func (h *Handlers) IndexStatus(w http.ResponseWriter, _ *http.Request) {
	st := h.indexer.Status()
	w.Header().Set("Cache-Control", "no-cache")
	writeJSONResponse(w, http.StatusOK, IndexStatusResponse{
		TaskRunning: st.Running,
		LastIndexed: formatTime(st.LastIndexed),
		RunID:       st.RunID,
		StartedAt:   formatTime(st.StartedAt),
		FilesSeen:   st.FilesSeen,
		Inserted:    st.Inserted,
	})
}
