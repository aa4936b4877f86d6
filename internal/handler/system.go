package handler

import (
	"net/http"
	"time"

	"trustmap/pkg/logger"
)

// SystemHandler reports service health and triggers snapshot reloads.
type SystemHandler struct {
	snapshots Snapshots
	logger    logger.Logger
	startTime time.Time
}

func NewSystemHandler(snapshots Snapshots, log logger.Logger) *SystemHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &SystemHandler{snapshots: snapshots, logger: log, startTime: time.Now()}
}

// Health is 200 once a snapshot is loaded and 503 before that.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"service":        "trustmap",
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	}
	idx, err := h.snapshots.Current()
	if err != nil {
		resp["status"] = "starting"
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp["status"] = "healthy"
	resp["snapshot_id"] = idx.ID
	resp["fetched_at"] = idx.Snapshot.FetchedAt
	respondJSON(w, http.StatusOK, resp)
}

// RefreshSnapshot reloads the snapshot now. On failure the previous snapshot
// keeps serving and the caller gets 502.
func (h *SystemHandler) RefreshSnapshot(w http.ResponseWriter, r *http.Request) {
	idx, err := h.snapshots.Refresh(r.Context())
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	warnings := idx.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshot_id": idx.ID,
		"fetched_at":  idx.Snapshot.FetchedAt,
		"records":     idx.Counts(),
		"warnings":    warnings,
	})
}
