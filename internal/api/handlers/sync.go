// HTTP handlers for the sync job endpoints:
// POST /ai/sync, GET /ai/sync/status, GET /ai/sync/jobs.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/codevakure/bedrock-api-code/internal/domain/syncjob"
)

// SyncService is the minimal contract used by SyncHandler.
// syncjob.Service satisfies this interface.
type SyncService interface {
	StartSync(ctx context.Context) (syncjob.Job, error)
	Status(ctx context.Context) (syncjob.StatusReport, error)
	ListJobs(ctx context.Context, limit int) ([]syncjob.Job, error)
}

// SyncHandler tracks knowledge base ingestion jobs over HTTP.
type SyncHandler struct {
	svc SyncService
}

func NewSyncHandler(svc SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// StartSync handles POST /ai/sync.
//
// Response codes:
//   - 200 OK: new job started
//   - 409 Conflict: a job is already running; its id is returned
//   - 500 Internal Server Error: job could not be recorded
func (h *SyncHandler) StartSync(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.StartSync(r.Context())
	if err != nil {
		if errors.Is(err, syncjob.ErrSyncInProgress) {
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":      "Sync already in progress",
				"job_id":     job.ID,
				"started_at": job.StartedAt.Format(time.RFC3339),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to start sync")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Sync started successfully",
		"job_id":     job.ID,
		"started_at": job.StartedAt.Format(time.RFC3339),
	})
}

// SyncStatus handles GET /ai/sync/status.
func (h *SyncHandler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Status(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read sync status")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// JobsResponse is the response body for GET /ai/sync/jobs.
type JobsResponse struct {
	Jobs []syncjob.Job `json:"jobs"`
}

// ListJobs handles GET /ai/sync/jobs. Accepts an optional limit query
// param; jobs come back most recent first.
func (h *SyncHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListJobs(r.Context(), parseLimitParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sync jobs")
		return
	}
	if jobs == nil {
		jobs = []syncjob.Job{}
	}
	writeJSON(w, http.StatusOK, JobsResponse{Jobs: jobs})
}
