// HTTP handler for GET /ai/audit/queries — the query accounting log.
package handlers

import (
	"context"
	"net/http"

	"github.com/codevakure/bedrock-api-code/internal/domain/audit"
)

// AuditLog is the minimal contract used by AuditHandler.
// audit.Service satisfies this interface.
type AuditLog interface {
	Recent(ctx context.Context, limit int) ([]audit.Entry, error)
}

// AuditHandler serves recent query-log entries.
type AuditHandler struct {
	log AuditLog
}

func NewAuditHandler(log AuditLog) *AuditHandler {
	return &AuditHandler{log: log}
}

// AuditResponse is the response body for GET /ai/audit/queries.
type AuditResponse struct {
	Queries []audit.Entry `json:"queries"`
}

// ListQueries handles GET /ai/audit/queries. Accepts ?limit=N, clamped
// the same way as the sync job listing.
//
// Response codes:
//   - 200 OK: entries returned, newest first (possibly empty)
//   - 500 Internal Server Error: query log read failed
func (h *AuditHandler) ListQueries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.log.Recent(r.Context(), parseLimitParam(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read query log")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, AuditResponse{Queries: entries})
}
