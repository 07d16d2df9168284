// Handler helper functions shared across the package.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

const (
	headerContentType = "Content-Type"
	mimeJSON          = "application/json"
	mimeNDJSON        = "application/x-ndjson"
)

const (
	defaultJobsLimit = 20
	maxJobsLimit     = 100
)

// writeError writes a JSON error response with the given status code.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		http.Error(w, `{"error":"failed to encode error response"}`, http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON success response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set(headerContentType, mimeJSON)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// parseLimitParam extracts and clamps the limit query param.
// Extracted so list handlers stay a straight line.
func parseLimitParam(r *http.Request) int {
	limit := defaultJobsLimit
	if lim, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && lim > 0 {
		if lim > maxJobsLimit {
			lim = maxJobsLimit
		}
		limit = lim
	}
	return limit
}
