// HTTP handler for GET /ai/knowledgebase/models.
package handlers

import (
	"context"
	"net/http"

	"github.com/codevakure/bedrock-api-code/internal/domain/knowledgebase"
)

// ModelCatalog is the minimal contract used by ModelsHandler.
// knowledgebase.Service satisfies this interface.
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]knowledgebase.ModelInfo, error)
}

// ModelsHandler serves the deduplicated, enriched model catalog.
type ModelsHandler struct {
	catalog ModelCatalog
}

func NewModelsHandler(catalog ModelCatalog) *ModelsHandler {
	return &ModelsHandler{catalog: catalog}
}

// ModelsResponse is the response body for GET /ai/knowledgebase/models.
type ModelsResponse struct {
	Models []knowledgebase.ModelInfo `json:"models"`
}

// ListModels handles GET /ai/knowledgebase/models.
//
// Response codes:
//   - 200 OK: catalog returned (possibly empty)
//   - 502 Bad Gateway: upstream catalog listing failed
func (h *ModelsHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.catalog.ListModels(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to list models")
		return
	}
	if models == nil {
		models = []knowledgebase.ModelInfo{}
	}
	writeJSON(w, http.StatusOK, ModelsResponse{Models: models})
}
