// HTTP handler for GET /ai/knowledgebase/all — the knowledge base
// inventory.
package handlers

import (
	"context"
	"net/http"

	"github.com/codevakure/bedrock-api-code/internal/domain/knowledgebase"
)

// KnowledgeBaseDirectory is the minimal contract used by
// KnowledgeBasesHandler. knowledgebase.Service satisfies this interface.
type KnowledgeBaseDirectory interface {
	ListKnowledgeBases(ctx context.Context) (knowledgebase.KnowledgeBaseList, error)
}

// KnowledgeBasesHandler serves the active knowledge base inventory.
type KnowledgeBasesHandler struct {
	directory KnowledgeBaseDirectory
}

func NewKnowledgeBasesHandler(directory KnowledgeBaseDirectory) *KnowledgeBasesHandler {
	return &KnowledgeBasesHandler{directory: directory}
}

// ListKnowledgeBases handles GET /ai/knowledgebase/all.
//
// Response codes:
//   - 200 OK: inventory returned (possibly empty)
//   - 502 Bad Gateway: upstream inventory listing failed
func (h *KnowledgeBasesHandler) ListKnowledgeBases(w http.ResponseWriter, r *http.Request) {
	list, err := h.directory.ListKnowledgeBases(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to list knowledge bases")
		return
	}
	if list.KnowledgeBases == nil {
		list.KnowledgeBases = []knowledgebase.KnowledgeBaseInfo{}
	}
	writeJSON(w, http.StatusOK, list)
}
