// HTTP handler for POST /ai/query — the streaming generation endpoint.
// Fragments are written as newline-delimited JSON, one object per line,
// flushed after each fragment so consumers see text as it is produced.
package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/codevakure/bedrock-api-code/internal/api/ctxkeys"
	"github.com/codevakure/bedrock-api-code/internal/domain/generation"
	"github.com/codevakure/bedrock-api-code/internal/domain/model"
)

// QueryEngine is the minimal contract used by QueryHandler.
// generation.Service satisfies this interface.
type QueryEngine interface {
	Generate(ctx context.Context, in generation.Input) <-chan generation.Fragment
}

// QueryHandler handles streaming generation requests.
type QueryHandler struct {
	engine QueryEngine
}

func NewQueryHandler(engine QueryEngine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

// QueryRequest is the request body for POST /ai/query. A non-empty
// knowledge_base_id selects the retrieval path; model_arn overrides the
// configured default model.
type QueryRequest struct {
	Prompt          string          `json:"prompt"`
	DocumentID      string          `json:"document_id,omitempty"`
	Settings        *model.Settings `json:"settings,omitempty"`
	SystemPrompt    string          `json:"system_prompt,omitempty"`
	KnowledgeBaseID string          `json:"knowledge_base_id,omitempty"`
	ModelARN        string          `json:"model_arn,omitempty"`
}

// Query handles POST /ai/query.
//
// Response codes:
//   - 200 OK: stream follows; per-request failures arrive as a terminal
//     error fragment inside the stream, not as an HTTP error
//   - 400 Bad Request: invalid JSON or missing prompt
//   - 500 Internal Server Error: response writer cannot stream
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	// AuthMiddleware injected the caller identity; it travels with the
	// request into the query audit log.
	clientID, _ := r.Context().Value(ctxkeys.ClientID).(string)

	stream := h.engine.Generate(r.Context(), generation.Input{
		Prompt:          req.Prompt,
		DocumentID:      req.DocumentID,
		Settings:        req.Settings,
		SystemPrompt:    req.SystemPrompt,
		KnowledgeBaseID: req.KnowledgeBaseID,
		ModelARN:        req.ModelARN,
		ClientID:        clientID,
	})

	bw, flusher, err := prepareQueryStream(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	streamFragments(bw, flusher, stream)
}

// prepareQueryStream sets streaming headers and resolves the flusher.
func prepareQueryStream(w http.ResponseWriter) (*bufio.Writer, http.Flusher, error) {
	w.Header().Set(headerContentType, mimeNDJSON)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Flusher")
	}

	return bufio.NewWriter(w), flusher, nil
}

// streamFragments drains the fragment channel onto the wire, one JSON
// object per line. Write failures stop consumption; the request context
// cancellation then stops the producer.
func streamFragments(bw *bufio.Writer, flusher http.Flusher, stream <-chan generation.Fragment) {
	for frag := range stream {
		b, err := json.Marshal(frag)
		if err != nil {
			return
		}
		if _, err := fmt.Fprintf(bw, "%s\n", b); err != nil {
			return
		}
		_ = bw.Flush()
		flusher.Flush()
	}
}
