// Tests for the query audit log handler.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/codevakure/bedrock-api-code/internal/domain/audit"
)

type auditLogStub struct {
	entries  []audit.Entry
	err      error
	gotLimit int
}

func (s *auditLogStub) Recent(_ context.Context, limit int) ([]audit.Entry, error) {
	s.gotLimit = limit
	return s.entries, s.err
}

func TestListQueries_ReturnsWrappedEntries(t *testing.T) {
	t.Parallel()

	stub := &auditLogStub{entries: []audit.Entry{
		{
			ID:          "q-2",
			ClientID:    "reporting-svc",
			ModelARN:    "arn:model-a",
			PathKind:    "invoke",
			PromptChars: 42,
			DurationMS:  900,
			TotalCost:   "$0.000210",
			CreatedAt:   time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		{ID: "q-1", ClientID: "batch-svc", ModelARN: "arn:model-b", PathKind: "retrieval"},
	}}
	h := NewAuditHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/ai/audit/queries", nil)
	rr := httptest.NewRecorder()
	h.ListQueries(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
	if stub.gotLimit != defaultJobsLimit {
		t.Errorf("limit = %d; want %d", stub.gotLimit, defaultJobsLimit)
	}

	var resp AuditResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Queries) != 2 || resp.Queries[0].ID != "q-2" {
		t.Errorf("queries = %+v", resp.Queries)
	}
	if resp.Queries[0].ClientID != "reporting-svc" {
		t.Errorf("client_id = %q", resp.Queries[0].ClientID)
	}
}

func TestListQueries_EmptyLogIsEmptyArray(t *testing.T) {
	t.Parallel()

	h := NewAuditHandler(&auditLogStub{})

	req := httptest.NewRequest(http.MethodGet, "/ai/audit/queries", nil)
	rr := httptest.NewRecorder()
	h.ListQueries(rr, req)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if string(raw["queries"]) != "[]" {
		t.Errorf("queries = %s; want []", raw["queries"])
	}
}

func TestListQueries_LimitParamClamped(t *testing.T) {
	t.Parallel()

	stub := &auditLogStub{}
	h := NewAuditHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/ai/audit/queries?limit=500", nil)
	rr := httptest.NewRecorder()
	h.ListQueries(rr, req)

	if stub.gotLimit != maxJobsLimit {
		t.Errorf("limit = %d; want %d", stub.gotLimit, maxJobsLimit)
	}
}

func TestListQueries_StorageFailure_Returns500(t *testing.T) {
	t.Parallel()

	h := NewAuditHandler(&auditLogStub{err: errors.New("db locked")})

	req := httptest.NewRequest(http.MethodGet, "/ai/audit/queries", nil)
	rr := httptest.NewRecorder()
	h.ListQueries(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", rr.Code)
	}
}
