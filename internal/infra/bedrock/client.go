// Package bedrock — HTTP adapter for the Bedrock runtime APIs.
// Client calls a Bedrock-compatible REST endpoint using stdlib net/http.
// Endpoints used:
//   - POST /model/{modelId}/invoke  — direct model invocation
//   - POST /retrieveAndGenerate     — knowledge-base retrieval + generation
//   - GET  /foundation-models       — catalog listing
//   - GET  /knowledgebases          — knowledge base inventory
//   - GET  /knowledgebases/{kbId}   — per-base detail
//   - GET  /knowledgebases/{kbId}/datasources — attached data sources
//   - POST /knowledgebases/{kbId}/ingestion-jobs — start knowledge base sync
package bedrock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/codevakure/bedrock-api-code/internal/domain/generation"
)

const (
	mimeJSON            = "application/json"
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
)

// Client implements the generation collaborators (ModelInvoker,
// RetrievalInvoker) plus catalog listing against a Bedrock runtime
// endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client with a 60s default timeout. Model
// invocations are slow by nature, so the timeout is generous.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ─── internal Bedrock JSON types ─────────────────────────────────────────────

type listModelsResponse struct {
	ModelSummaries []FoundationModel `json:"modelSummaries"`
}

// FoundationModel is one entry of the foundation-model catalog.
type FoundationModel struct {
	ModelARN         string   `json:"modelArn"`
	ModelID          string   `json:"modelId"`
	ModelName        string   `json:"modelName"`
	ProviderName     string   `json:"providerName"`
	Description      string   `json:"modelDescription,omitempty"`
	InputModalities  []string `json:"inputModalities,omitempty"`
	OutputModalities []string `json:"outputModalities,omitempty"`
	StreamingSupport bool     `json:"responseStreamingSupported,omitempty"`
	InferenceTypes   []string `json:"inferenceTypesSupported,omitempty"`
	ModelLifecycle   string   `json:"-"`
}

// UnmarshalJSON flattens the nested modelLifecycle.status field.
func (m *FoundationModel) UnmarshalJSON(data []byte) error {
	type alias FoundationModel
	aux := struct {
		*alias
		Lifecycle struct {
			Status string `json:"status"`
		} `json:"modelLifecycle"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.ModelLifecycle = aux.Lifecycle.Status
	return nil
}

type listKnowledgeBasesResponse struct {
	KnowledgeBaseSummaries []KnowledgeBaseSummary `json:"knowledgeBaseSummaries"`
	NextToken              string                 `json:"nextToken,omitempty"`
}

// KnowledgeBaseSummary is one entry of the knowledge base inventory.
type KnowledgeBaseSummary struct {
	KnowledgeBaseID string     `json:"knowledgeBaseId"`
	Name            string     `json:"name"`
	Status          string     `json:"status"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// KnowledgeBaseDetail carries the fields only the per-base endpoint
// returns.
type KnowledgeBaseDetail struct {
	Description          string                `json:"description,omitempty"`
	CreatedAt            *time.Time            `json:"createdAt,omitempty"`
	StorageConfiguration *StorageConfiguration `json:"storageConfiguration,omitempty"`
}

// StorageConfiguration describes the vector store backing a knowledge
// base.
type StorageConfiguration struct {
	Type                 string                      `json:"type,omitempty"`
	OpenSearchServerless *OpenSearchServerlessConfig `json:"opensearchServerlessConfiguration,omitempty"`
}

type OpenSearchServerlessConfig struct {
	CollectionARN   string       `json:"collectionArn,omitempty"`
	VectorIndexName string       `json:"vectorIndexName,omitempty"`
	FieldMapping    FieldMapping `json:"fieldMapping"`
}

// FieldMapping names the index fields a knowledge base writes into.
type FieldMapping struct {
	VectorField   string `json:"vectorField,omitempty"`
	TextField     string `json:"textField,omitempty"`
	MetadataField string `json:"metadataField,omitempty"`
}

// DataSourceSummary is one data source attached to a knowledge base.
type DataSourceSummary struct {
	DataSourceID    string     `json:"dataSourceId"`
	KnowledgeBaseID string     `json:"knowledgeBaseId"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// ─── collaborator implementation ─────────────────────────────────────────────

// InvokeModel sends one request body to POST /model/{modelId}/invoke and
// decodes the JSON response. The model ARN is path-escaped since ARNs
// contain slashes and colons.
func (c *Client) InvokeModel(ctx context.Context, modelARN string, body any) (map[string]any, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("bedrock invoke: marshal request: %w", err)
	}

	path := "/model/" + url.PathEscape(modelARN) + "/invoke"
	respBody, postErr := c.doPost(ctx, path, raw)
	if postErr != nil {
		return nil, postErr
	}
	defer respBody.Close()

	var decoded map[string]any
	if decodeErr := json.NewDecoder(respBody).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("decode invoke response: %w", decodeErr)
	}
	return decoded, nil
}

// RetrieveAndGenerate sends one retrieval request to
// POST /retrieveAndGenerate and decodes the JSON response.
func (c *Client) RetrieveAndGenerate(ctx context.Context, req generation.RetrievalRequest) (map[string]any, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("bedrock retrieve: marshal request: %w", err)
	}

	respBody, postErr := c.doPost(ctx, "/retrieveAndGenerate", raw)
	if postErr != nil {
		return nil, postErr
	}
	defer respBody.Close()

	var decoded map[string]any
	if decodeErr := json.NewDecoder(respBody).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("decode retrieve response: %w", decodeErr)
	}
	return decoded, nil
}

// ListFoundationModels fetches the full catalog via GET /foundation-models.
func (c *Client) ListFoundationModels(ctx context.Context) ([]FoundationModel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/foundation-models", nil)
	if err != nil {
		return nil, fmt.Errorf("bedrock list models: build request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bedrock list models: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bedrock list models: status %d", resp.StatusCode)
	}

	var decoded listModelsResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("decode list models response: %w", decodeErr)
	}
	return decoded.ModelSummaries, nil
}

// kbListPageSize caps one inventory page, matching the backend default.
const kbListPageSize = 10

// ListKnowledgeBases fetches one page of the knowledge base inventory
// via GET /knowledgebases.
func (c *Client) ListKnowledgeBases(ctx context.Context) ([]KnowledgeBaseSummary, error) {
	respBody, err := c.doGet(ctx, fmt.Sprintf("/knowledgebases?maxResults=%d", kbListPageSize))
	if err != nil {
		return nil, err
	}
	defer respBody.Close()

	var decoded listKnowledgeBasesResponse
	if decodeErr := json.NewDecoder(respBody).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("decode knowledge base list: %w", decodeErr)
	}
	return decoded.KnowledgeBaseSummaries, nil
}

// GetKnowledgeBase fetches detail for one knowledge base via
// GET /knowledgebases/{kbId}.
func (c *Client) GetKnowledgeBase(ctx context.Context, knowledgeBaseID string) (KnowledgeBaseDetail, error) {
	respBody, err := c.doGet(ctx, "/knowledgebases/"+url.PathEscape(knowledgeBaseID))
	if err != nil {
		return KnowledgeBaseDetail{}, err
	}
	defer respBody.Close()

	var decoded struct {
		KnowledgeBase KnowledgeBaseDetail `json:"knowledgeBase"`
	}
	if decodeErr := json.NewDecoder(respBody).Decode(&decoded); decodeErr != nil {
		return KnowledgeBaseDetail{}, fmt.Errorf("decode knowledge base detail: %w", decodeErr)
	}
	return decoded.KnowledgeBase, nil
}

// ListDataSources fetches the data sources attached to one knowledge
// base via GET /knowledgebases/{kbId}/datasources.
func (c *Client) ListDataSources(ctx context.Context, knowledgeBaseID string) ([]DataSourceSummary, error) {
	respBody, err := c.doGet(ctx, "/knowledgebases/"+url.PathEscape(knowledgeBaseID)+"/datasources")
	if err != nil {
		return nil, err
	}
	defer respBody.Close()

	var decoded struct {
		DataSourceSummaries []DataSourceSummary `json:"dataSourceSummaries"`
	}
	if decodeErr := json.NewDecoder(respBody).Decode(&decoded); decodeErr != nil {
		return nil, fmt.Errorf("decode data source list: %w", decodeErr)
	}
	return decoded.DataSourceSummaries, nil
}

// StartIngestionJob triggers knowledge base ingestion via
// POST /knowledgebases/{kbId}/ingestion-jobs. The backend runs the job;
// this call only asks for it to start.
func (c *Client) StartIngestionJob(ctx context.Context, knowledgeBaseID string) error {
	path := "/knowledgebases/" + url.PathEscape(knowledgeBaseID) + "/ingestion-jobs"
	respBody, err := c.doPost(ctx, path, []byte("{}"))
	if err != nil {
		return err
	}
	respBody.Close() //nolint:errcheck
	return nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// doGet sends a GET request to baseURL+path and returns the response body.
// Caller is responsible for closing the returned ReadCloser.
func (c *Client) doGet(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("bedrock get %s: build request: %w", path, err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bedrock get %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck
		return nil, fmt.Errorf("bedrock get %s: status %d", path, resp.StatusCode)
	}
	return resp.Body, nil
}

// doPost sends a POST request to baseURL+path and returns the response body.
// Caller is responsible for closing the returned ReadCloser.
func (c *Client) doPost(ctx context.Context, path string, body []byte) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("bedrock post %s: build request: %w", path, err)
	}
	req.Header.Set(headerContentType, mimeJSON)
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bedrock post %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close() //nolint:errcheck
		return nil, fmt.Errorf("bedrock post %s: status %d", path, resp.StatusCode)
	}
	return resp.Body, nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set(headerAuthorization, "Bearer "+c.apiKey)
	}
}
