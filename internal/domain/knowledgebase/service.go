// Package knowledgebase serves the foundation-model catalog and the
// knowledge base inventory. Catalog entries are de-duplicated by base
// ARN and enriched with the resolved generation config and pricing.
package knowledgebase

import (
	"context"
	"fmt"
	"strings"

	"github.com/codevakure/bedrock-api-code/internal/domain/model"
	"github.com/codevakure/bedrock-api-code/internal/infra/bedrock"
)

// Catalog is the upstream model listing dependency.
type Catalog interface {
	ListFoundationModels(ctx context.Context) ([]bedrock.FoundationModel, error)
}

// ConfigInfo is the generation-parameter block attached to each catalog
// entry.
type ConfigInfo struct {
	Provider                   string          `json:"provider"`
	MaxTokens                  int             `json:"max_tokens"`
	Temperature                float64         `json:"temperature"`
	TopP                       float64         `json:"top_p"`
	TopK                       int             `json:"top_k"`
	StopSequences              []string        `json:"stop_sequences"`
	SupportsQueryDecomposition bool            `json:"supports_query_decomposition"`
	Guardrails                 model.Guardrail `json:"guardrails"`
}

// ModelInfo is one catalog entry as served to clients.
type ModelInfo struct {
	ModelARN    string        `json:"model_arn"`
	MaxToken    string        `json:"model_max_token"`
	DisplayName string        `json:"model_name"`
	Vendor      string        `json:"model"`
	Description string        `json:"description"`
	Config      ConfigInfo    `json:"config"`
	Pricing     model.Pricing `json:"pricing"`
}

// Service exposes the enriched model catalog and the knowledge base
// inventory.
type Service struct {
	catalog   Catalog
	inventory Inventory
}

func NewService(catalog Catalog, inventory Inventory) *Service {
	return &Service{catalog: catalog, inventory: inventory}
}

// ListModels fetches the foundation-model catalog and collapses context
// window variants onto their base ARN, keeping the first occurrence.
// Each surviving entry is enriched with its resolved config and pricing.
func (s *Service) ListModels(ctx context.Context) ([]ModelInfo, error) {
	summaries, err := s.catalog.ListFoundationModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	seen := make(map[string]bool, len(summaries))
	models := make([]ModelInfo, 0, len(summaries))
	for _, summary := range summaries {
		id := model.ParseIdentifier(summary.ModelARN)
		if seen[id.BaseARN] {
			continue
		}
		seen[id.BaseARN] = true
		models = append(models, enrich(id, summary))
	}
	return models, nil
}

// enrich builds the client-facing entry for one base model.
func enrich(id model.Identifier, summary bedrock.FoundationModel) ModelInfo {
	cfg := model.Resolve(id.BaseARN)
	return ModelInfo{
		ModelARN:    id.BaseARN,
		MaxToken:    id.TokenSuffix,
		DisplayName: displayName(id.ModelName),
		Vendor:      vendorName(id.ModelName),
		Description: summary.Description,
		Config: ConfigInfo{
			Provider:                   string(cfg.Provider),
			MaxTokens:                  cfg.MaxTokens,
			Temperature:                cfg.Temperature,
			TopP:                       cfg.TopP,
			TopK:                       cfg.TopK,
			StopSequences:              cfg.StopSequences,
			SupportsQueryDecomposition: cfg.SupportsQueryDecomposition,
			Guardrails:                 cfg.Guardrail,
		},
		Pricing: cfg.Pricing,
	}
}

// displayName turns "anthropic.claude-3-sonnet-20240229-v1" into
// "Anthropic Claude 3 Sonnet 20240229 V1".
func displayName(modelName string) string {
	flat := strings.NewReplacer("-", " ", ".", " ").Replace(modelName)
	words := strings.Fields(flat)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// vendorName is the capitalized token before the first dot of the model
// name, e.g. "Anthropic".
func vendorName(modelName string) string {
	prefix, _, _ := strings.Cut(modelName, ".")
	if prefix == "" {
		return "Unknown"
	}
	return strings.ToUpper(prefix[:1]) + prefix[1:]
}
