package knowledgebase

import (
	"context"
	"errors"
	"testing"

	"github.com/codevakure/bedrock-api-code/internal/infra/bedrock"
)

type catalogStub struct {
	models []bedrock.FoundationModel
	err    error
}

func (s *catalogStub) ListFoundationModels(_ context.Context) ([]bedrock.FoundationModel, error) {
	return s.models, s.err
}

func TestListModels_DedupesByBaseARN(t *testing.T) {
	t.Parallel()

	base := "arn:aws:bedrock:us-east-1::foundation-model/anthropic.claude-3-sonnet-20240229-v1:0"
	stub := &catalogStub{models: []bedrock.FoundationModel{
		{ModelARN: base + ":28k", ModelName: "Claude 3 Sonnet"},
		{ModelARN: base + ":200k", ModelName: "Claude 3 Sonnet"},
		{ModelARN: base, ModelName: "Claude 3 Sonnet"},
		{ModelARN: "arn:aws:bedrock:us-east-1::foundation-model/meta.llama3-70b-instruct-v1:0"},
	}}

	models, err := NewService(stub, nil).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models after dedupe, got %d", len(models))
	}

	// First occurrence wins, so the 28k variant supplies the entry.
	m := models[0]
	if m.ModelARN != base {
		t.Errorf("model_arn = %q, want base ARN %q", m.ModelARN, base)
	}
	if m.MaxToken != "28k" {
		t.Errorf("model_max_token = %q, want 28k", m.MaxToken)
	}
}

func TestListModels_Enrichment(t *testing.T) {
	t.Parallel()

	stub := &catalogStub{models: []bedrock.FoundationModel{{
		ModelARN:    "arn:aws:bedrock:us-east-1::foundation-model/anthropic.claude-3-sonnet-20240229-v1:0:200000",
		Description: "Multimodal mid-tier model",
	}}}

	models, err := NewService(stub, nil).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("expected 1 model, got %d", len(models))
	}

	m := models[0]
	if m.DisplayName != "Anthropic Claude 3 Sonnet 20240229 V1" {
		t.Errorf("model_name = %q", m.DisplayName)
	}
	if m.Vendor != "Anthropic" {
		t.Errorf("model = %q, want Anthropic", m.Vendor)
	}
	if m.Description != "Multimodal mid-tier model" {
		t.Errorf("description = %q", m.Description)
	}
	if m.Config.Provider != "anthropic" {
		t.Errorf("config.provider = %q", m.Config.Provider)
	}
	if m.Config.MaxTokens != 200000 {
		t.Errorf("config.max_tokens = %d, want family override", m.Config.MaxTokens)
	}
	if !m.Config.SupportsQueryDecomposition {
		t.Error("expected query decomposition support for claude-3-sonnet")
	}
	if m.Pricing.InputCost != 0.003 || m.Pricing.OutputCost != 0.009 {
		t.Errorf("pricing = %+v", m.Pricing)
	}
}

func TestListModels_UnknownModelGetsDefaults(t *testing.T) {
	t.Parallel()

	stub := &catalogStub{models: []bedrock.FoundationModel{{ModelARN: "foo-bar"}}}

	models, err := NewService(stub, nil).ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 1 {
		t.Fatalf("expected 1 model, got %d", len(models))
	}

	m := models[0]
	if m.DisplayName != "Unknown" || m.Vendor != "Unknown" {
		t.Errorf("entry = %+v, want unknown placeholders", m)
	}
	if m.Config.MaxTokens != 2048 {
		t.Errorf("config.max_tokens = %d, want default", m.Config.MaxTokens)
	}
	if m.Pricing.InputCost != 0.0001 {
		t.Errorf("pricing = %+v, want defaults", m.Pricing)
	}
}

func TestListModels_UpstreamError(t *testing.T) {
	t.Parallel()

	stub := &catalogStub{err: errors.New("denied")}
	if _, err := NewService(stub, nil).ListModels(context.Background()); err == nil {
		t.Error("expected error from upstream failure, got nil")
	}
}
