// Package generation translates a generic generation request into each
// provider's wire format, extracts the canonical text and citations out of
// each provider's response format, and re-chunks the final answer into a
// streamed sequence of fragments with per-fragment citation attribution.
package generation

import (
	"errors"
	"fmt"

	"github.com/codevakure/bedrock-api-code/internal/domain/model"
)

var (
	// ErrRequestBuild classifies request-translation failures. These map to
	// a request-validation error for the caller: a malformed request would
	// otherwise be billed without producing output.
	ErrRequestBuild = errors.New("build provider request")

	// ErrResponseExtract classifies response-translation failures (the
	// provider body is missing the field the format guarantees).
	ErrResponseExtract = errors.New("extract provider response")
)

// ─── provider wire formats (invoke path) ────────────────────────────────────

// anthropicVersion is the fixed Bedrock Anthropic API version header.
const anthropicVersion = "bedrock-2023-05-31"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicRequest is the Anthropic message-array format.
type anthropicRequest struct {
	AnthropicVersion string        `json:"anthropic_version"`
	Messages         []chatMessage `json:"messages"`
	Temperature      float64       `json:"temperature"`
	TopP             float64       `json:"top_p"`
	TopK             int           `json:"top_k"`
	MaxTokens        int           `json:"max_tokens"`
	StopSequences    []string      `json:"stop_sequences"`
}

// metaRequest is the Meta single-prompt format.
type metaRequest struct {
	Prompt        string   `json:"prompt"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"top_p"`
	MaxTokens     int      `json:"max_tokens"`
	StopSequences []string `json:"stop_sequences"`
}

// cohereRequest is the Cohere message format with single-letter sampling
// parameter names.
type cohereRequest struct {
	Message       string   `json:"message"`
	Temperature   float64  `json:"temperature"`
	P             float64  `json:"p"`
	K             int      `json:"k"`
	MaxTokens     int      `json:"max_tokens"`
	StopSequences []string `json:"stop_sequences"`
}

// mistralRequest is the Mistral parameter-object format.
type mistralRequest struct {
	Inputs     string            `json:"inputs"`
	Parameters mistralParameters `json:"parameters"`
}

type mistralParameters struct {
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	MaxTokens   int      `json:"max_tokens"`
	Stop        []string `json:"stop"`
}

// novaRequest is the Amazon Nova chat-array format. Content is a list of
// typed blocks rather than a bare string.
type novaRequest struct {
	Messages    []novaMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens"`
	Stop        []string      `json:"stop"`
}

type novaMessage struct {
	Role    string        `json:"role"`
	Content []novaContent `json:"content"`
}

type novaContent struct {
	Text string `json:"text"`
}

// titanRequest is the legacy Amazon Titan generation format. Wire-
// incompatible with Nova, hence the secondary family dispatch.
type titanRequest struct {
	InputText            string      `json:"inputText"`
	TextGenerationConfig titanConfig `json:"textGenerationConfig"`
}

type titanConfig struct {
	MaxTokenCount int      `json:"maxTokenCount"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"topP"`
	TopK          int      `json:"topK"`
	StopSequences []string `json:"stopSequences"`
}

// genericRequest is the best-effort shape sent to unknown providers.
type genericRequest struct {
	Prompt        string   `json:"prompt"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"top_p"`
	TopK          int      `json:"top_k"`
	MaxTokens     int      `json:"max_tokens"`
	StopSequences []string `json:"stop_sequences"`
}

// buildRequestBody dispatches on the resolved provider and produces that
// provider's request payload. The switch is exhaustive over the provider
// enum; vendors without a dedicated wire format (stability, ai21) share
// the generic shape with unknown.
func buildRequestBody(prompt string, cfg model.Config) (any, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: empty prompt", ErrRequestBuild)
	}

	switch cfg.Provider {
	case model.ProviderAnthropic:
		return anthropicRequest{
			AnthropicVersion: anthropicVersion,
			Messages:         []chatMessage{{Role: "user", Content: prompt}},
			Temperature:      cfg.Temperature,
			TopP:             cfg.TopP,
			TopK:             cfg.TopK,
			MaxTokens:        cfg.MaxTokens,
			StopSequences:    stopSequences(cfg),
		}, nil

	case model.ProviderMeta:
		return metaRequest{
			Prompt:        prompt,
			Temperature:   cfg.Temperature,
			TopP:          cfg.TopP,
			MaxTokens:     cfg.MaxTokens,
			StopSequences: stopSequences(cfg),
		}, nil

	case model.ProviderCohere:
		return cohereRequest{
			Message:       prompt,
			Temperature:   cfg.Temperature,
			P:             cfg.TopP,
			K:             cfg.TopK,
			MaxTokens:     cfg.MaxTokens,
			StopSequences: stopSequences(cfg),
		}, nil

	case model.ProviderMistral:
		return mistralRequest{
			Inputs: prompt,
			Parameters: mistralParameters{
				Temperature: cfg.Temperature,
				TopP:        cfg.TopP,
				MaxTokens:   cfg.MaxTokens,
				Stop:        stopSequences(cfg),
			},
		}, nil

	case model.ProviderAmazon:
		return buildAmazonRequest(prompt, cfg), nil

	case model.ProviderStability, model.ProviderAI21, model.ProviderUnknown:
		return genericRequest{
			Prompt:        prompt,
			Temperature:   cfg.Temperature,
			TopP:          cfg.TopP,
			TopK:          cfg.TopK,
			MaxTokens:     cfg.MaxTokens,
			StopSequences: stopSequences(cfg),
		}, nil
	}

	return nil, fmt.Errorf("%w: unhandled provider %q", ErrRequestBuild, cfg.Provider)
}

// buildAmazonRequest dispatches on model family: Nova sub-families speak
// the chat-array format, everything else the legacy Titan format.
func buildAmazonRequest(prompt string, cfg model.Config) any {
	if isNovaFamily(cfg.ModelID) {
		return novaRequest{
			Messages:    []novaMessage{{Role: "user", Content: []novaContent{{Text: prompt}}}},
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			MaxTokens:   cfg.MaxTokens,
			Stop:        stopSequences(cfg),
		}
	}
	return titanRequest{
		InputText: prompt,
		TextGenerationConfig: titanConfig{
			MaxTokenCount: cfg.MaxTokens,
			Temperature:   cfg.Temperature,
			TopP:          cfg.TopP,
			TopK:          cfg.TopK,
			StopSequences: stopSequences(cfg),
		},
	}
}

// isNovaFamily reports whether the model's family is one of the Nova
// sub-families.
func isNovaFamily(modelID string) bool {
	switch model.Family(modelID) {
	case "nova-pro", "nova-lite", "nova-micro":
		return true
	}
	return false
}

// stopSequences returns the configured stop sequences, never nil, so the
// wire field serializes as [] rather than null.
func stopSequences(cfg model.Config) []string {
	if cfg.StopSequences == nil {
		return []string{}
	}
	return cfg.StopSequences
}
