// Package costing derives token counts and dollar cost from provider
// response bodies. Extraction is best-effort with layered fallbacks: known
// provider field paths first, a generic usage probe second, text-length
// heuristics last. It never fails outward and never reports zero tokens —
// zero means "no data", so every field is floored at 1.
package costing

import (
	"github.com/codevakure/bedrock-api-code/internal/domain/model"
)

// Usage holds token counts for one request. All fields are >= 1.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// EstimateTokens approximates the token count of text, assuming four
// characters per token. Characters, not bytes: multi-byte text would
// otherwise inflate the estimate. Empty text still counts as one token.
func EstimateTokens(text string) int {
	if text == "" {
		return 1
	}
	n := len([]rune(text)) / 4
	if n < 1 {
		return 1
	}
	return n
}

// TokenUsage extracts token counts from a decoded response body. The
// resolution order is fixed: provider-specific field paths, then the
// generic usage probe, then text-length estimation. First success wins.
func TokenUsage(body map[string]any, provider model.Provider, modelID string) Usage {
	usage := Usage{InputTokens: 1, OutputTokens: 1, TotalTokens: 2}
	if body == nil {
		return usage
	}

	// Bedrock retrieval responses have shipped usage data under several
	// layouts across API versions; probe all of them in order.
	if provider == model.ProviderAmazon {
		if u, ok := amazonUsage(body); ok {
			return u.withTotal()
		}
	}

	switch provider {
	case model.ProviderAnthropic:
		usage.InputTokens = clampToken(intAt(mapAt(body, "usage"), "input_tokens"))
		usage.OutputTokens = clampToken(intAt(mapAt(body, "usage"), "output_tokens"))
	case model.ProviderCohere:
		usage = cohereUsage(body)
	case model.ProviderMistral:
		usage.InputTokens = clampToken(intAt(mapAt(body, "usage"), "prompt_tokens"))
		usage.OutputTokens = clampToken(intAt(mapAt(body, "usage"), "completion_tokens"))
	default:
		// Unknown providers: estimate from the response text when present,
		// splitting 30/70 between input and output.
		if text, ok := body["text"].(string); ok {
			total := EstimateTokens(text)
			usage.InputTokens = clampToken(int(float64(total) * 0.3))
			usage.OutputTokens = clampToken(total - usage.InputTokens)
		}
	}

	usage = usage.withTotal()

	// Still at the floor: fall back to estimating from the request input
	// and generated output text carried on retrieval response bodies.
	if usage.InputTokens == 1 && usage.OutputTokens == 1 {
		if in, ok := stringAt(mapAt(body, "input"), "text"); ok {
			usage.InputTokens = clampToken(EstimateTokens(in))
			if out, outOK := stringAt(mapAt(body, "output"), "text"); outOK {
				usage.OutputTokens = clampToken(EstimateTokens(out))
			} else {
				usage.OutputTokens = clampToken(int(float64(usage.InputTokens) * 1.5))
			}
			usage = usage.withTotal()
		}
	}

	return usage
}

// amazonUsage probes the field layouts used by Bedrock invoke and
// retrieve-and-generate responses, newest first.
func amazonUsage(body map[string]any) (Usage, bool) {
	var u Usage

	// Newer retrieval API nests metrics under a response sub-envelope.
	if metrics := mapAt(mapAt(body, "retrieveAndGenerateResponse"), "metrics"); metrics != nil {
		in, inOK := intOK(metrics, "promptTokenCount")
		out, outOK := intOK(metrics, "completionTokenCount")
		if inOK && outOK {
			u.InputTokens = clampToken(in)
			u.OutputTokens = clampToken(out)
			return u, true
		}
	}

	// Top-level usage object, in either key convention.
	if usage := mapAt(body, "usage"); usage != nil {
		if in, ok := intOK(usage, "inputTokens"); ok {
			if out, outOK := intOK(usage, "outputTokens"); outOK {
				u.InputTokens = clampToken(in)
				u.OutputTokens = clampToken(out)
				return u, true
			}
		}
		if in, ok := intOK(usage, "prompt_tokens"); ok {
			if out, outOK := intOK(usage, "completion_tokens"); outOK {
				u.InputTokens = clampToken(in)
				u.OutputTokens = clampToken(out)
				return u, true
			}
		}
	}

	// Legacy layout under responseMetadata.tokenUsage.
	if tu := mapAt(mapAt(body, "responseMetadata"), "tokenUsage"); tu != nil {
		in, inOK := intOK(tu, "promptTokens")
		out, outOK := intOK(tu, "completionTokens")
		if inOK && outOK {
			u.InputTokens = clampToken(in)
			u.OutputTokens = clampToken(out)
			return u, true
		}
	}

	// No structured usage anywhere: estimate from the generated text,
	// assuming the prompt was roughly half its size.
	if out, ok := stringAt(mapAt(body, "output"), "text"); ok {
		outTokens := EstimateTokens(out)
		u.OutputTokens = clampToken(outTokens)
		u.InputTokens = clampToken(outTokens / 2)
		return u, true
	}

	return u, false
}

// cohereUsage reads Cohere's meta block: detailed prompt/completion counts
// when present, otherwise a 30/70 split of the billed total.
func cohereUsage(body map[string]any) Usage {
	usage := Usage{InputTokens: 1, OutputTokens: 1}

	meta := mapAt(body, "meta")
	total := intAt(meta, "billed_tokens")
	if total < 2 {
		total = 2
	}
	usage.TotalTokens = total

	if tokens := mapAt(meta, "tokens"); tokens != nil {
		usage.InputTokens = clampToken(intAt(tokens, "prompt_tokens"))
		usage.OutputTokens = clampToken(intAt(tokens, "completion_tokens"))
		return usage
	}

	usage.InputTokens = clampToken(int(float64(total) * 0.3))
	usage.OutputTokens = clampToken(total - usage.InputTokens)
	return usage
}

func (u Usage) withTotal() Usage {
	u.TotalTokens = u.InputTokens + u.OutputTokens
	if u.TotalTokens < 2 {
		u.TotalTokens = 2
	}
	return u
}

// clampToken floors a token count at 1.
func clampToken(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// ─── JSON probing helpers ────────────────────────────────────────────────────

// mapAt returns m[key] as a map, or nil when absent or a different type.
func mapAt(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}

// intAt returns m[key] as an int, or 0 when absent. JSON numbers decode
// to float64, so both numeric types are accepted.
func intAt(m map[string]any, key string) int {
	n, _ := intOK(m, key)
	return n
}

func intOK(m map[string]any, key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func stringAt(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	s, ok := m[key].(string)
	return s, ok
}
