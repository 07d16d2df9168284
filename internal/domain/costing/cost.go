package costing

import (
	"strconv"
	"strings"

	"github.com/codevakure/bedrock-api-code/internal/domain/model"
)

// Metrics is the caller-facing cost block, with amounts pre-rendered as
// dollar strings ("$0.000123").
type Metrics struct {
	InputCost  string `json:"input_cost"`
	OutputCost string `json:"output_cost"`
	TotalCost  string `json:"total_cost"`
}

// minDisplayCost is the smallest dollar amount ever shown. A response is
// never displayed as exactly free — this is a product decision, not a
// numerical artifact.
const minDisplayCost = 0.000001

// retrievalRatePerToken is the flat $/token rate applied on the
// retrieval path. It deliberately differs from the per-1K-token model
// pricing used on the direct-invoke path; the two paths are billed with
// distinct constants and must stay separate.
const retrievalRatePerToken = 0.00001

// Calculate prices token usage with the resolved model's $/1K-token pair
// (direct-invoke path).
func Calculate(pricing model.Pricing, usage Usage) Metrics {
	inputTokens := clampToken(usage.InputTokens)
	outputTokens := clampToken(usage.OutputTokens)

	inputCost := float64(inputTokens) / 1000 * pricing.InputCost
	outputCost := float64(outputTokens) / 1000 * pricing.OutputCost
	return buildMetrics(inputCost, outputCost)
}

// CalculateRetrieval prices token usage with the flat retrieval-path rate.
func CalculateRetrieval(usage Usage) Metrics {
	inputCost := float64(clampToken(usage.InputTokens)) * retrievalRatePerToken
	outputCost := float64(clampToken(usage.OutputTokens)) * retrievalRatePerToken
	return buildMetrics(inputCost, outputCost)
}

// buildMetrics applies the minimum-cost floor and formats all amounts.
func buildMetrics(inputCost, outputCost float64) Metrics {
	total := inputCost + outputCost
	if total < minDisplayCost {
		inputCost = minDisplayCost
		outputCost = minDisplayCost
		total = inputCost + outputCost
	}
	return Metrics{
		InputCost:  FormatCost(inputCost),
		OutputCost: FormatCost(outputCost),
		TotalCost:  FormatCost(total),
	}
}

// FormatCost renders a dollar amount with exactly six decimal places,
// rounding half up on the decimal representation. strconv's shortest
// float form is rounded as a digit string so that 0.1234565 becomes
// $0.123457 rather than banker's-rounding down.
func FormatCost(v float64) string {
	return "$" + roundHalfUp(strconv.FormatFloat(v, 'f', -1, 64))
}

// roundHalfUp rounds a non-negative decimal string to six fraction
// digits, half away from zero.
func roundHalfUp(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	if len(frac) < 6 {
		return intPart + "." + frac + strings.Repeat("0", 6-len(frac))
	}
	if len(frac) == 6 {
		return intPart + "." + frac
	}

	digits := []byte(intPart + frac[:6])
	if frac[6] >= '5' {
		// Propagate the carry leftwards through the digit string.
		i := len(digits) - 1
		for i >= 0 {
			if digits[i] < '9' {
				digits[i]++
				break
			}
			digits[i] = '0'
			i--
		}
		if i < 0 {
			digits = append([]byte{'1'}, digits...)
		}
	}

	cut := len(digits) - 6
	return string(digits[:cut]) + "." + string(digits[cut:])
}
