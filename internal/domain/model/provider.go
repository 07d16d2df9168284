// Package model resolves opaque Bedrock model ARNs into canonical
// configurations: provider, family, token limits, pricing, and capability
// flags. Resolution never fails outward — unknown or unparseable ARNs
// degrade to one hardcoded default configuration.
package model

import "strings"

// Provider identifies the vendor that owns a model's wire format.
type Provider string

const (
	ProviderAmazon    Provider = "amazon"
	ProviderAnthropic Provider = "anthropic"
	ProviderCohere    Provider = "cohere"
	ProviderMeta      Provider = "meta"
	ProviderMistral   Provider = "mistral"
	ProviderStability Provider = "stability"
	ProviderAI21      Provider = "ai21"
	ProviderUnknown   Provider = "unknown"
)

// knownProviders is the closed set of recognized vendor prefixes.
var knownProviders = []Provider{
	ProviderAmazon,
	ProviderAnthropic,
	ProviderCohere,
	ProviderMeta,
	ProviderMistral,
	ProviderStability,
	ProviderAI21,
}

// ParseProvider matches a vendor prefix case-insensitively against the
// closed provider set. Anything unrecognized maps to ProviderUnknown.
func ParseProvider(s string) Provider {
	lower := strings.ToLower(s)
	for _, p := range knownProviders {
		if string(p) == lower {
			return p
		}
	}
	return ProviderUnknown
}
