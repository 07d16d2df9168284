package model

import (
	"regexp"
	"strings"
)

// FamilyUnknown is returned when no family rule matches a model name.
const FamilyUnknown = "unknown"

// familyRule pairs a name pattern with its normalized family label.
type familyRule struct {
	pattern *regexp.Regexp
	family  string
}

// familyRules maps model names to families. The list is ordered and the
// first matching pattern wins — "command-r-plus" must be tested before
// the bare "command-r" rule would swallow it, so rule order is part of
// the contract, not an implementation detail.
var familyRules = []familyRule{
	// Amazon
	{regexp.MustCompile(`titan-text-premier`), "titan-text-g1-premier"},
	{regexp.MustCompile(`nova-pro`), "nova-pro"},
	{regexp.MustCompile(`nova-lite`), "nova-lite"},
	{regexp.MustCompile(`nova-micro`), "nova-micro"},
	{regexp.MustCompile(`titan-embed-text-v\d`), "titan-embed-text"},
	{regexp.MustCompile(`titan-embed-image-v\d`), "titan-embed-image"},
	// Anthropic
	{regexp.MustCompile(`claude-instant-v\d`), "claude-instant"},
	{regexp.MustCompile(`claude-v2(?::\d+)?`), "claude-v2"},
	{regexp.MustCompile(`claude-3-sonnet-\d{8}`), "claude-3-sonnet"},
	{regexp.MustCompile(`claude-3-haiku-\d{8}`), "claude-3-haiku"},
	{regexp.MustCompile(`claude-3\.5-sonnet-\d{8}`), "claude-3.5-sonnet"},
	{regexp.MustCompile(`claude-3-5-sonnet-\d{8}`), "claude-3.5-sonnet"},
	// Cohere — command-r-plus before command-r (order-sensitive)
	{regexp.MustCompile(`command-r-plus`), "command-r-plus"},
	{regexp.MustCompile(`command-r`), "command-r"},
	{regexp.MustCompile(`command-light`), "command-light"},
	// Meta
	{regexp.MustCompile(`llama3-70b`), "llama-3-70b-instruct"},
	{regexp.MustCompile(`llama3-\d+b`), "llama-3-other"},
	// Mistral
	{regexp.MustCompile(`mistral-large-\d{4}`), "mistral-large"},
	{regexp.MustCompile(`mistral-small-\d{4}`), "mistral-small"},
	{regexp.MustCompile(`mixtral-8x7b`), "mixtral"},
}

// Family classifies a model name into its family label. The name is
// lowercased and underscore-normalized before matching; rules are
// evaluated top to bottom and the first match wins.
func Family(modelName string) string {
	normalized := strings.ReplaceAll(strings.ToLower(modelName), "_", "-")
	for _, rule := range familyRules {
		if rule.pattern.MatchString(normalized) {
			return rule.family
		}
	}
	return FamilyUnknown
}
