package model

import (
	"regexp"
	"strings"
)

// ARN parsing patterns. A Bedrock model ARN may carry a trailing
// context-window suffix ("...claude-v2:1:200k"); the base ARN is the part
// before that suffix and always names the same model.
var (
	// base ARN + context-window suffix, e.g. ":200000" or ":100k"
	arnSuffixRe = regexp.MustCompile(`^(.+?:\d+):(\d+[kKmM]?)$`)
	// model name is the path segment after the foundation-model marker
	modelNameRe = regexp.MustCompile(`foundation-model/([a-zA-Z0-9\-.]+)`)
	// vendor prefix is the token between the marker and the first dot
	providerRe = regexp.MustCompile(`foundation-model/([^.]+)\.`)
)

// Identifier is the parsed form of a model ARN. Constructed once per
// request and immutable afterwards.
type Identifier struct {
	OriginalARN string
	BaseARN     string
	TokenSuffix string // context-window suffix without the colon, "" if absent
	ModelName   string // "unknown" if the ARN has no foundation-model segment
	Provider    Provider
}

// ParseIdentifier splits a model ARN into its base ARN, optional
// context-window suffix, model name and vendor. It never fails: every
// field degrades to a defined fallback.
func ParseIdentifier(modelARN string) Identifier {
	id := Identifier{
		OriginalARN: modelARN,
		BaseARN:     modelARN,
		ModelName:   "unknown",
		Provider:    ProviderUnknown,
	}

	if m := arnSuffixRe.FindStringSubmatch(modelARN); m != nil {
		id.BaseARN = m[1]
		id.TokenSuffix = m[2]
	}

	if m := modelNameRe.FindStringSubmatch(id.BaseARN); m != nil {
		id.ModelName = m[1]
	}

	if m := providerRe.FindStringSubmatch(id.BaseARN); m != nil {
		id.Provider = ParseProvider(m[1])
	}

	return id
}

// NormalizedName lowercases the model name and replaces underscores and
// spaces with hyphens, giving the form the family rules match against.
func (id Identifier) NormalizedName() string {
	name := strings.ToLower(id.ModelName)
	name = strings.ReplaceAll(name, "_", "-")
	return strings.ReplaceAll(name, " ", "-")
}
