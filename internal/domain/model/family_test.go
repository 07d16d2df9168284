package model

import "testing"

func TestFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"anthropic.claude-3-sonnet-20240229-v1", "claude-3-sonnet"},
		{"anthropic.claude-3-haiku-20240307-v1", "claude-3-haiku"},
		{"anthropic.claude-3-5-sonnet-20240620-v1", "claude-3.5-sonnet"},
		{"anthropic.claude-v2:1", "claude-v2"},
		{"anthropic.claude-instant-v1", "claude-instant"},
		{"amazon.titan-text-premier-v1", "titan-text-g1-premier"},
		{"amazon.nova-pro-v1", "nova-pro"},
		{"amazon.nova-lite-v1", "nova-lite"},
		{"amazon.nova-micro-v1", "nova-micro"},
		{"amazon.titan-embed-text-v2", "titan-embed-text"},
		{"cohere.command-r-plus-v1", "command-r-plus"},
		{"cohere.command-r-v1", "command-r"},
		{"cohere.command-light-text-v14", "command-light"},
		{"meta.llama3-70b-instruct-v1", "llama-3-70b-instruct"},
		{"meta.llama3-8b-instruct-v1", "llama-3-other"},
		{"mistral.mistral-large-2402-v1", "mistral-large"},
		{"mistral.mistral-small-2402-v1", "mistral-small"},
		{"mistral.mixtral-8x7b-instruct-v0", "mixtral"},
		{"stability.stable-diffusion-xl-v1", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Family(tt.name); got != tt.want {
				t.Errorf("Family(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

// Family rules are an ordered list; a name matching two patterns must take
// the earlier-declared label. "command-r-plus" matches both the plus rule
// and the bare command-r rule — the plus rule is declared first and wins.
func TestFamily_FirstMatchWins(t *testing.T) {
	t.Parallel()

	if got := Family("cohere.command-r-plus-v1"); got != "command-r-plus" {
		t.Fatalf("Family = %q, want command-r-plus (earlier rule must win)", got)
	}
}

// Underscores normalize to hyphens before matching.
func TestFamily_UnderscoreNormalization(t *testing.T) {
	t.Parallel()

	if got := Family("mistral.mistral_large_2402"); got != "mistral-large" {
		t.Fatalf("Family = %q, want mistral-large", got)
	}
}
