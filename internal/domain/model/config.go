package model

// Pricing is the dollar cost per 1,000 input and output tokens.
type Pricing struct {
	InputCost  float64 `json:"input_cost"`
	OutputCost float64 `json:"output_cost"`
}

// Guardrail references a content-guardrail configuration applied at
// generation time.
type Guardrail struct {
	Identifier string `json:"guardrailIdentifier"`
	Version    string `json:"guardrailVersion"`
}

// DefaultGuardrail returns the process-wide guardrail reference.
func DefaultGuardrail() Guardrail {
	return Guardrail{Identifier: "e1xjb1vcaxah", Version: "DRAFT"}
}

// Config holds the canonical generation parameters for one request.
// Built fresh per request by Resolve, optionally mutated once by
// ApplySettings, never persisted.
type Config struct {
	ModelID                    string
	Provider                   Provider
	MaxTokens                  int
	Temperature                float64
	TopP                       float64
	TopK                       int
	StopSequences              []string
	SupportsQueryDecomposition bool
	Pricing                    Pricing
	Guardrail                  Guardrail
}

// Settings are caller-supplied generation overrides. Nil pointer fields
// leave the resolved config value untouched; set fields win field-by-field.
type Settings struct {
	Temperature   *float64   `json:"temperature,omitempty"`
	TopP          *float64   `json:"top_p,omitempty"`
	TopK          *int       `json:"top_k,omitempty"`
	MaxTokens     *int       `json:"max_tokens,omitempty"`
	StopSequences []string   `json:"stop_sequences,omitempty"`
	Guardrail     *Guardrail `json:"guardrails,omitempty"`
}

// ApplySettings overlays explicit caller settings onto the config.
func (c *Config) ApplySettings(s Settings) {
	if s.Temperature != nil {
		c.Temperature = *s.Temperature
	}
	if s.TopP != nil {
		c.TopP = *s.TopP
	}
	if s.TopK != nil {
		c.TopK = *s.TopK
	}
	if s.MaxTokens != nil {
		c.MaxTokens = *s.MaxTokens
	}
	if s.StopSequences != nil {
		c.StopSequences = s.StopSequences
	}
	if s.Guardrail != nil {
		c.Guardrail = *s.Guardrail
	}
}

// Default generation parameters, shared by the default config and every
// resolved config that has no family-specific override.
const (
	defaultMaxTokens   = 2048
	defaultTemperature = 0.2
	defaultTopP        = 0.999
	defaultTopK        = 250
)

// defaultPricing is the baseline $/1K-token pricing pair used when a
// family has no pricing entry.
var defaultPricing = Pricing{InputCost: 0.0001, OutputCost: 0.0003}

// DefaultConfig is the fixed fallback for unknown or unparseable ARNs.
func DefaultConfig() Config {
	return Config{
		ModelID:       "unknown",
		Provider:      ProviderUnknown,
		MaxTokens:     defaultMaxTokens,
		Temperature:   defaultTemperature,
		TopP:          defaultTopP,
		TopK:          defaultTopK,
		StopSequences: []string{},
		Pricing:       defaultPricing,
		Guardrail:     DefaultGuardrail(),
	}
}

// familyPricing overrides the $/1K-token pricing per model family.
var familyPricing = map[string]Pricing{
	"titan-text-g1-premier": {0.0008, 0.0016},
	"nova-pro":              {0.00125, 0.00375},
	"nova-lite":             {0.0003, 0.0009},
	"nova-micro":            {0.0001, 0.0003},
	"claude-instant":        {0.00080, 0.00240},
	"claude-v2":             {0.00800, 0.02400},
	"claude-3-sonnet":       {0.00300, 0.00900},
	"claude-3-haiku":        {0.00025, 0.00075},
	"claude-3.5-sonnet":     {0.00300, 0.00900},
	"command-r":             {0.00015, 0.00020},
	"command-r-plus":        {0.00300, 0.00600},
	"llama-3-70b-instruct":  {0.00070, 0.00090},
	"mistral-large":         {0.00250, 0.00750},
	"mistral-small":         {0.00030, 0.00090},
}

// familyMaxTokens overrides the max output token limit per model family.
var familyMaxTokens = map[string]int{
	"claude-3-sonnet":   200000,
	"claude-3-haiku":    200000,
	"claude-3.5-sonnet": 4096,
	"mistral-large":     8192,
	"mistral-small":     8192,
}

// decompositionFamilies are the families known to support multi-step
// query decomposition.
var decompositionFamilies = map[string]bool{
	"claude-3-sonnet":   true,
	"claude-3-haiku":    true,
	"claude-3.5-sonnet": true,
}

// Resolve builds a Config for the given model ARN. It never returns an
// error: a parse failure or lookup miss produces DefaultConfig, so the
// caller always has some usable configuration.
func Resolve(modelARN string) Config {
	id := ParseIdentifier(modelARN)
	family := Family(id.ModelName)

	cfg := DefaultConfig()
	cfg.ModelID = id.ModelName
	cfg.Provider = id.Provider
	cfg.SupportsQueryDecomposition = decompositionFamilies[family]

	if pricing, ok := familyPricing[family]; ok {
		cfg.Pricing = pricing
	}
	if maxTokens, ok := familyMaxTokens[family]; ok {
		cfg.MaxTokens = maxTokens
	}

	return cfg
}
