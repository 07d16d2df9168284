// Package config provides application-wide configuration from env vars,
// optionally overridden by a YAML file. All fields have safe defaults so
// the binary runs locally without any setup.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration.
type Config struct {
	HTTPAddr string `yaml:"http_addr"` // HTTP_ADDR — default ":8000"

	// Bedrock endpoint
	BedrockBaseURL string `yaml:"bedrock_base_url"` // BEDROCK_BASE_URL
	BedrockAPIKey  string `yaml:"bedrock_api_key"`  // BEDROCK_API_KEY

	// Model selection. The default model ARN is derived from region and
	// model id when not set explicitly.
	Region          string `yaml:"region"`            // AWS_REGION — default "us-east-1"
	ModelID         string `yaml:"model_id"`          // MODEL_ID
	DefaultModelARN string `yaml:"default_model_arn"` // DEFAULT_MODEL_ARN
	KnowledgeBaseID string `yaml:"knowledge_base_id"` // KNOWLEDGE_BASE_ID

	// Local storage
	DBPath string `yaml:"db_path"` // DB_PATH — default "bedrock-api.db"

	// Auth
	JWTSecret  string `yaml:"jwt_secret"`   // JWT_SECRET
	APIKeyHash string `yaml:"api_key_hash"` // API_KEY_HASH — bcrypt hash of the accepted API key
}

const (
	envKeyHTTPAddr        = "HTTP_ADDR"
	envKeyBedrockBaseURL  = "BEDROCK_BASE_URL"
	envKeyBedrockAPIKey   = "BEDROCK_API_KEY"
	envKeyRegion          = "AWS_REGION"
	envKeyModelID         = "MODEL_ID"
	envKeyDefaultModelARN = "DEFAULT_MODEL_ARN"
	envKeyKnowledgeBaseID = "KNOWLEDGE_BASE_ID"
	envKeyDBPath          = "DB_PATH"
	envKeyJWTSecret       = "JWT_SECRET"
	envKeyAPIKeyHash      = "API_KEY_HASH"
)

const defaultModelID = "anthropic.claude-3-sonnet-20240229-v1:0"

// Load reads configuration from environment variables, applying defaults
// for missing values.
func Load() Config {
	region := envOr(envKeyRegion, "us-east-1")

	cfg := Config{
		HTTPAddr:        envOr(envKeyHTTPAddr, ":8000"),
		BedrockBaseURL:  envOr(envKeyBedrockBaseURL, "https://bedrock-runtime."+region+".amazonaws.com"),
		BedrockAPIKey:   os.Getenv(envKeyBedrockAPIKey),
		Region:          region,
		ModelID:         envOr(envKeyModelID, defaultModelID),
		DefaultModelARN: os.Getenv(envKeyDefaultModelARN),
		KnowledgeBaseID: os.Getenv(envKeyKnowledgeBaseID),
		DBPath:          envOr(envKeyDBPath, "bedrock-api.db"),
		JWTSecret:       envOr(envKeyJWTSecret, "dev-secret-change-me"),
		APIKeyHash:      os.Getenv(envKeyAPIKeyHash),
	}
	cfg.applyDerived()
	return cfg
}

// LoadFile loads env configuration and overlays non-empty values from a
// YAML file. A missing file is not an error; a malformed one is.
func LoadFile(path string) (Config, error) {
	cfg := Load()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	var overlay Config
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return Config{}, fmt.Errorf("config: parse %q: %w", path, err)
	}
	cfg.merge(overlay)
	cfg.applyDerived()
	return cfg, nil
}

// applyDerived fills DefaultModelARN from region and model id, the same
// construction the hosted endpoint uses.
func (c *Config) applyDerived() {
	if c.DefaultModelARN == "" {
		c.DefaultModelARN = fmt.Sprintf("arn:aws:bedrock:%s::foundation-model/%s", c.Region, c.ModelID)
	}
}

// merge overlays non-empty fields from o.
func (c *Config) merge(o Config) {
	if o.HTTPAddr != "" {
		c.HTTPAddr = o.HTTPAddr
	}
	if o.BedrockBaseURL != "" {
		c.BedrockBaseURL = o.BedrockBaseURL
	}
	if o.BedrockAPIKey != "" {
		c.BedrockAPIKey = o.BedrockAPIKey
	}
	if o.Region != "" {
		c.Region = o.Region
	}
	if o.ModelID != "" {
		c.ModelID = o.ModelID
		c.DefaultModelARN = "" // rederive from the new model id
	}
	if o.DefaultModelARN != "" {
		c.DefaultModelARN = o.DefaultModelARN
	}
	if o.KnowledgeBaseID != "" {
		c.KnowledgeBaseID = o.KnowledgeBaseID
	}
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.JWTSecret != "" {
		c.JWTSecret = o.JWTSecret
	}
	if o.APIKeyHash != "" {
		c.APIKeyHash = o.APIKeyHash
	}
}

// envOr returns the value of the environment variable key, or fallback
// if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
