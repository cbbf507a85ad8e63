// Package llm provides the model configuration and client abstraction used for resume analysis
// and document text extraction.
package llm

import "fmt"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for cheap tasks: transcribing a document to plain text
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: the resume analysis
	TierStandard ModelTier = "standard"
	// TierAdvanced is reserved for operators who want a stronger analysis model
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, the only one implemented.
const ProviderGemini Provider = "gemini"

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := &Config{
		Provider: c.Provider,
		Models:   make(map[ModelTier]string, len(c.Models)+1),
	}
	for k, v := range c.Models {
		next.Models[k] = v
	}
	next.Models[tier] = model
	return next
}

// WithOverrides applies tier-name to model-name overrides, as read from the "models" block of
// the server config. Unknown tier names are rejected.
func (c *Config) WithOverrides(overrides map[string]string) (*Config, error) {
	next := c
	for name, model := range overrides {
		tier := ModelTier(name)
		switch tier {
		case TierLite, TierStandard, TierAdvanced:
		default:
			return nil, fmt.Errorf("unknown model tier %q", name)
		}
		if model == "" {
			continue
		}
		next = next.WithModel(tier, model)
	}
	return next, nil
}
