package main

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-editor/internal/config"
	"github.com/jonathan/resume-editor/internal/llm"
)

// loadConfig layers the environment over the optional JSON file, then applies the built-in
// defaults and validates the result.
func loadConfig(path string) (*config.Config, error) {
	env, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	var file config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		file = *loaded
	}

	cfg := env.MergeWithDefaults(file)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newLLMClient builds the model client. The API key comes from the flag, then the config.
func newLLMClient(ctx context.Context, cfg *config.Config, apiKey string) (llm.Client, error) {
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return nil, err
	}
	return llm.NewClient(ctx, llmCfg, apiKey)
}
