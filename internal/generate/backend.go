package generate

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/post-engine/pkg/types"
)

// NewBackend returns the Generator selected by cfg.Backend. An empty backend
// means openai.
func NewBackend(cfg types.GenerationConfig) (Generator, error) {
	switch cfg.Backend {
	case types.BackendOpenAI, "":
		return NewOpenAIBackend(cfg)
	case types.BackendClaude:
		if cfg.APIKey == "" {
			return nil, errors.New("anthropic api key missing; set generation.api_key or .secrets/anthropic-api-key")
		}
		if cfg.Model == "" {
			return nil, errors.New("generation.model is required")
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		return &ClaudeBackend{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			Client:      &http.Client{Timeout: timeout},
		}, nil
	default:
		return nil, fmt.Errorf("generation backend %q not supported: use openai or claude", cfg.Backend)
	}
}
