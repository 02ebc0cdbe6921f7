// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/pdiddy/post-engine/pkg/types"
)

// OpenAIBackend generates completions through the chat completions API. It
// also serves OpenAI-compatible gateways when BaseURL is set.
type OpenAIBackend struct {
	client      openai.Client
	model       string
	temperature float64
	topP        float64
}

// NewOpenAIBackend builds a backend from the generation config.
func NewOpenAIBackend(cfg types.GenerationConfig, extra ...option.RequestOption) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set generation.api_key or .secrets/openai-api-key")
	}
	if cfg.Model == "" {
		return nil, errors.New("generation.model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	opts = append(opts, extra...)

	return &OpenAIBackend{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}, nil
}

// Generate sends prompt as a single user message.
func (o *OpenAIBackend) Generate(ctx context.Context, prompt string, stop []string, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(int64(maxTokens)),
		Stop:      openai.ChatCompletionNewParamsStopUnion{OfStringArray: stop},
	}
	if o.temperature > 0 {
		params.Temperature = openai.Float(o.temperature)
	}
	if o.topP > 0 {
		params.TopP = openai.Float(o.topP)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
