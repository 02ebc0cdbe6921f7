// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate turns a GenerationRequest into a publishable post:
// example retrieval, prompt assembly, a call to the text generator and a
// deterministic normalization pass over its output.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/post-engine/internal/retrieve"
	"github.com/pdiddy/post-engine/pkg/types"
)

// MaxTokens is the completion budget passed to the generator.
const MaxTokens = 300

// DefaultTimeout bounds one generation call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// StopSequences returns the sequences that end a completion. They keep the
// model from continuing into another example.
func StopSequences() []string {
	return []string{"\n\n", "Example:", "###", "<|endoftext|>"}
}

// Generator abstracts the text-generation service so tests can supply a
// deterministic stub.
type Generator interface {
	Generate(ctx context.Context, prompt string, stop []string, maxTokens int) (string, error)
}

// Pipeline holds the injected generator and the read-only retriever. It is
// built once and shared by all requests.
type Pipeline struct {
	gen          Generator
	retriever    *retrieve.Retriever
	exampleCount int
	timeout      time.Duration
	logger       *zap.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithRetriever replaces the default corpus retriever.
func WithRetriever(r *retrieve.Retriever) Option {
	return func(p *Pipeline) { p.retriever = r }
}

// WithExampleCount sets how many examples go into each prompt.
func WithExampleCount(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.exampleCount = n
		}
	}
}

// WithTimeout bounds each generation call. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline returns a Pipeline that calls gen for completions.
func NewPipeline(gen Generator, opts ...Option) (*Pipeline, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	p := &Pipeline{
		gen:          gen,
		retriever:    retrieve.NewDefault(),
		exampleCount: retrieve.DefaultCount,
		timeout:      DefaultTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// ValidateRequest rejects requests the pipeline cannot work with.
func ValidateRequest(req types.GenerationRequest) error {
	fields := []struct{ name, value string }{
		{"topic", req.Topic},
		{"tone", req.Tone},
		{"target audience", req.TargetAudience},
	}
	for _, f := range fields {
		if !utf8.ValidString(f.value) {
			return invalidArgument("%s is not valid UTF-8", f.name)
		}
	}
	if strings.TrimSpace(req.Topic) == "" {
		return invalidArgument("topic is required")
	}
	if strings.IndexFunc(req.Topic, retrieve.IsWordRune) < 0 {
		return invalidArgument("topic %q has no letters or digits", req.Topic)
	}
	return nil
}

// Prompt validates req, retrieves examples and renders the prompt without
// calling the generator.
func (p *Pipeline) Prompt(req types.GenerationRequest) (string, []types.RetrievedExample, error) {
	req = req.WithDefaults()
	if err := ValidateRequest(req); err != nil {
		return "", nil, err
	}
	examples := p.retriever.Retrieve(req.Topic, req.Tone, p.exampleCount)
	return BuildPrompt(req, examples), examples, nil
}

// Generate produces a validated post for req. Errors are ErrInvalidArgument
// (wrapped), *GenerationError or *ValidationError.
func (p *Pipeline) Generate(ctx context.Context, req types.GenerationRequest) (types.GeneratedPost, error) {
	req = req.WithDefaults()
	prompt, examples, err := p.Prompt(req)
	if err != nil {
		return types.GeneratedPost{}, err
	}

	log := p.logger.With(zap.String("topic", req.Topic), zap.String("tone", req.Tone))
	log.Debug("Retrieved examples", zap.Int("count", len(examples)))

	raw, err := p.complete(ctx, prompt)
	if err != nil {
		log.Warn("Generation failed", zap.Error(err))
		return types.GeneratedPost{}, err
	}

	post, err := Normalize(raw, req.Topic, req.IncludeHashtags)
	if err != nil {
		log.Warn("Generated post rejected", zap.Error(err), zap.Int("raw_length", utf8.RuneCountInString(raw)))
		return types.GeneratedPost{}, err
	}

	log.Info("Generated post", zap.Int("length", utf8.RuneCountInString(post.Text)))
	return post, nil
}

// complete calls the generator under the pipeline timeout.
func (p *Pipeline) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	raw, err := p.gen.Generate(ctx, prompt, StopSequences(), MaxTokens)
	p.logger.Debug("Generator returned", zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return "", &GenerationError{Err: fmt.Errorf("timed out after %v: %w", p.timeout, err)}
		}
		return "", &GenerationError{Err: err}
	}
	if cleanCompletion(raw) == "" {
		return "", &GenerationError{Err: errors.New("model returned an empty completion")}
	}
	return raw, nil
}
