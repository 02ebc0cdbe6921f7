// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/post-engine/internal/retrieve"
	"github.com/pdiddy/post-engine/pkg/types"
)

// --- stub generator ---

type stubGenerator struct {
	mu        sync.Mutex
	response  string
	err       error
	block     bool // wait for ctx cancellation
	calls     int
	prompt    string
	stop      []string
	maxTokens int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, stop []string, maxTokens int) (string, error) {
	s.mu.Lock()
	s.calls++
	s.prompt = prompt
	s.stop = stop
	s.maxTokens = maxTokens
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.response, s.err
}

func newTestPipeline(t *testing.T, gen Generator, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(gen, opts...)
	require.NoError(t, err)
	return p
}

func TestNewPipelineRequiresGenerator(t *testing.T) {
	_, err := NewPipeline(nil)
	assert.Error(t, err)
}

func TestPipelineGenerate(t *testing.T) {
	gen := &stubGenerator{response: "  \"Nothing beats that first cup of coffee on a slow morning ☕\"  "}
	p := newTestPipeline(t, gen)

	post, err := p.Generate(context.Background(), types.NewGenerationRequest("morning coffee"))
	require.NoError(t, err)

	assert.Equal(t, "Nothing beats that first cup of coffee on a slow morning ☕. #MorningCoffee", post.Text)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, StopSequences(), gen.stop)
	assert.Equal(t, MaxTokens, gen.maxTokens)
	assert.Contains(t, gen.prompt, "Example (casual tone): That first sip of coffee")
}

func TestPipelineAppliesDefaults(t *testing.T) {
	gen := &stubGenerator{response: "Weekend plans are looking great so far!"}
	p := newTestPipeline(t, gen)

	_, err := p.Generate(context.Background(), types.GenerationRequest{Topic: "weekend vibes"})
	require.NoError(t, err)

	assert.Contains(t, gen.prompt, "casual-style post")
	assert.Contains(t, gen.prompt, "for general audience")
}

func TestPipelineExampleCount(t *testing.T) {
	gen := &stubGenerator{response: "A fine post about many things today!"}
	p := newTestPipeline(t, gen, WithExampleCount(5))

	_, examples, err := p.Prompt(types.NewGenerationRequest("tech news"))
	require.NoError(t, err)
	assert.Len(t, examples, 5)
}

func TestPipelineCustomRetriever(t *testing.T) {
	corpus := []types.CorpusEntry{{Topic: "bread baking", Tone: "cozy", Text: "Fresh loaf out of the oven."}}
	gen := &stubGenerator{response: "Sourdough season has officially begun!"}
	p := newTestPipeline(t, gen, WithRetriever(retrieve.New(corpus)))

	_, err := p.Generate(context.Background(), types.NewGenerationRequest("bread"))
	require.NoError(t, err)
	assert.Contains(t, gen.prompt, "Example (cozy tone): Fresh loaf out of the oven.")
}

func TestPipelineInvalidArgument(t *testing.T) {
	tests := []struct {
		name string
		req  types.GenerationRequest
	}{
		{"empty topic", types.GenerationRequest{Topic: ""}},
		{"blank topic", types.GenerationRequest{Topic: "   "}},
		{"no word characters", types.GenerationRequest{Topic: "!!! ???"}},
		{"invalid utf8 tone", types.GenerationRequest{Topic: "coffee", Tone: "\xff\xfe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{response: "unused"}
			p := newTestPipeline(t, gen)

			_, err := p.Generate(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Equal(t, 0, gen.calls, "generator must not run for invalid input")
		})
	}
}

func TestPipelineGenerationError(t *testing.T) {
	cause := errors.New("model offline")
	p := newTestPipeline(t, &stubGenerator{err: cause})

	_, err := p.Generate(context.Background(), types.NewGenerationRequest("AI progress"))

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.ErrorIs(t, err, cause)
}

func TestPipelineEmptyCompletion(t *testing.T) {
	for _, raw := range []string{" \n\t ", `""`, `"   "`, "\"\n\"", `"`} {
		t.Run(fmt.Sprintf("%q", raw), func(t *testing.T) {
			p := newTestPipeline(t, &stubGenerator{response: raw})

			post, err := p.Generate(context.Background(), types.NewGenerationRequest("morning coffee"))

			var gerr *GenerationError
			require.ErrorAs(t, err, &gerr)
			assert.Contains(t, err.Error(), "empty completion")
			assert.Empty(t, post.Text)
		})
	}
}

func TestPipelineTimeout(t *testing.T) {
	p := newTestPipeline(t, &stubGenerator{block: true}, WithTimeout(10*time.Millisecond))

	start := time.Now()
	_, err := p.Generate(context.Background(), types.NewGenerationRequest("AI progress"))

	var gerr *GenerationError
	require.ErrorAs(t, err, &gerr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPipelineValidationError(t *testing.T) {
	req := types.NewGenerationRequest("AI progress")
	req.IncludeHashtags = false
	p := newTestPipeline(t, &stubGenerator{response: "..."})

	_, err := p.Generate(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonTooShort, verr.Reason)
}

func TestPipelineConcurrentRequests(t *testing.T) {
	p := newTestPipeline(t, &stubGenerator{response: "Concurrency is not parallelism, but both are fun!"})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			post, err := p.Generate(context.Background(), types.NewGenerationRequest("go concurrency"))
			if err == nil && !strings.Contains(post.Text, "#GoConcurrency") {
				err = errors.New("missing hashtag: " + post.Text)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
