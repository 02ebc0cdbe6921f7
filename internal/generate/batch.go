// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/post-engine/pkg/types"
)

// DefaultConcurrency caps in-flight generations for a batch.
const DefaultConcurrency = 4

// BatchResult is the outcome of one request in a batch. Exactly one of Post
// or Err is meaningful.
type BatchResult struct {
	Request types.GenerationRequest
	Post    types.GeneratedPost
	Err     error
}

// BatchSummary holds counts from a batch run.
type BatchSummary struct {
	Generated int
	Failed    int
}

// Total returns the number of requests processed.
func (s BatchSummary) Total() int {
	return s.Generated + s.Failed
}

// HasFailures reports whether any request failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// GenerateBatch runs reqs with at most concurrency generations in flight.
// A failed request does not stop the others. Results keep the order of reqs
// and a progress line per request is written to w.
func (p *Pipeline) GenerateBatch(ctx context.Context, reqs []types.GenerationRequest, concurrency int, w io.Writer) ([]BatchResult, BatchSummary) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]BatchResult, len(reqs))
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			post, err := p.Generate(ctx, req)
			results[i] = BatchResult{Request: req.WithDefaults(), Post: post, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var summary BatchSummary
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "failed    %q: %v\n", r.Request.Topic, r.Err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "generated %q (%d chars)\n", r.Request.Topic, len([]rune(r.Post.Text)))
		summary.Generated++
	}
	fmt.Fprintf(w, "\ngenerated: %d, failed: %d\n", summary.Generated, summary.Failed)

	return results, summary
}
