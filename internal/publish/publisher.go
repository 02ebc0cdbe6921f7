// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package publish

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/post-engine/pkg/types"
)

// DraftStore is the part of the draft store the publisher needs.
type DraftStore interface {
	Claim(ctx context.Context, id int64) (types.Draft, error)
	Release(ctx context.Context, id int64) (types.Draft, error)
	MarkPosted(ctx context.Context, id int64) (types.Draft, error)
}

// Poster sends text to the outside world.
type Poster interface {
	Post(ctx context.Context, text string) error
}

// Publisher moves a draft through posting.
type Publisher struct {
	store  DraftStore
	poster Poster
	logger *zap.Logger
}

// NewPublisher wires a store and a poster.
func NewPublisher(store DraftStore, poster Poster, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{store: store, poster: poster, logger: logger}
}

// Publish claims draft id, posts it and marks it posted. Drafts that are
// missing, already posted or claimed by a concurrent publish report
// drafts.ErrNotFound and nothing is sent. A failed post releases the claim
// so it can be retried.
func (p *Publisher) Publish(ctx context.Context, id int64) (types.Draft, error) {
	d, err := p.store.Claim(ctx, id)
	if err != nil {
		return types.Draft{}, err
	}

	// Status writes after the claim must land even if the caller gives up.
	bg := context.WithoutCancel(ctx)

	if err := p.poster.Post(ctx, d.Content); err != nil {
		p.logger.Warn("publish failed", zap.Int64("id", id), zap.Error(err))
		if _, rerr := p.store.Release(bg, id); rerr != nil {
			p.logger.Error("releasing claimed draft", zap.Int64("id", id), zap.Error(rerr))
		}
		return types.Draft{}, err
	}

	posted, err := p.store.MarkPosted(bg, id)
	if err != nil {
		// The post is live; only the status write failed.
		p.logger.Error("post sent but status not updated", zap.Int64("id", id), zap.Error(err))
		return types.Draft{}, fmt.Errorf("marking draft %d posted: %w", id, err)
	}
	p.logger.Info("published", zap.Int64("id", id))
	return posted, nil
}
