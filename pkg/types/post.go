// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Request defaults applied when a field is left empty.
const (
	DefaultTone     = "casual"
	DefaultAudience = "general"
)

// CorpusEntry is one curated example post used as few-shot context.
// Corpus entries are immutable once the process starts.
type CorpusEntry struct {
	// Topic is a short phrase describing what the example is about.
	Topic string `json:"topic" yaml:"topic"`

	// Tone labels the voice of the example (e.g. "excited", "casual").
	Tone string `json:"tone" yaml:"tone"`

	// Text is the example post itself.
	Text string `json:"text" yaml:"text"`
}

// RetrievedExample pairs a corpus entry with its relevance score for one
// request. It is never persisted.
type RetrievedExample struct {
	Score int         `json:"score" yaml:"score"`
	Entry CorpusEntry `json:"entry" yaml:"entry"`
}

// GenerationRequest describes the post a caller wants generated.
type GenerationRequest struct {
	// Topic is required.
	Topic string `json:"topic" yaml:"topic"`

	// Tone defaults to DefaultTone.
	Tone string `json:"tone" yaml:"tone"`

	// IncludeHashtags asks for at least one hashtag in the result.
	IncludeHashtags bool `json:"include_hashtags" yaml:"include_hashtags"`

	// TargetAudience defaults to DefaultAudience.
	TargetAudience string `json:"target_audience" yaml:"target_audience"`
}

// NewGenerationRequest returns a request for topic with every other field
// set to its default.
func NewGenerationRequest(topic string) GenerationRequest {
	return GenerationRequest{
		Topic:           topic,
		Tone:            DefaultTone,
		IncludeHashtags: true,
		TargetAudience:  DefaultAudience,
	}
}

// WithDefaults fills empty Tone and TargetAudience. IncludeHashtags is left
// alone because false is a meaningful choice.
func (r GenerationRequest) WithDefaults() GenerationRequest {
	if r.Tone == "" {
		r.Tone = DefaultTone
	}
	if r.TargetAudience == "" {
		r.TargetAudience = DefaultAudience
	}
	return r
}

// GeneratedPost is normalized, validated post text ready to be stored.
type GeneratedPost struct {
	Text string `json:"text" yaml:"text"`
}

// DraftStatus tracks a stored post through the publishing workflow.
type DraftStatus string

// A draft is claimed as publishing while it is being sent, so only one
// publisher can post it.
const (
	StatusDraft      DraftStatus = "draft"
	StatusPublishing DraftStatus = "publishing"
	StatusPosted     DraftStatus = "posted"
)

// Draft is a stored post. The store assigns ID, CreatedAt and Status.
type Draft struct {
	ID        int64       `json:"id" yaml:"id"`
	Content   string      `json:"content" yaml:"content"`
	Topic     string      `json:"topic" yaml:"topic"`
	Tone      string      `json:"tone" yaml:"tone"`
	CreatedAt time.Time   `json:"created_at" yaml:"created_at"`
	Status    DraftStatus `json:"status" yaml:"status"`
}
