// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve ranks curated example posts against a requested topic and
// tone so the best matches can be used as few-shot prompt context.
package retrieve

import (
	"slices"
	"strings"
	"unicode"

	"github.com/pdiddy/post-engine/pkg/types"
)

// DefaultCount is the number of examples returned when callers have no
// preference.
const DefaultCount = 3

const (
	topicTokenWeight = 2
	toneFieldBonus   = 3
	toneTextBonus    = 1
)

// Retriever scores a fixed corpus. It holds no mutable state after
// construction, so one Retriever can serve any number of goroutines.
type Retriever struct {
	corpus []types.CorpusEntry
}

// New returns a Retriever over a private copy of corpus.
func New(corpus []types.CorpusEntry) *Retriever {
	c := make([]types.CorpusEntry, len(corpus))
	copy(c, corpus)
	return &Retriever{corpus: c}
}

// NewDefault returns a Retriever over the compiled-in corpus.
func NewDefault() *Retriever {
	return &Retriever{corpus: DefaultCorpus()}
}

// Len reports the corpus size.
func (r *Retriever) Len() int {
	return len(r.corpus)
}

// Retrieve scores every corpus entry against topic and tone and returns at
// most count entries, best first. Entries with equal scores keep their
// corpus order.
func (r *Retriever) Retrieve(topic, tone string, count int) []types.RetrievedExample {
	if count <= 0 {
		return nil
	}

	want := tokenize(topic)
	tone = strings.ToLower(tone)

	scored := make([]types.RetrievedExample, len(r.corpus))
	for i, entry := range r.corpus {
		scored[i] = types.RetrievedExample{
			Score: score(want, tone, entry),
			Entry: entry,
		}
	}

	slices.SortStableFunc(scored, func(a, b types.RetrievedExample) int {
		return b.Score - a.Score
	})

	if count > len(scored) {
		count = len(scored)
	}
	return scored[:count]
}

// score computes the relevance of entry. The two tone bonuses are exclusive:
// a match on the tone label wins over a match in the example text.
func score(want map[string]struct{}, tone string, entry types.CorpusEntry) int {
	s := 0
	for tok := range tokenize(entry.Topic) {
		if _, ok := want[tok]; ok {
			s += topicTokenWeight
		}
	}

	switch {
	case strings.Contains(strings.ToLower(entry.Tone), tone):
		s += toneFieldBonus
	case strings.Contains(strings.ToLower(entry.Text), tone):
		s += toneTextBonus
	}
	return s
}

// tokenize lower-cases s and splits it on runs of non-word characters.
func tokenize(s string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !IsWordRune(r)
	}) {
		tokens[f] = struct{}{}
	}
	return tokens
}

// IsWordRune reports whether r is a letter, digit or underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
