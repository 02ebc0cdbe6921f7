// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"strings"
	"unicode"

	"github.com/pdiddy/post-engine/internal/retrieve"
	"github.com/pdiddy/post-engine/pkg/types"
)

// Length limits in characters (Unicode code points).
const (
	MaxPostLength = 280
	MinPostLength = 15

	// A sentence boundary is only used for truncation when it falls
	// strictly between these two indexes.
	sentenceCutMin = 200
	sentenceCutMax = 280

	// Text in front of a kept hashtag is limited to hashtagTextMax and cut
	// to hashtagTextCut plus an ellipsis when over.
	hashtagTextMax = 240
	hashtagTextCut = 237

	hardCut  = 277
	ellipsis = "..."
)

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func isClosingPunct(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

// Normalize cleans a raw completion into a publishable post. The steps run
// in a fixed order and each one sees the previous step's output.
func Normalize(raw, topic string, includeHashtags bool) (types.GeneratedPost, error) {
	text := cleanCompletion(raw)

	if r := []rune(text); len(r) > 0 && !isClosingPunct(r[len(r)-1]) {
		text += "."
	}

	if includeHashtags && !strings.Contains(text, "#") {
		text += " " + FallbackHashtag(topic)
	}

	if len([]rune(text)) > MaxPostLength {
		text = shorten(text)
	}

	return validate(text)
}

// cleanCompletion trims raw, strips one pair of surrounding quotes and
// joins its lines.
func cleanCompletion(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		if len(text) > 1 {
			text = text[1 : len(text)-1]
		} else {
			text = ""
		}
	}

	return strings.TrimSpace(newlines.Replace(text))
}

// shorten brings an over-long post under the limit, preferring a sentence
// boundary, then an intact trailing hashtag, then a hard cut.
func shorten(text string) string {
	r := []rune(text)

	last := lastIndexAny(r, '.', '!', '?')
	if last > sentenceCutMin && last < sentenceCutMax {
		return string(r[:last+1])
	}

	if h := lastIndexAny(r, '#'); h >= 0 {
		textPart := []rune(strings.TrimSpace(string(r[:h])))
		hashtagPart := string(r[h:])
		if len(textPart) > hashtagTextMax {
			textPart = append(textPart[:hashtagTextCut:hashtagTextCut], []rune(ellipsis)...)
		}
		return string(textPart) + " " + hashtagPart
	}

	return string(r[:hardCut]) + ellipsis
}

func validate(text string) (types.GeneratedPost, error) {
	n := len([]rune(text))
	if n < MinPostLength {
		return types.GeneratedPost{}, &ValidationError{Reason: ReasonTooShort}
	}
	if strings.IndexFunc(text, isAlnum) < 0 {
		return types.GeneratedPost{}, &ValidationError{Reason: ReasonEmpty}
	}
	// Only reachable when a hashtag tail alone exceeds the budget.
	if n > MaxPostLength {
		return types.GeneratedPost{}, &ValidationError{Reason: ReasonTooLong}
	}
	return types.GeneratedPost{Text: text}, nil
}

// FallbackHashtag builds a hashtag from topic: words are title-cased and
// every non-word character is dropped, so "machine learning" becomes
// "#MachineLearning".
func FallbackHashtag(topic string) string {
	var b strings.Builder
	b.WriteByte('#')
	prevLetter := false
	for _, c := range topic {
		isLetter := unicode.IsLetter(c)
		switch {
		case isLetter && prevLetter:
			b.WriteRune(unicode.ToLower(c))
		case isLetter:
			b.WriteRune(unicode.ToUpper(c))
		case retrieve.IsWordRune(c):
			b.WriteRune(c)
		}
		prevLetter = isLetter
	}
	return b.String()
}

func lastIndexAny(r []rune, targets ...rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		for _, t := range targets {
			if r[i] == t {
				return i
			}
		}
	}
	return -1
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
