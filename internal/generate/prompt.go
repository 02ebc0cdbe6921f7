// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/post-engine/pkg/types"
)

const (
	hashtagInstruction   = "Include 1-3 relevant hashtags at the end. Make sure hashtags are directly related to the content."
	noHashtagInstruction = "Do not include any hashtags."
	noExamplesText       = "No relevant examples found"
)

// postPromptTmpl is the instruction block sent to the generator. The output
// must be byte-stable for identical inputs.
var postPromptTmpl = template.Must(template.New("post").Parse(`You are an expert social media content creator. Your task is to generate a {{.Tone}}-style post about '{{.Topic}}' for {{.Audience}} audience.

Guidelines:
1. Create a COMPLETE, self-contained post (do not trail off with ellipses)
2. Length: 240-280 characters (leaves room for engagement)
3. {{.HashtagInstruction}}
4. Use 1-2 relevant emojis
5. Make it engaging, authentic and appropriate for the target audience
6. Structure: Clear beginning, middle, and end
7. Ensure proper grammar and punctuation

Relevant examples:
{{.Examples}}

Now create a new post about: {{.Topic}}
Tone: {{.Tone}}
Target audience: {{.Audience}}

Format your response as:
[Your complete post text here]

Important: Your response should ONLY contain the post content, nothing else.
`))

type promptData struct {
	Tone               string
	Topic              string
	Audience           string
	HashtagInstruction string
	Examples           string
}

// BuildPrompt renders the generation prompt for req using examples as
// few-shot context.
func BuildPrompt(req types.GenerationRequest, examples []types.RetrievedExample) string {
	data := promptData{
		Tone:               req.Tone,
		Topic:              req.Topic,
		Audience:           req.TargetAudience,
		HashtagInstruction: noHashtagInstruction,
		Examples:           renderExamples(examples),
	}
	if req.IncludeHashtags {
		data.HashtagInstruction = hashtagInstruction
	}

	var buf bytes.Buffer
	// The template only reads string fields, so Execute cannot fail.
	if err := postPromptTmpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("rendering post prompt: %v", err))
	}
	return buf.String()
}

func renderExamples(examples []types.RetrievedExample) string {
	if len(examples) == 0 {
		return noExamplesText
	}
	lines := make([]string, len(examples))
	for i, ex := range examples {
		lines[i] = fmt.Sprintf("Example (%s tone): %s", ex.Entry.Tone, ex.Entry.Text)
	}
	return strings.Join(lines, "\n")
}
