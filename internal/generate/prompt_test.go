package generate

import (
	"strings"
	"testing"

	"github.com/pdiddy/post-engine/internal/retrieve"
	"github.com/pdiddy/post-engine/pkg/types"
)

func TestBuildPromptContents(t *testing.T) {
	req := types.GenerationRequest{
		Topic:           "morning coffee",
		Tone:            "casual",
		IncludeHashtags: true,
		TargetAudience:  "students",
	}
	examples := retrieve.NewDefault().Retrieve(req.Topic, req.Tone, 2)

	prompt := BuildPrompt(req, examples)

	for _, want := range []string{
		"generate a casual-style post about 'morning coffee' for students audience.",
		"3. " + hashtagInstruction,
		"Example (casual tone): That first sip of coffee in the morning",
		"Now create a new post about: morning coffee",
		"Tone: casual",
		"Target audience: students",
		"Your response should ONLY contain the post content",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, noHashtagInstruction) {
		t.Error("prompt contains the no-hashtag instruction")
	}
	if n := strings.Count(prompt, "Example ("); n != 2 {
		t.Errorf("got %d example lines, want 2", n)
	}
}

func TestBuildPromptNoHashtags(t *testing.T) {
	req := types.NewGenerationRequest("climate change")
	req.IncludeHashtags = false

	prompt := BuildPrompt(req, nil)

	if !strings.Contains(prompt, "3. "+noHashtagInstruction) {
		t.Error("prompt missing the no-hashtag instruction")
	}
	if strings.Contains(prompt, hashtagInstruction) {
		t.Error("prompt contains the hashtag instruction")
	}
}

func TestBuildPromptPlaceholderWhenNoExamples(t *testing.T) {
	prompt := BuildPrompt(types.NewGenerationRequest("gardening"), nil)
	if !strings.Contains(prompt, "Relevant examples:\n"+noExamplesText+"\n") {
		t.Errorf("placeholder not rendered:\n%s", prompt)
	}
}

func TestBuildPromptExamplesJoinedByNewline(t *testing.T) {
	examples := []types.RetrievedExample{
		{Score: 3, Entry: types.CorpusEntry{Tone: "happy", Text: "one"}},
		{Score: 1, Entry: types.CorpusEntry{Tone: "serious", Text: "two"}},
	}
	prompt := BuildPrompt(types.NewGenerationRequest("x"), examples)

	want := "Example (happy tone): one\nExample (serious tone): two\n"
	if !strings.Contains(prompt, want) {
		t.Errorf("examples not joined as expected:\n%s", prompt)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	req := types.NewGenerationRequest("AI progress")
	examples := retrieve.NewDefault().Retrieve(req.Topic, req.Tone, 3)

	first := BuildPrompt(req, examples)
	for i := 0; i < 10; i++ {
		if got := BuildPrompt(req, examples); got != first {
			t.Fatalf("prompt changed between calls")
		}
	}
}

func TestBuildPromptDoesNotEscape(t *testing.T) {
	req := types.NewGenerationRequest("R&D <labs>")
	prompt := BuildPrompt(req, nil)
	if !strings.Contains(prompt, "'R&D <labs>'") {
		t.Errorf("topic was altered:\n%s", prompt)
	}
}
