// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package retrieve

import "github.com/pdiddy/post-engine/pkg/types"

// defaultCorpus is the curated example table. Order matters: it breaks
// score ties during retrieval.
var defaultCorpus = []types.CorpusEntry{
	{
		Topic: "AI progress",
		Tone:  "excited",
		Text:  "Just saw the latest AI demo - mind blown! 🤯 The future is arriving faster than we expected. #AI #TechFuture #Innovation",
	},
	{
		Topic: "morning coffee",
		Tone:  "casual",
		Text:  "That first sip of coffee in the morning - pure magic! ☕️ #CoffeeLover #MorningRitual #SimplePleasures",
	},
	{
		Topic: "weekend vibes",
		Tone:  "happy",
		Text:  "Weekend mode: activated! Time for some R&R. What's everyone up to? 😎 #WeekendVibes #Relaxation",
	},
	{
		Topic: "tech news",
		Tone:  "informative",
		Text:  "New smartphone launch has me tempted... but my wallet says no! 😅 Anyone else feeling this? #TechNews #GadgetLover",
	},
	{
		Topic: "fitness goals",
		Tone:  "motivational",
		Text:  "Crushed my workout today! 💪 Remember: progress > perfection. #FitnessJourney #HealthFirst #Motivation",
	},
	{
		Topic: "climate change",
		Tone:  "serious",
		Text:  "Just read the latest climate report. We need collective action NOW. Our planet depends on it. 🌍 #ClimateAction #Sustainability",
	},
	{
		Topic: "new project",
		Tone:  "professional",
		Text:  "Thrilled to announce our new project launch! Can't wait to share more details soon. #NewBeginnings #TechInnovation",
	},
}

// DefaultCorpus returns a copy of the compiled-in example table.
func DefaultCorpus() []types.CorpusEntry {
	out := make([]types.CorpusEntry, len(defaultCorpus))
	copy(out, defaultCorpus)
	return out
}
