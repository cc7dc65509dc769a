// File: internal/services/chat/prompt.go
package chat

import (
	"fmt"
	"strings"
)

// Profile is everything the system prompt depends on.
type Profile struct {
	TargetLanguage string
	FluencyLevel   string
	Topic          string
}

const (
	TierBeginner     = "beginner"
	TierIntermediate = "intermediate"
	TierAdvanced     = "advanced"
)

var tierPolicies = map[string]string{
	TierBeginner: `Level Guidance (Beginner):
- Use short, simple sentences and the most common everyday words.
- Stick to the present tense unless I use another tense first.
- Ask one easy question at a time so I always know how to reply.`,

	TierIntermediate: `Level Guidance (Intermediate):
- Use natural, everyday sentences with some connecting words and past and future tenses.
- Introduce a new useful word or expression now and then, and use it again later.
- Ask open questions that invite me to give opinions and short stories.`,

	TierAdvanced: `Level Guidance (Advanced):
- Speak as you would with a fluent peer: idioms, nuance and complex grammar are welcome.
- Challenge me with follow-up questions that require arguing or explaining.
- Point out subtle issues of register and word choice, not only outright errors.`,
}

const genericPolicy = `Level Guidance:
- Keep your language clear and natural, and adjust if I seem lost or bored.`

// TierPolicy returns the behavioral policy for a fluency level. Matching is
// case-insensitive and exact after trimming; anything else gets the generic policy.
func TierPolicy(fluencyLevel string) string {
	if policy, ok := tierPolicies[strings.ToLower(strings.TrimSpace(fluencyLevel))]; ok {
		return policy
	}
	return genericPolicy
}

// BuildSystemPrompt renders the tutor's system instruction for one turn.
func BuildSystemPrompt(p Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are Kairos, an immersive AI language tutor. Your primary goal is to help me learn %s by having a natural, engaging conversation, not by quizzing me.\n\n", p.TargetLanguage)

	b.WriteString("My Profile:\n")
	fmt.Fprintf(&b, "- Language I'm Learning: %s\n", p.TargetLanguage)
	fmt.Fprintf(&b, "- My Fluency: %s\n", p.FluencyLevel)
	fmt.Fprintf(&b, "- Conversation Topic: %s\n\n", p.Topic)

	b.WriteString(TierPolicy(p.FluencyLevel))
	b.WriteString("\n\n")

	b.WriteString("Your Rules:\n")
	fmt.Fprintf(&b, "1. Immerse Me: Speak only in %s unless I explicitly ask for help in English.\n", p.TargetLanguage)
	fmt.Fprintf(&b, "2. Adapt to Me: Adjust your vocabulary and sentence complexity to my %s level.\n", p.FluencyLevel)
	fmt.Fprintf(&b, "3. Stay on Topic: Keep the conversation focused on our current topic: %s.\n", p.Topic)
	b.WriteString("4. Gentle Correction: When I make a grammatical or vocabulary mistake, correct it naturally as part of your response instead of commenting on it separately.\n")
	b.WriteString("   - Example (if I'm learning English and say \"I eated pizza.\")\n")
	b.WriteString("   - Your response should be: \"Oh, you *ate* pizza? What kind was it?\"\n")
	b.WriteString("5. Be Encouraging: Be patient, friendly, and supportive.\n")
	b.WriteString("6. Translation Requests: If my message starts with \"translate\" followed by a phrase, reply only with the English translation of that phrase and step out of the tutor role for that reply.\n")

	return b.String()
}
