package transcript

import (
	"fmt"
	"strings"
)

// BuildPrompt returns the rewrite instructions for one chunk. part is
// zero-based; continuity rules are added for multi-part content.
func BuildPrompt(topic, content string, part, total int) string {
	partInfo := ""
	if total > 1 {
		partInfo = fmt.Sprintf("\nThis is part %d of %d of the content.", part+1, total)
	}

	rules := []string{
		"Include all key information from the original content.",
		"Use a friendly, educational tone that's easy to understand. Speak like you're explaining it to a friend, not lecturing. Use contractions and informal phrasing where appropriate.",
		`Add natural transitions, questions, and explanations between concepts, with phrases like "So, what does that actually mean?", "Now, let's move on to...", "Think of it like this...", "You might be wondering..." and "In other words...". Add some interjections such as "umm", "uh-ha", "wow", "ok".`,
		`For every major concept or step, include at least one "Why" question that prompts an explanation of the underlying reasons or importance.`,
		"Make the transcript feel like a real conversation, not just reading facts.",
		"The transcript must be written in English.",
		"Remove any code snippets and focus on the explanation of the concepts. If code is mentioned, give a brief, high-level description of what it does, not the code itself.",
		"Start explaining with the question WHY.",
	}
	if part > 0 {
		rules = append(rules, "Continue from the previous part in a natural way.")
	}
	if part < total-1 {
		rules = append(rules, "End in a way that transitions to the next part.")
	}
	rules = append(rules,
		"Keep sentences short and easy to understand.",
		"Keep a conversational format with no headings or subheadings.",
		"Do not include code snippets, but explain the code flow and what its components mean.",
		"Do not use markdown, HTML, or any other formatting. Keep it plain text.",
		"Do not include any URLs or external references.",
		`Convert numerical values to words (e.g., "5" becomes "five").`,
	)

	var b strings.Builder
	fmt.Fprintf(&b, "You're creating an educational transcript for a video or podcast about: %s\n", topic)
	fmt.Fprintf(&b, "Please convert the following technical content into a natural, conversational transcript format.%s\n\n", partInfo)
	b.WriteString("REQUIREMENTS:\n")
	for i, r := range rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, r)
	}
	b.WriteString("\nHere is the source content to convert:\n-----------\n")
	b.WriteString(content)
	b.WriteString("\n-----------\n\nBegin the transcript now:\n")
	return b.String()
}
