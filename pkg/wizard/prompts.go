package wizard

import (
	"fmt"
	"strings"
)

// Prompt text is a parameter of the wizard, not part of its logic. Each
// prompt names the canonical fields the normalizer prefers so well-behaved
// models skip the synonym coercion entirely.

func topicIdeasPrompt(niche, audience string) string {
	return fmt.Sprintf(`You are a content strategist. Suggest 10 article topics for a site in the %q niche aimed at %s.

Respond with a JSON array of objects, each with fields "title", "description", and "keywords" (array of strings). Respond with JSON only.`, niche, audience)
}

func competitorPrompt(keyword string) string {
	return fmt.Sprintf(`List the strongest pages currently competing for the search term %q and summarize each.

Respond with a JSON array of objects, each with fields "url", "title", "summary", and "word_count" (number). Respond with JSON only.`, keyword)
}

func keywordAnglesPrompt(seed string) string {
	return fmt.Sprintf(`Propose content angles that could win the keyword %q.

Respond with a JSON array of objects, each with fields "title" and "description". Respond with JSON only.`, seed)
}

func reviewPrompt(draft string) string {
	return fmt.Sprintf(`Review the following article draft as a senior editor. Point out weak arguments, structural problems, and tone issues, then suggest concrete fixes. Respond in plain prose.

---
%s
---`, draft)
}

func draftPrompt(brief ArticleBrief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a complete article titled %q.\n", brief.Title)
	if len(brief.Keywords) > 0 {
		fmt.Fprintf(&sb, "Work in these keywords naturally: %s.\n", strings.Join(brief.Keywords, ", "))
	}
	if brief.Audience != "" {
		fmt.Fprintf(&sb, "The audience is %s.\n", brief.Audience)
	}
	if brief.Tone != "" {
		fmt.Fprintf(&sb, "Use a %s tone.\n", brief.Tone)
	}
	sb.WriteString("Respond with the article in markdown.")
	return sb.String()
}
