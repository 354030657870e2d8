package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"NewsCrawler/internal/domain"
)

// promptContentLimit keeps provider requests inside output-token budgets.
const promptContentLimit = 6000

// buildPrompt instructs the model to emit JSON matching the Analysis shape.
func buildPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("You are a news analyst for an AI-industry news site. ")
	b.WriteString("Analyze the article below and respond with a single JSON object, no prose, matching exactly:\n")
	b.WriteString(`{"summary": string|null, "oneLine": string|null, "category": string|null, "tags": string[], "importance": integer, "sentiment": "positive"|"neutral"|"negative", "language": "en"|"zh"}` + "\n")
	b.WriteString("Rules: summary is 2-3 sentences in the article language; oneLine is at most 140 characters; ")
	b.WriteString("category is one of release, research, security, business, policy, news; ")
	b.WriteString("tags contains 3-8 short topical keywords; importance is 0-100; ")
	b.WriteString("language is the language of the article body.\n\n")

	if in.SourceName != "" {
		fmt.Fprintf(&b, "Source: %s\n", in.SourceName)
	}
	if in.SourceCategory != "" {
		fmt.Fprintf(&b, "Source category: %s\n", in.SourceCategory)
	}
	fmt.Fprintf(&b, "Title: %s\n\nContent:\n%s\n", in.Title, truncate(in.Content, promptContentLimit))

	return b.String()
}

// decodeAnalysis parses model output as the Analysis JSON shape and validates
// its enums. Importance is clamped rather than rejected; an invalid sentiment
// or language fails the provider so the chain can fall through.
func decodeAnalysis(text string) (domain.Analysis, error) {
	payload := stripCodeFence(strings.TrimSpace(text))
	if payload == "" {
		return domain.Analysis{}, fmt.Errorf("empty model output")
	}

	var result domain.Analysis
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return domain.Analysis{}, fmt.Errorf("parse model output: %w", err)
	}

	switch result.Sentiment {
	case domain.SentimentPositive, domain.SentimentNeutral, domain.SentimentNegative:
	default:
		return domain.Analysis{}, fmt.Errorf("invalid sentiment %q", result.Sentiment)
	}

	switch result.Language {
	case domain.LanguageEnglish, domain.LanguageChinese:
	default:
		return domain.Analysis{}, fmt.Errorf("invalid language %q", result.Language)
	}

	result.ClampImportance()
	return result, nil
}

// stripCodeFence unwraps ```json fenced blocks that models emit despite the
// no-prose instruction.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
