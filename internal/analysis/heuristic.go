package analysis

import (
	"context"
	"regexp"
	"strings"

	"NewsCrawler/internal/domain"
)

const (
	summaryLimit = 600
	oneLineLimit = 140
	maxTags      = 8
	minTagLen    = 3
	maxTagLen    = 24

	baseImportance       = 50
	aiCompanySourceBonus = 10
	companyNameBonus     = 10
	modelNameBonus       = 8
	launchTermBonus      = 6
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// categoryBuckets are checked in fixed priority order; the first bucket with
// a matching keyword wins, otherwise the category is "news".
var categoryBuckets = []struct {
	name     string
	keywords []string
}{
	{"release", []string{
		"release", "releases", "released", "launch", "launches", "launched",
		"announce", "announces", "announced", "unveil", "unveils", "unveiled",
		"introduce", "introduces", "introduced", "debut", "debuts",
		"now available", "rolls out", "rolling out", "ships", "shipped",
	}},
	{"research", []string{
		"research", "paper", "study", "benchmark", "arxiv", "dataset",
		"training", "fine-tuning", "finetuning", "evaluation", "breakthrough",
	}},
	{"security", []string{
		"security", "vulnerability", "exploit", "jailbreak", "breach",
		"attack", "malware", "phishing", "cve", "leak", "leaked",
	}},
	{"business", []string{
		"funding", "raises", "raised", "valuation", "acquisition", "acquires",
		"acquired", "ipo", "investment", "investor", "revenue", "partnership",
		"deal", "merger",
	}},
	{"policy", []string{
		"regulation", "regulator", "policy", "lawsuit", "court", "copyright",
		"ban", "bans", "banned", "governance", "legislation", "executive order",
		"antitrust", "compliance",
	}},
}

// Romanized-only by construction: Chinese titles without these substrings
// fall back to "news" and base importance.
var companyNames = []string{
	"openai", "anthropic", "google", "deepmind", "meta", "microsoft",
	"mistral", "xai", "nvidia", "apple", "amazon", "hugging face",
	"huggingface", "cohere", "stability ai", "deepseek", "alibaba",
	"bytedance", "baidu", "tencent", "perplexity",
}

var modelNames = []string{
	"gpt", "claude", "gemini", "llama", "grok", "qwen", "deepseek-r",
	"sora", "stable diffusion", "midjourney", "o1", "o3", "phi-", "mixtral",
}

var launchTerms = []string{
	"launch", "release", "announce", "unveil", "introduce", "debut",
	"now available", "ships", "rolls out",
}

// HeuristicStrategy is the deterministic, network-free fallback. It never
// fails, so it terminates every strategy chain.
type HeuristicStrategy struct{}

// NewHeuristicStrategy returns the fallback strategy.
func NewHeuristicStrategy() *HeuristicStrategy {
	return &HeuristicStrategy{}
}

// Name identifies the strategy in logs.
func (h *HeuristicStrategy) Name() string {
	return "heuristic"
}

// Analyze always succeeds; identical input yields identical output.
func (h *HeuristicStrategy) Analyze(_ context.Context, in Input) (domain.Analysis, error) {
	return heuristicAnalysis(in, DetectLanguage(in.Title+in.Content)), nil
}

func heuristicAnalysis(in Input, language string) domain.Analysis {
	result := domain.Analysis{
		Summary:    heuristicSummary(in.Content),
		OneLine:    heuristicOneLine(in.Title),
		Category:   heuristicCategory(in.Title),
		Tags:       extractTags(in.Title),
		Importance: heuristicImportance(in.Title, in.SourceCategory),
		Sentiment:  domain.SentimentNeutral,
		Language:   language,
	}
	result.ClampImportance()
	return result
}

func heuristicSummary(content string) *string {
	trimmed := strings.TrimSpace(truncate(content, summaryLimit))
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func heuristicOneLine(title string) *string {
	line := truncate(strings.TrimSpace(title), oneLineLimit)
	return &line
}

func heuristicCategory(title string) *string {
	lower := strings.ToLower(title)
	category := "news"
	for _, bucket := range categoryBuckets {
		if containsAny(lower, bucket.keywords) {
			category = bucket.name
			break
		}
	}
	return &category
}

// extractTags pulls whitespace-delimited tokens from the title after
// stripping URLs and non-alphanumeric characters. Tokens are deduplicated
// case- and hyphen-insensitively and capped at eight.
func extractTags(title string) []string {
	cleaned := urlPattern.ReplaceAllString(title, " ")
	cleaned = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-':
			return r
		default:
			return ' '
		}
	}, cleaned)

	tags := make([]string, 0, maxTags)
	seen := map[string]struct{}{}
	for _, token := range strings.Fields(cleaned) {
		token = strings.Trim(token, "-")
		length := len(token)
		if length < minTagLen || length > maxTagLen {
			continue
		}
		folded := strings.ToLower(strings.ReplaceAll(token, "-", ""))
		if _, ok := seen[folded]; ok {
			continue
		}
		seen[folded] = struct{}{}
		tags = append(tags, token)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

func heuristicImportance(title, sourceCategory string) int {
	score := baseImportance
	lower := strings.ToLower(title)

	if sourceCategory == "ai_company" {
		score += aiCompanySourceBonus
	}
	if containsAny(lower, companyNames) {
		score += companyNameBonus
	}
	if containsAny(lower, modelNames) {
		score += modelNameBonus
	}
	if containsAny(lower, launchTerms) {
		score += launchTermBonus
	}
	return score
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
