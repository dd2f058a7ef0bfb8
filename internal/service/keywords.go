package service

import (
	"sort"
	"strings"
	"unicode"
)

// DefaultKeywordCount is the default number of keywords extracted per chunk.
const DefaultKeywordCount = 10

const minKeywordLength = 4

var stopwords = buildStopwords()

func buildStopwords() map[string]struct{} {
	words := []string{
		"a", "about", "above", "after", "again", "also", "an", "and", "any",
		"are", "as", "at", "be", "been", "being", "before", "below", "between",
		"both", "but", "by", "can", "could", "did", "do", "does", "doing",
		"down", "during", "each", "else", "few", "for", "from", "further",
		"had", "has", "have", "having", "here", "how", "if", "in", "into",
		"is", "it", "its", "itself", "just", "more", "most", "no", "nor",
		"not", "now", "of", "off", "on", "once", "only", "or", "other", "our",
		"out", "over", "own", "same", "should", "so", "some", "such", "than",
		"that", "the", "their", "them", "then", "there", "these", "they",
		"this", "those", "through", "to", "too", "under", "until", "up",
		"very", "was", "were", "what", "when", "where", "which", "while",
		"who", "whom", "why", "will", "with", "would", "you", "your",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// extractKeywords returns up to k content tokens ranked by descending
// frequency. Ties keep first-occurrence order so the result is
// deterministic for a given input. Pure, no I/O.
func extractKeywords(text string, k int) []string {
	if k <= 0 {
		k = DefaultKeywordCount
	}

	lower := strings.ToLower(text)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, tok := range tokens {
		if len([]rune(tok)) < minKeywordLength {
			continue
		}
		if _, ok := stopwords[tok]; ok {
			continue
		}
		if _, seen := counts[tok]; !seen {
			firstSeen[tok] = order
			order++
		}
		counts[tok]++
	}

	ranked := make([]string, 0, len(counts))
	for tok := range counts {
		ranked = append(ranked, tok)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
