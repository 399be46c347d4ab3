package memory_store

import "strings"

// minTokenLength filters out stop-word noise. Tokens must be strictly longer
// than this to count toward a match.
const minTokenLength = 3

// Similarity scores lexical overlap between two texts in [0, 1]. Both texts
// are case-folded and split on whitespace; a query token counts as a match
// when either token contains the other as a substring. The match count is
// normalised by the larger of the two token counts, so padding one side with
// extra words can only dilute the score.
func Similarity(query, candidate string) float64 {
	queryTokens := tokenize(query)
	candidateTokens := tokenize(candidate)

	matches := 0
	for _, qt := range queryTokens {
		if len(qt) <= minTokenLength {
			continue
		}
		for _, ct := range candidateTokens {
			if ct == "" {
				continue
			}
			if strings.Contains(ct, qt) || strings.Contains(qt, ct) {
				matches++
				break
			}
		}
	}

	denominator := len(queryTokens)
	if len(candidateTokens) > denominator {
		denominator = len(candidateTokens)
	}
	return float64(matches) / float64(denominator)
}

// tokenize returns the lowercase whitespace-separated tokens of text. Empty
// or all-whitespace text yields a single empty token so the denominator in
// Similarity never hits zero.
func tokenize(text string) []string {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return []string{""}
	}
	return tokens
}
