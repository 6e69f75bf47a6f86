package chunker

import "unicode/utf8"

// EstimateTokens approximates token count as one token per four characters.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}
