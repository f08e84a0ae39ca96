package analyzer

import "unicode/utf8"

// estimateTokens approximates the token count of a prompt without pulling
// in a tokenizer. English averages ~4 chars per token, CJK ~1.5; dividing
// rune count by 3 is a serviceable middle ground for log output.
func estimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	if est := n / 3; est > 1 {
		return est
	}
	return 1
}
