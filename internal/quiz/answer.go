package quiz

import "strings"

// CheckAnswer compares a learner response against a rubric question.
//
// Normalization rules:
// - Whitespace is trimmed and internal runs collapse to one space
// - Comparison is case-insensitive
// - Any entry in Accept is as good as Answer
func CheckAnswer(response string, q Question) bool {
	got := normalize(response)
	if got == "" {
		return false
	}
	if got == normalize(q.Answer) {
		return true
	}
	for _, alt := range q.Accept {
		if got == normalize(alt) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
