// internal/messages/suggest.go
package messages

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// suggestLimit is the edit distance accepted for a suggestion of a word of
// the given length.
func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

// Suggest returns the candidate closest to word, if any is close enough.
// Ties go to the alphabetically first candidate.
func Suggest(word string, candidates []string) (string, bool) {
	word = strings.ToLower(word)
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(word, strings.ToLower(c))
		if d > suggestLimit(len(c)) {
			continue
		}
		if bestDist < 0 || d < bestDist || (d == bestDist && c < best) {
			best, bestDist = c, d
		}
	}
	return best, bestDist >= 0
}
