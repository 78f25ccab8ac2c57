// Package similarity implements the string-closeness scoring used by every
// conflict detector to decide whether two marks are likely to collide.
// The score is a character-level metric, not phonetic or semantic, keeping
// the engine cheap and fully deterministic.
package similarity

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize lowercases s and strips every non-alphanumeric rune.
// Scoring and typo-squat checks operate on normalized forms only.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Score returns a similarity value in [0, 1] between a and b.
//
// Both strings are normalized, then the Levenshtein edit distance d between
// the normalized forms is computed and the score is (maxLen - d) / maxLen,
// where maxLen is the longer normalized length in runes.
// Two empty strings score 1.
func Score(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	maxLen := utf8.RuneCountInString(na)
	if l := utf8.RuneCountInString(nb); l > maxLen {
		maxLen = l
	}
	if maxLen == 0 {
		return 1
	}

	d := levenshtein(na, nb)
	return float64(maxLen-d) / float64(maxLen)
}

// levenshtein computes the edit distance between two strings using the
// two-row dynamic programming formulation.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
