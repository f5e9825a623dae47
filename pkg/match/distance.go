// Package match finds where an approximately quoted phrase sits inside an OCR line.
package match

import "strings"

// Distance returns the case-insensitive Levenshtein distance between a and b.
// Insertions, deletions and substitutions each cost 1; runes are compared, not bytes.
func Distance(a, b string) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rows of the DP matrix are enough.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(
				prev[j],   // deletion
				curr[j-1], // insertion
				prev[j-1], // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
