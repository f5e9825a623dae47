package match

import (
	"math"
	"strings"
)

// DefaultWindowTolerance is the number of window lengths tried per target: the
// target length itself plus up to three extra recognized tokens.
const DefaultWindowTolerance = 4

// Span is an inclusive range of word indices within a line.
type Span struct {
	Start int
	End   int
}

// NoMatch is returned when the line cannot hold the target phrase.
var NoMatch = Span{Start: -1, End: -1}

// Found reports whether the span points at words.
func (s Span) Found() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// BestSpan returns the contiguous window of candidate that is closest, by edit
// distance over the space-joined words, to target, together with that distance.
//
// Windows of len(target) up to len(target)+tolerance-1 words are tried at every
// offset. When two windows are equally close, the later one wins only if
// continuesToNextLine is set: an error that carries on to the next line usually
// ends at the right of this one, while a first or single line prefers the
// leftmost occurrence.
//
// NoMatch with distance -1 is returned for an empty target or a candidate line
// shorter than the target.
func BestSpan(target, candidate []string, continuesToNextLine bool, tolerance int) (Span, int) {
	if tolerance <= 0 {
		tolerance = DefaultWindowTolerance
	}
	if len(target) == 0 || len(candidate) < len(target) {
		return NoMatch, -1
	}

	phrase := strings.Join(target, " ")
	best := NoMatch
	smallest := math.MaxInt
	for extra := 0; extra < tolerance; extra++ {
		width := len(target) + extra
		for start := 0; start+width <= len(candidate); start++ {
			distance := Distance(phrase, strings.Join(candidate[start:start+width], " "))
			if distance < smallest || (continuesToNextLine && distance == smallest) {
				best = Span{Start: start, End: start + width - 1}
				smallest = distance
			}
		}
	}
	return best, smallest
}
