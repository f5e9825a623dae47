package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected int
	}{
		{a: "", b: "", expected: 0},
		{a: "", b: "abc", expected: 3},
		{a: "abc", b: "", expected: 3},
		{a: "kitten", b: "sitting", expected: 3},
		{a: "flaw", b: "lawn", expected: 2},
		{a: "Went To The", b: "went to the", expected: 0},
		{a: "went to the", b: "went too the", expected: 1},
		{a: "café", b: "cafe", expected: 1},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Distance(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
		assert.Equal(t, tc.expected, Distance(tc.b, tc.a), "%q vs %q", tc.b, tc.a)
	}
}

func TestBestSpanSelfMatch(t *testing.T) {
	line := []string{"Once", "upon", "a", "time", "there", "was"}

	for _, continues := range []bool{false, true} {
		span, distance := BestSpan(line, line, continues, DefaultWindowTolerance)
		assert.Equal(t, Span{Start: 0, End: len(line) - 1}, span)
		assert.Equal(t, 0, distance)
	}
}

func TestBestSpanRecoversNoisyTokens(t *testing.T) {
	line := []string{"I", "went", "too", "the", "shop", "yesterday"}

	span, distance := BestSpan([]string{"went", "to", "the"}, line, false, DefaultWindowTolerance)

	assert.Equal(t, Span{Start: 1, End: 3}, span)
	assert.Equal(t, 1, distance)
}

func TestBestSpanAbsorbsSplitTokens(t *testing.T) {
	// OCR split "yesterday" into two tokens.
	line := []string{"I", "went", "to", "the", "shop", "yester", "day"}

	span, _ := BestSpan([]string{"shop", "yesterday"}, line, false, DefaultWindowTolerance)

	assert.Equal(t, Span{Start: 4, End: 6}, span)
}

func TestBestSpanTieBreak(t *testing.T) {
	line := []string{"the", "dog", "and", "the", "dog"}
	target := []string{"the", "dog"}

	span, distance := BestSpan(target, line, false, DefaultWindowTolerance)
	assert.Equal(t, Span{Start: 0, End: 1}, span, "single or last line keeps the leftmost tie")
	assert.Equal(t, 0, distance)

	span, distance = BestSpan(target, line, true, DefaultWindowTolerance)
	assert.Equal(t, Span{Start: 3, End: 4}, span, "continuation line takes the rightmost tie")
	assert.Equal(t, 0, distance)
}

func TestBestSpanNoMatch(t *testing.T) {
	span, distance := BestSpan([]string{"a", "b", "c"}, []string{"a", "b"}, false, DefaultWindowTolerance)
	assert.Equal(t, NoMatch, span)
	assert.Equal(t, -1, distance)
	assert.False(t, span.Found())

	span, _ = BestSpan(nil, []string{"a", "b"}, false, DefaultWindowTolerance)
	assert.Equal(t, NoMatch, span)
}

func TestBestSpanToleranceLimitsWindow(t *testing.T) {
	line := []string{"a", "b", "c", "d", "e"}

	span, _ := BestSpan([]string{"abcde"}, line, false, 1)
	assert.Equal(t, 0, span.End-span.Start, "tolerance 1 only tries the target length")

	span, _ = BestSpan([]string{"abcde"}, line, false, 0)
	assert.True(t, span.Found())
	assert.LessOrEqual(t, span.End-span.Start, DefaultWindowTolerance-1)
}
