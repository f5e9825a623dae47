package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageOf(t *testing.T) {
	counts := []int{10, 15, 8}

	testCases := []struct {
		line int
		page int
	}{
		{line: 0, page: 0},
		{line: 9, page: 0},
		{line: 10, page: 1},
		{line: 24, page: 1},
		{line: 25, page: 2},
		{line: 32, page: 2},
		{line: 33, page: 2},
		{line: 34, page: NotFound},
		{line: 1000, page: NotFound},
		{line: -1, page: NotFound},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.page, PageOf(tc.line, counts), "line %d", tc.line)
	}
}

func TestPageOfIsMonotonic(t *testing.T) {
	counts := []int{3, 0, 7, 1, 12}
	previous := 0
	for line := 0; line <= 23; line++ {
		page := PageOf(line, counts)
		assert.GreaterOrEqual(t, page, previous, "line %d", line)
		previous = page
	}
	assert.Equal(t, NotFound, PageOf(24, counts))
}

func TestPageOfTotalSkipsEmptyPages(t *testing.T) {
	testCases := []struct {
		name   string
		counts []int
		line   int
		page   int
		local  int
	}{
		{name: "trailing empty page", counts: []int{3, 0}, line: 3, page: 0, local: 3},
		{name: "several trailing empty pages", counts: []int{2, 4, 0, 0}, line: 6, page: 1, local: 4},
		{name: "empty page in the middle", counts: []int{3, 0, 2}, line: 5, page: 2, local: 2},
		{name: "only empty pages", counts: []int{0, 0}, line: 0, page: NotFound, local: NotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.page, PageOf(tc.line, tc.counts))
			assert.Equal(t, tc.local, LocalLineOf(tc.line, tc.counts))
		})
	}
}

func TestPageOfWithoutPages(t *testing.T) {
	assert.Equal(t, NotFound, PageOf(0, nil))
	assert.Equal(t, NotFound, LocalLineOf(0, []int{}))
}

func TestLocalLineOf(t *testing.T) {
	counts := []int{10, 15, 8}

	assert.Equal(t, 0, LocalLineOf(0, counts))
	assert.Equal(t, 9, LocalLineOf(9, counts))
	assert.Equal(t, 0, LocalLineOf(10, counts))
	assert.Equal(t, 14, LocalLineOf(24, counts))
	assert.Equal(t, 0, LocalLineOf(25, counts))
	assert.Equal(t, 7, LocalLineOf(32, counts))
	assert.Equal(t, NotFound, LocalLineOf(34, counts))
	assert.Equal(t, NotFound, LocalLineOf(-3, counts))
}

func TestPageRange(t *testing.T) {
	counts := []int{10, 15, 8}

	start, end, ok := PageRange(1, counts)
	assert.True(t, ok)
	assert.Equal(t, 10, start)
	assert.Equal(t, 25, end)

	_, _, ok = PageRange(3, counts)
	assert.False(t, ok)
	_, _, ok = PageRange(-1, counts)
	assert.False(t, ok)
}
