package layout

// NotFound is returned by the locator when a line index falls outside every page.
const NotFound = -1

// PageOf returns the page holding the global line lineNumber, given the number of
// lines on each page. A line number equal to the total line count is treated as
// still belonging to the last page that has lines; anything beyond it, or
// negative, is NotFound.
func PageOf(lineNumber int, pageLineCounts []int) int {
	page, _ := locate(lineNumber, pageLineCounts)
	return page
}

// LocalLineOf returns the 0-based offset of lineNumber within its page, or NotFound.
func LocalLineOf(lineNumber int, pageLineCounts []int) int {
	page, before := locate(lineNumber, pageLineCounts)
	if page == NotFound {
		return NotFound
	}
	return lineNumber - before
}

// PageRange returns the global line range [start, end) of page.
func PageRange(page int, pageLineCounts []int) (start, end int, ok bool) {
	if page < 0 || page >= len(pageLineCounts) {
		return 0, 0, false
	}
	for _, count := range pageLineCounts[:page] {
		start += count
	}
	return start, start + pageLineCounts[page], true
}

// locate walks the running total and returns the page together with the number
// of lines on all preceding pages.
func locate(lineNumber int, pageLineCounts []int) (page int, before int) {
	if lineNumber < 0 {
		return NotFound, 0
	}
	total := 0
	for i, count := range pageLineCounts {
		previous := total
		total += count
		if lineNumber <= total-1 {
			return i, previous
		}
	}
	if lineNumber == total {
		// Trailing empty pages are skipped.
		for last := len(pageLineCounts) - 1; last >= 0; last-- {
			if pageLineCounts[last] > 0 {
				return last, total - pageLineCounts[last]
			}
		}
	}
	return NotFound, 0
}
