package layout

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultClusterThreshold is the maximum distance in pixels between the vertical
// centers of two consecutive words on the same line.
const DefaultClusterThreshold = 13.0

// Reconstruct groups word boxes into lines in reading order: top to bottom, then
// left to right inside each line. No box is dropped. A non-positive threshold
// falls back to DefaultClusterThreshold.
//
// Each box is compared with the last box of the open line only, so a sloping
// line stays together even when its ends are further apart than the threshold.
func Reconstruct(boxes []WordBox, threshold float64) *Document {
	return newDocument(reconstructLines(boxes, threshold))
}

// Assemble reconstructs every page on its own and concatenates the lines into a
// single document with global line indices. The returned counts hold the number
// of lines contributed by each page. Coordinates remain relative to their page.
func Assemble(pages [][]WordBox, threshold float64) (*Document, []int) {
	lines := []Line{}
	counts := make([]int, len(pages))
	for i, page := range pages {
		pageLines := reconstructLines(page, threshold)
		counts[i] = len(pageLines)
		lines = append(lines, pageLines...)
	}
	return newDocument(lines), counts
}

func reconstructLines(boxes []WordBox, threshold float64) []Line {
	if threshold <= 0 {
		threshold = DefaultClusterThreshold
	}

	sorted := make([]WordBox, len(boxes))
	copy(sorted, boxes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Quad[0].Y < sorted[j].Quad[0].Y
	})

	lines := []Line{}
	var open []WordBox
	for _, box := range sorted {
		if len(open) > 0 && math.Abs(verticalCenter(box)-verticalCenter(open[len(open)-1])) > threshold {
			lines = append(lines, Line{Words: open})
			open = nil
		}
		open = append(open, box)
	}
	if len(open) > 0 {
		lines = append(lines, Line{Words: open})
	}

	for _, line := range lines {
		sort.SliceStable(line.Words, func(i, j int) bool {
			return line.Words[i].Quad[0].X < line.Words[j].Quad[0].X
		})
	}
	return lines
}

// The center is taken between the first and the diagonally opposite vertex.
func verticalCenter(box WordBox) float64 {
	return float64(box.Quad[0].Y+box.Quad[2].Y) / 2
}

// DescriptionLines renders the document as numbered text, one line per row:
//
//	0. Once upon a time
//	1. there was a ...
//
// Line numbers are the global indices expected back in error reports.
func (d *Document) DescriptionLines() string {
	rows := make([]string, len(d.Lines))
	for i, line := range d.Lines {
		rows[i] = fmt.Sprintf("%d. %s", i, strings.Join(line.Texts(), " "))
	}
	return strings.Join(rows, "\n")
}

// XBounds returns the horizontal extent of every vertex on lines [from, to).
// ok is false when the range holds no words.
func (d *Document) XBounds(from, to int) (minX, maxX int, ok bool) {
	minX, maxX = math.MaxInt, math.MinInt
	for i := max(from, 0); i < min(to, len(d.Lines)); i++ {
		for _, word := range d.Lines[i].Words {
			for _, vertex := range word.Quad {
				minX = min(minX, vertex.X)
				maxX = max(maxX, vertex.X)
				ok = true
			}
		}
	}
	if !ok {
		return 0, 0, false
	}
	return minX, maxX, true
}
