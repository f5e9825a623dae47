// Package layout rebuilds reading-order lines from unordered OCR word boxes and
// locates global line indices on physical pages.
package layout

import "github.com/lenor-project/lenor/pkg/utils"

// Vertex is a point in page pixel space.
type Vertex struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Quad is the four-vertex bounding polygon of a word as reported by OCR.
// For upright text the order is top-left, top-right, bottom-right, bottom-left,
// but the polygon is not guaranteed to be axis-aligned.
type Quad [4]Vertex

// WordBox is a single OCR-detected word.
type WordBox struct {
	Quad Quad   `json:"quad"`
	Text string `json:"text"`
}

// Line is a group of words sharing a visual text line, ordered left to right.
type Line struct {
	Words []WordBox
}

// Texts returns the recognized text of every word in the line.
func (l Line) Texts() []string {
	return utils.Map(l.Words, func(word WordBox) string {
		return word.Text
	})
}

// WordKey addresses a word by its global line index and its index within the line.
type WordKey struct {
	Line int
	Word int
}

// Document is the reconstructed layout of one essay. It is read-only once built
// and may be shared between goroutines.
type Document struct {
	Lines []Line

	coordinates map[WordKey]Quad
}

func newDocument(lines []Line) *Document {
	coordinates := map[WordKey]Quad{}
	for i, line := range lines {
		for j, word := range line.Words {
			coordinates[WordKey{Line: i, Word: j}] = word.Quad
		}
	}
	return &Document{Lines: lines, coordinates: coordinates}
}

// Quad returns the vertices of word j on line i.
func (d *Document) Quad(i, j int) (Quad, bool) {
	quad, ok := d.coordinates[WordKey{Line: i, Word: j}]
	return quad, ok
}
