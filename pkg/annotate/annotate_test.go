package annotate

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenor-project/lenor/pkg/layout"
	"github.com/lenor-project/lenor/pkg/report"
)

// document lays out each sentence on its own row, 40px apart, words 60px apart.
func document(sentences ...string) *layout.Document {
	boxes := []layout.WordBox{}
	for i, sentence := range sentences {
		for j, word := range strings.Fields(sentence) {
			x, y := 10+j*60, 20+i*40
			boxes = append(boxes, layout.WordBox{
				Text: word,
				Quad: layout.Quad{{X: x, Y: y}, {X: x + 50, Y: y}, {X: x + 50, Y: y + 20}, {X: x, Y: y + 20}},
			})
		}
	}
	return layout.Reconstruct(boxes, layout.DefaultClusterThreshold)
}

func quadAt(doc *layout.Document, line, word int) layout.Quad {
	quad, _ := doc.Quad(line, word)
	return quad
}

func vertices(quad layout.Quad) []layout.Vertex {
	return quad[:]
}

func normalized(t *testing.T, raw string, lines int) []report.Report {
	t.Helper()
	result := report.Normalize(raw, []int{lines})
	require.True(t, result.OK())
	return result.Reports
}

func TestMapSingleLine(t *testing.T) {
	doc := document("Yesterday I went too the shop", "and bought some bread")
	reports := normalized(t, `[{"error_type": "grammar", "feedback": "went to the",
		"lines": [{"line_number": 0, "words": ["went", "to", "the"]}]}]`, 2)

	annotation := NewMapper(doc, 0).Map(reports[0])

	require.Len(t, annotation.Coordinates, 1)
	assert.Equal(t, []layout.Quad{quadAt(doc, 0, 2), quadAt(doc, 0, 3), quadAt(doc, 0, 4)}, annotation.Coordinates[0])
	assert.Equal(t, vertices(quadAt(doc, 0, 2)), annotation.FirstWordCoordinates)
	assert.Equal(t, vertices(quadAt(doc, 0, 4)), annotation.LastWordCoordinates)
	assert.Equal(t, "grammar", annotation.ErrorType)
	assert.Equal(t, "went to the", annotation.Feedback)
	assert.Equal(t, 0, annotation.Page)
	assert.Equal(t, 0, annotation.Index)
	assert.True(t, annotation.Active)
	assert.NotEmpty(t, annotation.UniqueID)
	assert.True(t, annotation.Located())
}

func TestMapMultiLinePrefersRightmostOnContinuation(t *testing.T) {
	doc := document("the end the end", "was near")
	reports := normalized(t, `[{"error_type": "improvement", "lines": [
		{"line_number": 0, "words": ["the", "end"]},
		{"line_number": 1, "words": ["was", "near"]}
	]}]`, 2)

	annotation := NewMapper(doc, 0).Map(reports[0])

	require.Len(t, annotation.Coordinates, 2)
	assert.Equal(t, []layout.Quad{quadAt(doc, 0, 2), quadAt(doc, 0, 3)}, annotation.Coordinates[0])
	assert.Equal(t, []layout.Quad{quadAt(doc, 1, 0), quadAt(doc, 1, 1)}, annotation.Coordinates[1])
	assert.Equal(t, vertices(quadAt(doc, 0, 2)), annotation.FirstWordCoordinates)
	assert.Equal(t, vertices(quadAt(doc, 1, 1)), annotation.LastWordCoordinates)
}

func TestMapOutOfRangeLine(t *testing.T) {
	sentences := make([]string, 50)
	for i := range sentences {
		sentences[i] = fmt.Sprintf("line number %d", i)
	}
	doc := document(sentences...)
	require.Len(t, doc.Lines, 50)

	reports := normalized(t, `[{"error_type": "spelling", "lines": [
		{"line_number": 999, "words": ["ghost"]},
		{"line_number": 3, "words": ["number", "3"]},
		{"line_number": -1, "words": ["line"]}
	]}]`, 50)

	annotation := NewMapper(doc, 0).Map(reports[0])

	require.Len(t, annotation.Coordinates, 3)
	assert.NotNil(t, annotation.Coordinates[0])
	assert.Empty(t, annotation.Coordinates[0])
	assert.Equal(t, []layout.Quad{quadAt(doc, 3, 1), quadAt(doc, 3, 2)}, annotation.Coordinates[1])
	assert.Empty(t, annotation.Coordinates[2])
	assert.Equal(t, vertices(quadAt(doc, 3, 1)), annotation.FirstWordCoordinates)
	assert.Equal(t, vertices(quadAt(doc, 3, 2)), annotation.LastWordCoordinates)
}

func TestMapNothingLocated(t *testing.T) {
	doc := document("short line")
	reports := normalized(t, `[{"error_type": "grammar", "lines": [
		{"line_number": 0, "words": ["this", "is", "far", "too", "long"]}
	]}]`, 1)

	annotation := NewMapper(doc, 0).Map(reports[0])

	assert.Equal(t, [][]layout.Quad{{}}, annotation.Coordinates)
	assert.Empty(t, annotation.FirstWordCoordinates)
	assert.Empty(t, annotation.LastWordCoordinates)
	assert.False(t, annotation.Located())
}

func TestMapAllKeepsOrder(t *testing.T) {
	sentences := make([]string, 20)
	raw := []string{}
	for i := range sentences {
		sentences[i] = fmt.Sprintf("sentence %d ends here", i)
		raw = append(raw, fmt.Sprintf(`{"error_type": "t%d", "lines": [{"line_number": %d, "words": ["%d", "ends"]}]}`, i%3, i, i))
	}
	doc := document(sentences...)
	reports := normalized(t, "["+strings.Join(raw, ",")+"]", 20)

	annotations, err := NewMapper(doc, 0).MapAll(context.Background(), reports, 4)

	require.NoError(t, err)
	require.Len(t, annotations, 20)
	for i, annotation := range annotations {
		assert.Equal(t, i, annotation.Index)
		assert.Equal(t, []layout.Quad{quadAt(doc, i, 1), quadAt(doc, i, 2)}, annotation.Coordinates[0])
	}

	grouped := GroupByType(annotations)
	assert.Len(t, grouped, 3)
	assert.Len(t, grouped["t0"], 7)
	assert.Equal(t, 3, grouped["t0"][1].Index)
}

func TestMapAllCancelled(t *testing.T) {
	doc := document("a b c")
	reports := normalized(t, `[{"error_type": "x", "lines": [{"line_number": 0, "words": ["b"]}]}]`, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMapper(doc, 0).MapAll(ctx, reports, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestActive(t *testing.T) {
	annotations := []Annotation{{Active: true, UniqueID: "a"}, {Active: false, UniqueID: "b"}, {Active: true, UniqueID: "c"}}

	active := Active(annotations)

	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].UniqueID)
	assert.Equal(t, "c", active[1].UniqueID)
}
