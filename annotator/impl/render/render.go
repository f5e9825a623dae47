// Package render draws annotations as colored underlines on the page images.
package render

import (
	"image"
	"strconv"

	"github.com/fogleman/gg"

	"github.com/lenor-project/lenor/annotator/impl/font"
	"github.com/lenor-project/lenor/pkg/annotate"
	"github.com/lenor-project/lenor/pkg/config"
	"github.com/lenor-project/lenor/pkg/layout"
)

// Gap between the rightmost word of the page and the labels.
const labelMargin = 10

type Renderer struct {
	underline config.Underline
	fonts     font.FontProvider
}

func New(underline config.Underline, fonts font.FontProvider) *Renderer {
	return &Renderer{underline: underline, fonts: fonts}
}

// Page draws onto a copy of img the active annotations whose lines belong to page.
// Every located word is underlined in the color of the error type, and the
// annotation number (Index+1) is written in the right margin next to its first
// line on the page.
func (r *Renderer) Page(img image.Image, page int, document *layout.Document, pageLineCounts []int, annotations []annotate.Annotation) image.Image {
	drawingContext := gg.NewContextForImage(img)
	drawingContext.SetLineWidth(r.underline.Thickness)
	drawingContext.SetFontFace(r.fonts.LabelFace(r.underline.LabelSize))

	labelX := r.labelX(drawingContext, page, document, pageLineCounts)

	for _, annotation := range annotate.Active(annotations) {
		drawingContext.SetColor(r.underline.Color(annotation.ErrorType))
		labelled := false
		for i, line := range annotation.Lines {
			if i >= len(annotation.Coordinates) || layout.PageOf(line.LineNumber, pageLineCounts) != page {
				continue
			}
			for _, quad := range annotation.Coordinates[i] {
				r.drawUnderline(drawingContext, quad)
			}
			if !labelled && len(annotation.Coordinates[i]) > 0 {
				drawingContext.DrawString(strconv.Itoa(annotation.Index+1), labelX, bottom(annotation.Coordinates[i][0]))
				labelled = true
			}
		}
	}
	return drawingContext.Image()
}

func (r *Renderer) labelX(drawingContext *gg.Context, page int, document *layout.Document, pageLineCounts []int) float64 {
	// Widest label that can appear on a page of reasonable length.
	labelWidth, _ := drawingContext.MeasureString("000")
	rightmost := float64(drawingContext.Width()) - labelWidth - labelMargin

	start, end, ok := layout.PageRange(page, pageLineCounts)
	if !ok {
		return rightmost
	}
	_, maxX, ok := document.XBounds(start, end)
	if !ok {
		return rightmost
	}
	return min(float64(maxX+labelMargin), rightmost)
}

func (r *Renderer) drawUnderline(drawingContext *gg.Context, quad layout.Quad) {
	left := float64(min(quad[0].X, quad[3].X))
	right := float64(max(quad[1].X, quad[2].X))
	y := bottom(quad) + r.underline.Offset
	drawingContext.DrawLine(left, y, right, y)
	drawingContext.Stroke()
}

// bottom returns the lower of the two bottom vertices.
func bottom(quad layout.Quad) float64 {
	return float64(max(quad[2].Y, quad[3].Y))
}
