// Package tesseract runs word-level OCR locally with the Tesseract engine.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/lenor-project/lenor/pkg/layout"
	"github.com/lenor-project/lenor/pkg/utils"
)

// Client recognizes the words of one page image.
type Client interface {
	Recognize(ctx context.Context, image []byte) ([]layout.WordBox, error)
}

type engine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// New returns a client recognizing the given languages, English when none is set.
func New(languages ...string) Client {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &engine{languages: languages, clientFactory: gosseract.NewClient}
}

func (e *engine) Recognize(ctx context.Context, image []byte) ([]layout.WordBox, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	if err := c.SetLanguage(e.languages...); err != nil {
		return nil, fmt.Errorf("set languages: %w", err)
	}
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognize words: %w", err)
	}

	words := utils.Filter(boxes, func(box gosseract.BoundingBox) bool {
		return box.Word != ""
	})
	// Tesseract reports axis-aligned rectangles.
	return utils.Map(words, func(box gosseract.BoundingBox) layout.WordBox {
		minX, minY, maxX, maxY := box.Box.Min.X, box.Box.Min.Y, box.Box.Max.X, box.Box.Max.Y
		return layout.WordBox{
			Quad: layout.Quad{{X: minX, Y: minY}, {X: maxX, Y: minY}, {X: maxX, Y: maxY}, {X: minX, Y: maxY}},
			Text: box.Word,
		}
	}), nil
}
