package vision

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/lenor-project/lenor/pkg/layout"
	"github.com/lenor-project/lenor/pkg/utils"
)

// Client is an interface for the vision.ImageAnnotatorClient
// Ref: https://pkg.go.dev/cloud.google.com/go/vision/apiv1
// This interface is used for mocking the vision.ImageAnnotatorClient in unit tests.
type Client interface {
	DetectDocumentText(ctx context.Context, image *visionpb.Image, imageContext *visionpb.ImageContext, opts ...gax.CallOption) (*visionpb.TextAnnotation, error)
}

var ErrEmptyResponse = errors.New("saved response has no text annotation")

// Recognize runs document text detection on one page image.
func Recognize(ctx context.Context, client Client, image []byte) ([]layout.WordBox, error) {
	annotation, err := client.DetectDocumentText(ctx, &visionpb.Image{Content: image}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to detect text: %w", err)
	}
	return WordBoxes(annotation), nil
}

// Decode reads a saved response. Both a full AnnotateImageResponse and a bare
// TextAnnotation are accepted.
func Decode(data []byte) (*visionpb.TextAnnotation, error) {
	options := protojson.UnmarshalOptions{DiscardUnknown: true}

	response := &visionpb.AnnotateImageResponse{}
	if err := options.Unmarshal(data, response); err == nil && response.GetFullTextAnnotation() != nil {
		return response.GetFullTextAnnotation(), nil
	}

	annotation := &visionpb.TextAnnotation{}
	if err := options.Unmarshal(data, annotation); err != nil {
		return nil, fmt.Errorf("failed to decode saved response: %w", err)
	}
	if len(annotation.GetPages()) == 0 {
		return nil, ErrEmptyResponse
	}
	return annotation, nil
}

// WordBoxes flattens pages, blocks and paragraphs into the words of the annotation.
// The word text is the concatenation of its symbols.
func WordBoxes(annotation *visionpb.TextAnnotation) []layout.WordBox {
	blocks := utils.FlatMap(annotation.GetPages(), func(page *visionpb.Page) []*visionpb.Block {
		return page.GetBlocks()
	})
	paragraphs := utils.FlatMap(blocks, func(block *visionpb.Block) []*visionpb.Paragraph {
		return block.GetParagraphs()
	})
	words := utils.FlatMap(paragraphs, func(paragraph *visionpb.Paragraph) []*visionpb.Word {
		return paragraph.GetWords()
	})

	return utils.Map(words, func(word *visionpb.Word) layout.WordBox {
		var quad layout.Quad
		for i, vertex := range word.GetBoundingBox().GetVertices() {
			if i == len(quad) {
				break
			}
			quad[i] = layout.Vertex{X: int(vertex.GetX()), Y: int(vertex.GetY())}
		}
		return layout.WordBox{
			Quad: quad,
			Text: utils.Reduce(word.GetSymbols(), func(text string, symbol *visionpb.Symbol) string {
				return text + symbol.GetText()
			}, ""),
		}
	})
}
