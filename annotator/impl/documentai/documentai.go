package documentai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/lenor-project/lenor/pkg/layout"
	"github.com/lenor-project/lenor/pkg/utils"
)

// Client is an interface for the DocumentProcessorClient.
// Ref: https://pkg.go.dev/cloud.google.com/go/documentai
// This interface is used for mocking the documentai.DocumentProcessorClient in tests.
type Client interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
}

type Spec struct {
	// E.g., lenor-prod
	ProjectID string
	// E.g., eu
	Location string
	// E.g., 98dae69a95e1906
	ProcessorID string
}

func (s Spec) processorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", s.ProjectID, s.Location, s.ProcessorID)
}

// Recognize sends one page image to the OCR processor.
func Recognize(ctx context.Context, client Client, spec Spec, image []byte, mimeType string) ([]layout.WordBox, error) {
	request := &documentaipb.ProcessRequest{
		Name: spec.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  image,
				MimeType: mimeType,
			},
		},
	}
	response, err := client.ProcessDocument(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to process document: %w", err)
	}
	return WordBoxes(response.GetDocument()), nil
}

// Decode reads a saved Document.
func Decode(data []byte) (*documentaipb.Document, error) {
	document := &documentaipb.Document{}
	if err := (protojson.UnmarshalOptions{DiscardUnknown: true}).Unmarshal(data, document); err != nil {
		return nil, fmt.Errorf("failed to decode saved document: %w", err)
	}
	return document, nil
}

// WordBoxes converts the tokens of every page.
//
// Document structure:
// Document
//
//	├── Text
//	└── Pages []Document_Page
//	     ├── Dimension (Width, Height)
//	     └── Tokens []Document_Page_Token
//	          └── Layout
//	               ├── TextAnchor
//	               │    └── TextSegments (StartIndex, EndIndex into Text)
//	               └── BoundingPoly
//	                    ├── Vertices []Vertex (pixels)
//	                    └── NormalizedVertices []NormalizedVertex (0..1)
func WordBoxes(document *documentaipb.Document) []layout.WordBox {
	text := []rune(document.GetText())

	return utils.FlatMap(document.GetPages(), func(page *documentaipb.Document_Page) []layout.WordBox {
		boxes := utils.Map(page.GetTokens(), func(token *documentaipb.Document_Page_Token) layout.WordBox {
			segments := utils.Map(token.GetLayout().GetTextAnchor().GetTextSegments(), func(segment *documentaipb.Document_TextAnchor_TextSegment) string {
				start, end := int(segment.GetStartIndex()), int(segment.GetEndIndex())
				if start < 0 || end > len(text) || start > end {
					return ""
				}
				return string(text[start:end])
			})
			return layout.WordBox{
				Quad: quad(token.GetLayout().GetBoundingPoly(), page.GetDimension()),
				Text: strings.TrimSpace(strings.Join(segments, "")),
			}
		})
		return utils.Filter(boxes, func(box layout.WordBox) bool {
			return box.Text != ""
		})
	})
}

// Pixel vertices are used when present; otherwise the normalized vertices are
// scaled by the page dimension.
func quad(poly *documentaipb.BoundingPoly, dimension *documentaipb.Document_Page_Dimension) layout.Quad {
	var result layout.Quad
	if vertices := poly.GetVertices(); len(vertices) >= len(result) {
		for i := range result {
			result[i] = layout.Vertex{X: int(vertices[i].GetX()), Y: int(vertices[i].GetY())}
		}
		return result
	}

	normalized := poly.GetNormalizedVertices()
	for i := range result {
		if i == len(normalized) {
			break
		}
		result[i] = layout.Vertex{
			X: int(math.Round(float64(normalized[i].GetX()) * float64(dimension.GetWidth()))),
			Y: int(math.Round(float64(normalized[i].GetY()) * float64(dimension.GetHeight()))),
		}
	}
	return result
}
