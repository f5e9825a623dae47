package impl

import (
	"github.com/lenor-project/lenor/pkg/annotate"
	"github.com/lenor-project/lenor/pkg/config"
)

// OCRSource names the service that produced, or will produce, the word boxes.
type OCRSource string

const (
	OCRSourceVision     OCRSource = config.SourceVision
	OCRSourceDocumentAI OCRSource = config.SourceDocumentAI
	OCRSourceTesseract  OCRSource = config.SourceTesseract
)

// Page is one scanned page of an essay.
type Page struct {
	// Encoded image (PNG, JPEG or GIF). Required for OCR and for rendering.
	Image []byte
	// Saved OCR response for the page, in the format of the OCR source. When set,
	// the page is not sent to the OCR service.
	// vision: AnnotateImageResponse or TextAnnotation as JSON
	// documentai: Document as JSON
	// tesseract: JSON array of word boxes
	OCR []byte
}

type Request struct {
	Pages []Page
	// JSON array of error reports with global line numbers. Takes precedence over Issues.
	Reports string
	// JSON array of detected issues, mapped onto the OCR lines by the AI model.
	Issues string
	// Draws the annotations on every page that carries an image.
	Render bool
}

type Result struct {
	Annotations    []annotate.Annotation `json:"annotations"`
	PageLineCounts []int                 `json:"pageLineCounts"`
	// Numbered OCR lines, as shown to the AI model.
	Description string `json:"description"`
	// Set when the report payload could not be parsed. Annotations is then empty.
	ReportErr error `json:"-"`
	// PNG-encoded rendered pages, indexed like Request.Pages. Nil for pages
	// without an image or when rendering was not requested.
	Pages [][]byte `json:"-"`
}

// Models names the model used by each AI provider.
type Models struct {
	Genai  string
	Openai string
}
