package impl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/lenor-project/lenor/annotator/impl/documentai"
	"github.com/lenor-project/lenor/annotator/impl/vision"
	"github.com/lenor-project/lenor/pkg/layout"
)

var (
	ErrEmptyPage     = errors.New("page has neither an image nor a saved OCR response")
	ErrMissingClient = errors.New("no client configured for the OCR source")
	ErrUnknownSource = errors.New("unknown OCR source")
)

// recognizePages runs OCR on every page concurrently and returns the word boxes
// in page order. All pages are waited for; the errors of failed pages are joined.
func (a *annotator) recognizePages(ctx context.Context, pages []Page) ([][]layout.WordBox, error) {
	type result struct {
		boxes []layout.WordBox
		err   error
		index int
	}

	resultChan := make(chan result, len(pages))
	for i, page := range pages {
		go func(i int, page Page) {
			boxes, err := a.recognize(ctx, page)
			resultChan <- result{boxes, err, i}
		}(i, page)
	}

	pageBoxes := make([][]layout.WordBox, len(pages))
	errs := []error{}
	for range pages {
		result := <-resultChan
		if result.err != nil {
			log.WithError(result.err).WithField("page", result.index).Error("Failed to recognize page")
			errs = append(errs, fmt.Errorf("page %d: %w", result.index, result.err))
			continue
		}
		log.WithFields(logrus.Fields{
			"page":  result.index,
			"words": len(result.boxes),
		}).Debug("Recognized page")
		pageBoxes[result.index] = result.boxes
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return pageBoxes, nil
}

func (a *annotator) recognize(ctx context.Context, page Page) ([]layout.WordBox, error) {
	if len(page.OCR) > 0 {
		return decodeSaved(a.source, page.OCR)
	}
	if len(page.Image) == 0 {
		return nil, ErrEmptyPage
	}

	switch a.source {
	case OCRSourceVision:
		if a.vision == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingClient, a.source)
		}
		return vision.Recognize(ctx, a.vision, page.Image)
	case OCRSourceDocumentAI:
		if a.documentai == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingClient, a.source)
		}
		return documentai.Recognize(ctx, a.documentai, a.documentaiSpec, page.Image, http.DetectContentType(page.Image))
	case OCRSourceTesseract:
		if a.tesseract == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingClient, a.source)
		}
		return a.tesseract.Recognize(ctx, page.Image)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, a.source)
	}
}

func decodeSaved(source OCRSource, data []byte) ([]layout.WordBox, error) {
	switch source {
	case OCRSourceVision:
		annotation, err := vision.Decode(data)
		if err != nil {
			return nil, err
		}
		return vision.WordBoxes(annotation), nil
	case OCRSourceDocumentAI:
		document, err := documentai.Decode(data)
		if err != nil {
			return nil, err
		}
		return documentai.WordBoxes(document), nil
	case OCRSourceTesseract:
		boxes := []layout.WordBox{}
		if err := json.Unmarshal(data, &boxes); err != nil {
			return nil, fmt.Errorf("failed to decode saved word boxes: %w", err)
		}
		return boxes, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
}
