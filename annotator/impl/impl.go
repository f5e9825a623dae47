package impl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lenor-project/lenor/annotator/impl/documentai"
	"github.com/lenor-project/lenor/annotator/impl/font"
	"github.com/lenor-project/lenor/annotator/impl/genai"
	"github.com/lenor-project/lenor/annotator/impl/render"
	"github.com/lenor-project/lenor/annotator/impl/tesseract"
	"github.com/lenor-project/lenor/annotator/impl/vision"
	"github.com/lenor-project/lenor/pkg/annotate"
	"github.com/lenor-project/lenor/pkg/config"
	"github.com/lenor-project/lenor/pkg/layout"
	"github.com/lenor-project/lenor/pkg/openai"
	"github.com/lenor-project/lenor/pkg/report"
	"github.com/lenor-project/lenor/pkg/utils"
)

var log = logrus.WithField("component", "annotator")

var (
	ErrNoPages   = errors.New("request has no pages")
	ErrNoReports = errors.New("request has neither reports nor issues")
)

type annotator struct {
	source  OCRSource
	profile config.Profile

	vision     vision.Client
	documentai documentai.Client
	tesseract  tesseract.Client

	// Contains the configuration for the DocumentAI processor.
	documentaiSpec documentai.Spec

	genai  genai.Client
	openai openai.Client
	models Models

	renderer *render.Renderer

	// Used to delay the next request when the AI provider fails.
	backoffDuration time.Duration

	// Maximum number of reports mapped at the same time.
	concurrency int
}

// Clients groups the external services. Only the OCR client of the configured
// source is required, and only for pages without a saved OCR response. The AI
// clients are only used for requests carrying issues.
type Clients struct {
	Vision         vision.Client
	Documentai     documentai.Client
	DocumentaiSpec documentai.Spec
	Tesseract      tesseract.Client
	Genai          genai.Client
	Openai         openai.Client
}

func New(
	source OCRSource,
	profile config.Profile,
	clients Clients,
	models Models,
	fontProvider font.FontProvider,
	backoffDuration time.Duration,
	concurrency int,
) (*annotator, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	switch source {
	case OCRSourceVision, OCRSourceDocumentAI, OCRSourceTesseract:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	if fontProvider == nil {
		defaultFonts, err := font.New("")
		if err != nil {
			return nil, err
		}
		fontProvider = defaultFonts
	}

	return &annotator{
		source:          source,
		profile:         profile,
		vision:          clients.Vision,
		documentai:      clients.Documentai,
		tesseract:       clients.Tesseract,
		documentaiSpec:  clients.DocumentaiSpec,
		genai:           clients.Genai,
		openai:          clients.Openai,
		models:          models,
		renderer:        render.New(profile.Underline, fontProvider),
		backoffDuration: backoffDuration,
		concurrency:     concurrency,
	}, nil
}

// Annotate recognizes the pages, rebuilds the lines of the whole essay and
// locates every error report on them. A report payload that cannot be parsed is
// not an error: the result then has no annotations and ReportErr set.
func (a *annotator) Annotate(ctx context.Context, request Request) (*Result, error) {
	if len(request.Pages) == 0 {
		return nil, ErrNoPages
	}
	if request.Reports == "" && request.Issues == "" {
		return nil, ErrNoReports
	}

	pageBoxes, err := a.recognizePages(ctx, request.Pages)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize pages: %w", err)
	}

	document, pageLineCounts := layout.Assemble(pageBoxes, a.profile.ClusterThreshold)
	description := document.DescriptionLines()

	var reports report.Result
	if request.Reports != "" {
		reports = report.Normalize(request.Reports, pageLineCounts)
	} else {
		reports, err = a.mapReports(ctx, request.Issues, description, pageLineCounts)
		if err != nil {
			return nil, err
		}
	}
	if !reports.OK() {
		log.WithError(reports.Err).Warn("No annotations for unparsable reports")
	}

	annotations, err := annotate.NewMapper(document, a.profile.WindowTolerance).MapAll(ctx, reports.Reports, a.concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to map reports: %w", err)
	}

	result := &Result{
		Annotations:    annotations,
		PageLineCounts: pageLineCounts,
		Description:    description,
		ReportErr:      reports.Err,
		Pages:          make([][]byte, len(request.Pages)),
	}

	if request.Render {
		for i, page := range request.Pages {
			if len(page.Image) == 0 {
				continue
			}
			rendered, err := a.renderPage(page.Image, i, document, pageLineCounts, annotations)
			if err != nil {
				return nil, fmt.Errorf("failed to render page %d: %w", i, err)
			}
			result.Pages[i] = rendered
		}
	}

	log.WithFields(logrus.Fields{
		"pages":       len(request.Pages),
		"lines":       len(document.Lines),
		"reports":     len(reports.Reports),
		"located":     len(utils.Filter(annotations, annotate.Annotation.Located)),
		"annotations": len(annotations),
	}).Info("Annotated essay")
	return result, nil
}

func (a *annotator) renderPage(byteImage []byte, page int, document *layout.Document, pageLineCounts []int, annotations []annotate.Annotation) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(byteImage))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	buffer := new(bytes.Buffer)
	if err := png.Encode(buffer, a.renderer.Page(img, page, document, pageLineCounts, annotations)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buffer.Bytes(), nil
}
