package impl

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/lenor-project/lenor/pkg/openai"
	"github.com/lenor-project/lenor/pkg/report"
)

var ErrNoProvider = errors.New("no AI provider configured")

const mappingInstructions = `You link detected writing issues to their position in OCR text.
Reply with a JSON array only, inside a markdown code block.

For every issue:
- copy "feedback_type" into "error_type" and keep "feedback" unchanged;
- add "lines", one entry per OCR line the "underline" phrase covers, in order;
- each entry has "line_number", exactly as numbered in the OCR text, and "words",
  the tokens of that line exactly as the OCR wrote them, including its spelling,
  capitalization and punctuation.

Example:
[
  {"error_type": "spelling", "lines": [{"line_number": 3, "words": ["Ones"]}], "feedback": "Once"},
  {"error_type": "punctuation", "lines": [{"line_number": 4, "words": ["sign", "No"]}], "feedback": "sign, \"No"}
]`

func mappingPrompt(issues string, description string) string {
	return fmt.Sprintf("OCR text:\n%s\n\nDetected issues:\n%s", description, issues)
}

type provider struct {
	name   string
	client openai.Client
	model  string
}

// Gemini first, OpenAI as fallback.
func (a *annotator) providers() []provider {
	providers := []provider{}
	if a.genai != nil {
		providers = append(providers, provider{name: "genai", client: a.genai, model: a.models.Genai})
	}
	if a.openai != nil {
		providers = append(providers, provider{name: "openai", client: a.openai, model: a.models.Openai})
	}
	return providers
}

// mapReports asks the AI providers in turn to map issues onto the numbered OCR
// lines. A provider is retried while it fails or answers with an unusable
// payload. When every provider answered but none could be parsed, the last
// soft failure is returned; an error is only returned when no provider answered.
func (a *annotator) mapReports(ctx context.Context, issues string, description string, pageLineCounts []int) (report.Result, error) {
	providers := a.providers()
	if len(providers) == 0 {
		return report.Result{}, ErrNoProvider
	}

	request := openai.SystemAndUser("", mappingInstructions, mappingPrompt(issues, description))

	var softFailure *report.Result
	errs := []error{}
	for _, p := range providers {
		request.Model = p.model
		var last report.Result
		result, err := backoff.RetryWithData(func() (report.Result, error) {
			response, err := p.client.CreateChatCompletion(ctx, request)
			if err != nil {
				return report.Result{}, err
			}
			content, err := openai.GetCompletionContent(response)
			if err != nil {
				return report.Result{}, err
			}
			last = report.Normalize(content, pageLineCounts)
			if !last.OK() {
				return report.Result{}, last.Err
			}
			return last, nil
		}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(a.backoffDuration), 4), ctx))
		if err == nil {
			log.WithFields(logrus.Fields{
				"provider": p.name,
				"reports":  len(result.Reports),
			}).Info("Mapped issues onto OCR lines")
			return result, nil
		}

		log.WithError(err).WithField("provider", p.name).Warn("AI provider failed to map issues")
		if errors.Is(err, report.ErrMalformedPayload) {
			softFailure = &last
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
		if ctx.Err() != nil {
			break
		}
	}

	if softFailure != nil && ctx.Err() == nil {
		return *softFailure, nil
	}
	return report.Result{}, fmt.Errorf("failed to map issues: %w", errors.Join(errs...))
}
