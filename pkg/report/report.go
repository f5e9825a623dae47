// Package report validates and orders the error reports produced by the AI
// analysis stage before they are located on the page.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/lenor-project/lenor/pkg/layout"
	"github.com/lenor-project/lenor/pkg/utils"
)

var log = logrus.WithField("component", "report")

// ErrMalformedPayload is wrapped by Result.Err when the payload is not a JSON array.
var ErrMalformedPayload = errors.New("malformed error report payload")

// LineRef points at the words of one OCR line, by global line index.
type LineRef struct {
	LineNumber int      `json:"line_number"`
	Words      []string `json:"words"`
}

// ErrorReport is a single error as described by the AI model. Every field is untrusted.
type ErrorReport struct {
	ErrorType string    `json:"error_type"`
	Feedback  string    `json:"feedback"`
	Lines     []LineRef `json:"lines"`
}

// Report is an ErrorReport that survived validation, ranked and tagged with its page.
type Report struct {
	ErrorReport
	// Page of the first referenced line, or layout.NotFound.
	Page int `json:"page"`
	// Rank among the reports of the document, ordered by first line.
	Index int `json:"index"`
	// Words of all referenced lines, in order.
	Words []string `json:"words"`
}

// Result is the outcome of Normalize. Err is set on a soft failure, in which
// case Reports is empty; callers log it and carry on.
type Result struct {
	Reports []Report
	Err     error
}

// OK reports whether the payload was parsed.
func (r Result) OK() bool {
	return r.Err == nil
}

// Normalize parses a raw AI answer into ordered reports. The answer may be wrapped
// in a fenced code block. A payload that is not a JSON array yields an empty result
// with Err set; individual entries without usable lines are dropped.
func Normalize(raw string, pageLineCounts []int) Result {
	payload := []byte(ExtractJSON(raw))

	var entries []json.RawMessage
	if !bytes.HasPrefix(bytes.TrimSpace(payload), []byte("[")) {
		return failed(fmt.Errorf("%w: top-level value is not an array", ErrMalformedPayload))
	}
	if err := json.Unmarshal(payload, &entries); err != nil {
		return failed(fmt.Errorf("%w: %v", ErrMalformedPayload, err))
	}

	reports := []Report{}
	for i, entry := range entries {
		errorReport, err := decodeEntry(entry)
		if err != nil {
			log.WithFields(logrus.Fields{"entry": i}).WithError(err).Debug("Skipping error report")
			continue
		}
		reports = append(reports, Report{ErrorReport: errorReport})
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Lines[0].LineNumber < reports[j].Lines[0].LineNumber
	})

	for i := range reports {
		reports[i].Index = i
		reports[i].Page = layout.PageOf(reports[i].Lines[0].LineNumber, pageLineCounts)
		reports[i].Words = utils.FlatMap(reports[i].Lines, func(line LineRef) []string {
			return line.Words
		})
	}

	log.WithFields(logrus.Fields{
		"received": len(entries),
		"kept":     len(reports),
	}).Debug("Normalized error reports")
	return Result{Reports: reports}
}

func failed(err error) Result {
	log.WithError(err).Warn("Discarding error report payload")
	return Result{Reports: []Report{}, Err: err}
}

func decodeEntry(entry json.RawMessage) (ErrorReport, error) {
	var fields struct {
		ErrorType string          `json:"error_type"`
		Feedback  string          `json:"feedback"`
		Lines     json.RawMessage `json:"lines"`
	}
	if err := json.Unmarshal(entry, &fields); err != nil {
		return ErrorReport{}, err
	}
	if !bytes.HasPrefix(bytes.TrimSpace(fields.Lines), []byte("[")) {
		return ErrorReport{}, errors.New("lines is missing or not an array")
	}

	var lines []LineRef
	if err := json.Unmarshal(fields.Lines, &lines); err != nil {
		return ErrorReport{}, fmt.Errorf("invalid lines: %w", err)
	}
	if len(lines) == 0 {
		return ErrorReport{}, errors.New("lines is empty")
	}

	return ErrorReport{
		ErrorType: fields.ErrorType,
		Feedback:  fields.Feedback,
		Lines:     lines,
	}, nil
}

var fencedBlock = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ExtractJSON returns the body of the first fenced code block in text. Without a
// fence the text is trimmed and trailing commas before } or ] are removed.
// String values are left untouched.
func ExtractJSON(text string) string {
	if match := fencedBlock.FindStringSubmatch(text); match != nil && match[1] != "" {
		return strings.TrimSpace(match[1])
	}
	return stripTrailingCommas(strings.TrimSpace(text))
}

func stripTrailingCommas(text string) string {
	var builder strings.Builder
	builder.Grow(len(text))

	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			builder.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == ',' {
			next := i + 1
			for next < len(text) && strings.IndexByte(" \t\r\n", text[next]) >= 0 {
				next++
			}
			if next < len(text) && (text[next] == '}' || text[next] == ']') {
				i = next - 1
				continue
			}
		}
		if c == '"' {
			inString = true
		}
		builder.WriteByte(c)
	}
	return builder.String()
}
