// Package annotate turns normalized error reports into pixel-space underline
// coordinates on the reconstructed document layout.
package annotate

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/lenor-project/lenor/pkg/layout"
	"github.com/lenor-project/lenor/pkg/match"
	"github.com/lenor-project/lenor/pkg/report"
	"github.com/lenor-project/lenor/pkg/utils"
)

var log = logrus.WithField("component", "annotate")

// Annotation is a report resolved to the quads of the words it underlines.
type Annotation struct {
	report.Report

	// One entry per referenced line, in report order. An entry is empty when the
	// line could not be located.
	Coordinates [][]layout.Quad `json:"coordinates"`
	// First quad of the first located line and last quad of the last located
	// line. Empty when nothing was located.
	FirstWordCoordinates []layout.Vertex `json:"firstWordCoordinates"`
	LastWordCoordinates  []layout.Vertex `json:"lastWordCoordinates"`

	UniqueID string `json:"uniqueId"`
	// Active is cleared by the owner of the annotation instead of deleting it.
	Active bool `json:"active"`
}

// Located reports whether at least one line of the annotation was found.
func (a Annotation) Located() bool {
	return len(a.FirstWordCoordinates) > 0
}

// Mapper locates reports on one document. It only reads the document and is
// safe for concurrent use.
type Mapper struct {
	document  *layout.Document
	tolerance int
}

// NewMapper returns a mapper over document. A non-positive tolerance falls back
// to match.DefaultWindowTolerance.
func NewMapper(document *layout.Document, tolerance int) *Mapper {
	if tolerance <= 0 {
		tolerance = match.DefaultWindowTolerance
	}
	return &Mapper{document: document, tolerance: tolerance}
}

// Map resolves every line referenced by r. Lines that are out of range or have
// no viable match produce an empty span; the rest of the report is still mapped.
func (m *Mapper) Map(r report.Report) Annotation {
	coordinates := make([][]layout.Quad, len(r.Lines))
	for i, line := range r.Lines {
		coordinates[i] = m.locate(line, i < len(r.Lines)-1)
	}

	annotation := Annotation{
		Report:               r,
		Coordinates:          coordinates,
		FirstWordCoordinates: []layout.Vertex{},
		LastWordCoordinates:  []layout.Vertex{},
		UniqueID:             uuid.NewString(),
		Active:               true,
	}

	nonEmpty := func(span []layout.Quad) bool { return len(span) > 0 }
	if first, ok := utils.Find(coordinates, nonEmpty); ok {
		annotation.FirstWordCoordinates = first[0][:]
	}
	if last, ok := utils.FindLast(coordinates, nonEmpty); ok {
		annotation.LastWordCoordinates = last[len(last)-1][:]
	}
	return annotation
}

func (m *Mapper) locate(line report.LineRef, continuesToNextLine bool) []layout.Quad {
	if line.LineNumber < 0 || line.LineNumber >= len(m.document.Lines) {
		log.WithFields(logrus.Fields{
			"line":  line.LineNumber,
			"lines": len(m.document.Lines),
		}).Debug("Line reference out of range")
		return []layout.Quad{}
	}

	span, _ := match.BestSpan(line.Words, m.document.Lines[line.LineNumber].Texts(), continuesToNextLine, m.tolerance)
	if !span.Found() {
		return []layout.Quad{}
	}

	quads := make([]layout.Quad, 0, span.End-span.Start+1)
	for j := span.Start; j <= span.End; j++ {
		quad, ok := m.document.Quad(line.LineNumber, j)
		if !ok {
			return []layout.Quad{}
		}
		quads = append(quads, quad)
	}
	return quads
}

// MapAll maps reports with at most concurrency goroutines and returns the
// annotations in input order. Reports are independent of each other; the only
// error is the context's.
func (m *Mapper) MapAll(ctx context.Context, reports []report.Report, concurrency int) ([]Annotation, error) {
	annotations := make([]Annotation, len(reports))

	group, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		group.SetLimit(concurrency)
	}
	for i, r := range reports {
		i, r := i, r
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			annotations[i] = m.Map(r)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return annotations, nil
}

// GroupByType buckets annotations by error type, keeping their order.
func GroupByType(annotations []Annotation) map[string][]Annotation {
	return utils.GroupBy(annotations, func(a Annotation) string {
		return a.ErrorType
	})
}

// Active drops annotations that have been soft-deleted.
func Active(annotations []Annotation) []Annotation {
	return utils.Filter(annotations, func(a Annotation) bool {
		return a.Active
	})
}
