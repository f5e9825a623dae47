package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/lenor-project/lenor/annotator/impl"
	"github.com/lenor-project/lenor/pkg/annotate"
	"github.com/lenor-project/lenor/pkg/layout"
)

var typeColors = map[string]*color.Color{
	"spelling":    color.New(color.FgRed, color.Bold),
	"grammar":     color.New(color.FgBlue, color.Bold),
	"punctuation": color.New(color.FgGreen, color.Bold),
	"improvement": color.New(color.FgYellow, color.Bold),
}

var (
	otherColor    = color.New(color.FgMagenta, color.Bold)
	missingColor  = color.New(color.FgRed)
	positionColor = color.New(color.FgCyan)
)

// printSummary lists the annotations per error type with their page and the
// line number within that page, both 1-based.
func printSummary(w io.Writer, result *impl.Result) {
	grouped := annotate.GroupByType(result.Annotations)
	types := make([]string, 0, len(grouped))
	for errorType := range grouped {
		types = append(types, errorType)
	}
	sort.Strings(types)

	for _, errorType := range types {
		annotations := grouped[errorType]
		heading, ok := typeColors[errorType]
		if !ok {
			heading = otherColor
		}
		heading.Fprintf(w, "%s (%d)\n", errorType, len(annotations))

		for _, annotation := range annotations {
			fmt.Fprintf(w, "  #%d %s %s", annotation.Index+1, position(annotation, result.PageLineCounts), strings.Join(annotation.Words, " "))
			if annotation.Feedback != "" {
				fmt.Fprintf(w, " -> %s", annotation.Feedback)
			}
			if !annotation.Located() {
				missingColor.Fprint(w, " (not found on page)")
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintf(w, "%d annotations on %d pages\n", len(result.Annotations), len(result.PageLineCounts))
}

func position(annotation annotate.Annotation, pageLineCounts []int) string {
	if len(annotation.Lines) == 0 || annotation.Page == layout.NotFound {
		return positionColor.Sprint("[?]")
	}
	line := layout.LocalLineOf(annotation.Lines[0].LineNumber, pageLineCounts)
	return positionColor.Sprintf("[page %d, line %d]", annotation.Page+1, line+1)
}
