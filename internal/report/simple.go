package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pagemd/pagemd/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display after a conversion run.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-page breakdown in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the per-page breakdown with token counts.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the run report in human-readable format.
func (w *SimpleWriter) Write(run *model.RunResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)
	w.writeSummary(&sb, run)
	if w.verbose {
		w.writePages(&sb, run)
	}

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.RunResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         CONVERSION REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Source:      %s\n", run.Source))
	sb.WriteString(fmt.Sprintf("Output:      %s.md\n", run.FileName))
	sb.WriteString(fmt.Sprintf("Completed:   %s\n", run.CompletedAt.Format("2006-01-02 15:04:05 MST")))

	switch {
	case run.PagesTotal == 0:
		sb.WriteString("Status:      EMPTY (source produced no pages)\n")
	case run.PagesSkipped == run.PagesTotal:
		sb.WriteString("Status:      FAILED (all pages skipped)\n")
	case run.PagesSkipped > 0:
		sb.WriteString(fmt.Sprintf("Status:      PARTIAL (%d of %d pages skipped)\n", run.PagesSkipped, run.PagesTotal))
	default:
		sb.WriteString("Status:      Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the run totals section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, run *model.RunResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages:          %d\n", run.PagesTotal))
	sb.WriteString(fmt.Sprintf("  Transcribed:    %d\n", len(run.Pages)))
	sb.WriteString(fmt.Sprintf("  Skipped:        %d\n", run.PagesSkipped))
	sb.WriteString(fmt.Sprintf("  Input tokens:   %d\n", run.InputTokens))
	sb.WriteString(fmt.Sprintf("  Output tokens:  %d\n", run.OutputTokens))
	sb.WriteString(fmt.Sprintf("  Total tokens:   %d\n", run.TotalTokens()))
	sb.WriteString(fmt.Sprintf("  Elapsed:        %s\n", run.Elapsed.Round(10*time.Millisecond)))
	sb.WriteString("\n")
}

// writePages writes the per-page breakdown.
func (w *SimpleWriter) writePages(sb *strings.Builder, run *model.RunResult) {
	if len(run.Pages) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, p := range run.Pages {
		sb.WriteString(fmt.Sprintf("  [%3d] %6d chars  in=%-6d out=%-6d\n",
			p.Page, p.ContentLength, p.InputTokens, p.OutputTokens))
	}
	sb.WriteString("\n")
}
