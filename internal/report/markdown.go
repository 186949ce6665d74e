package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/pagemd/pagemd/internal/model"
)

// MarkdownWriter outputs run reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run report in Markdown format.
func (w *MarkdownWriter) Write(run *model.RunResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeAlert(md, run)
	w.writePages(md, run)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.RunResult) {
	md.H1("Conversion Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Source", "`" + run.Source + "`"},
			{"Output", "`" + run.FileName + ".md`"},
			{"Completed", run.CompletedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages", strconv.Itoa(run.PagesTotal)},
			{"Skipped", strconv.Itoa(run.PagesSkipped)},
			{"Input Tokens", strconv.FormatInt(run.InputTokens, 10)},
			{"Output Tokens", strconv.FormatInt(run.OutputTokens, 10)},
			{"Elapsed", run.Elapsed.String()},
		},
	})
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, run *model.RunResult) {
	switch {
	case run.PagesTotal == 0:
		md.Note("The source produced no pages; the output document is empty.")
	case run.PagesSkipped == run.PagesTotal:
		md.Cautionf("All %d pages failed to transcribe.", run.PagesTotal)
	case run.PagesSkipped > 0:
		md.Warningf("%d of %d pages were skipped due to transcription failures.",
			run.PagesSkipped, run.PagesTotal)
	default:
		md.Tip("All pages transcribed successfully.")
	}
	md.PlainText("")
}

// writePages writes the per-page breakdown table.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, run *model.RunResult) {
	md.H2("Pages")
	md.PlainText("")

	if len(run.Pages) == 0 {
		md.PlainText("No pages transcribed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(run.Pages))
	for i, p := range run.Pages {
		rows[i] = []string{
			strconv.Itoa(p.Page),
			strconv.Itoa(p.ContentLength),
			strconv.FormatInt(p.InputTokens, 10),
			strconv.FormatInt(p.OutputTokens, 10),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Page", "Characters", "Input Tokens", "Output Tokens"},
		Rows:   rows,
	})
	md.PlainText("")
}
