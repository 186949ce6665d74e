package completion

import "strings"

// systemPrompt instructs the model to transcribe the page image to Markdown.
// Kept deliberately plain: the output is cleaned up afterwards by the format
// package, so the prompt only needs to steer the model away from chatter.
const systemPrompt = `Convert the following image to Markdown.
Return only the Markdown content of the page with no explanation, no preamble,
and no code fences.

Rules:
- Transcribe all visible text, including headers, footers, and captions.
- Reproduce tables as Markdown tables.
- Use # headings matching the document's heading hierarchy.
- Describe charts and figures briefly in italics, e.g. *Figure: quarterly revenue by region*.
- Do not add content that is not on the page.`

// maintainFormatPrompt is appended in format-maintenance mode so the model
// keeps numbering, table layout, and heading style consistent with the
// previous page.
const maintainFormatPrompt = `
The Markdown of the previous page is provided below. Match its formatting
conventions (heading levels, list markers, table style) and continue any
content that spans the page break.

Previous page:
`

// buildPrompt assembles the instruction text for one page.
func buildPrompt(priorPageText string, maintainFormat bool) string {
	if !maintainFormat || priorPageText == "" {
		return systemPrompt
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n")
	b.WriteString(maintainFormatPrompt)
	b.WriteString("\n")
	b.WriteString(priorPageText)
	return b.String()
}
