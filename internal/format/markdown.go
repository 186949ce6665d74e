package format

import "strings"

// fencePrefixes are the code fence openers models commonly wrap output in.
// Checked in order; longer prefixes must come first so "```markdown" is not
// matched as a bare "```".
var fencePrefixes = []string{
	"```markdown",
	"```md",
	"```",
}

// Markdown normalizes raw transcribed text into clean Markdown.
// It strips a surrounding code fence if present, converts CRLF to LF, and
// trims outer whitespace. The function is pure and never fails.
func Markdown(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.TrimSpace(s)
	s = stripFence(s)
	return strings.TrimSpace(s)
}

// stripFence removes a single pair of enclosing code fences.
// Fences inside the body (e.g. transcribed code blocks) are left alone:
// only a fence on the very first line paired with a closing fence on the
// last line is stripped.
func stripFence(s string) string {
	for _, prefix := range fencePrefixes {
		if !strings.HasPrefix(s, prefix) {
			continue
		}

		rest := s[len(prefix):]

		// The opener must be alone on its line.
		newline := strings.IndexByte(rest, '\n')
		if newline == -1 {
			return s
		}
		if strings.TrimSpace(rest[:newline]) != "" {
			return s
		}

		body := rest[newline+1:]
		body = strings.TrimRight(body, " \t\n")
		if !strings.HasSuffix(body, "```") {
			return s
		}
		return strings.TrimSuffix(body, "```")
	}
	return s
}
