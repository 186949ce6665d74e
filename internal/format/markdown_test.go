package format

import "testing"

// TestMarkdown tests raw completion output normalization.
func TestMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "plain text unchanged",
			raw:  "# Title\n\nBody text.",
			want: "# Title\n\nBody text.",
		},
		{
			name: "strips markdown fence",
			raw:  "```markdown\n# Title\n\nBody text.\n```",
			want: "# Title\n\nBody text.",
		},
		{
			name: "strips md fence",
			raw:  "```md\n# Title\n```",
			want: "# Title",
		},
		{
			name: "strips bare fence",
			raw:  "```\n| a | b |\n|---|---|\n```",
			want: "| a | b |\n|---|---|",
		},
		{
			name: "trims surrounding whitespace",
			raw:  "\n\n  # Title  \n\n",
			want: "# Title",
		},
		{
			name: "normalizes CRLF",
			raw:  "line one\r\nline two",
			want: "line one\nline two",
		},
		{
			name: "keeps interior code blocks",
			raw:  "Intro\n\n```go\nfunc main() {}\n```\n\nOutro",
			want: "Intro\n\n```go\nfunc main() {}\n```\n\nOutro",
		},
		{
			name: "unclosed fence left alone",
			raw:  "```markdown\n# Title",
			want: "```markdown\n# Title",
		},
		{
			name: "fence with trailing text on opener left alone",
			raw:  "```markdown extra\ntext\n```",
			want: "```markdown extra\ntext\n```",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "fenced body keeps inner newlines",
			raw:  "```markdown\n# A\n\n## B\n\ntext\n```\n",
			want: "# A\n\n## B\n\ntext",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Markdown(tt.raw)
			if got != tt.want {
				t.Errorf("Markdown(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// TestMarkdownIdempotent verifies that formatting already-formatted text is a no-op.
func TestMarkdownIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"# Title\n\nBody text.",
		"```markdown\n# Title\n```",
		"| a | b |\n|---|---|",
	}

	for _, in := range inputs {
		once := Markdown(in)
		twice := Markdown(once)
		if once != twice {
			t.Errorf("Markdown is not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
