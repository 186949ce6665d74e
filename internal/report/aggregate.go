package report

import (
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pagemd/pagemd/internal/model"
)

// Aggregate assembles the per-page results of one run into a RunResult.
//
// Skipped pages are counted but excluded from the Pages slice, so downstream
// consumers only ever see content that transcribed successfully. Token totals
// are recomputed here from the individual results rather than taken from the
// scheduler's live counters; summation is order-independent, so both paths
// agree.
func Aggregate(source string, results []model.PageResult, start time.Time) *model.RunResult {
	run := &model.RunResult{
		Source:     source,
		FileName:   DeriveFileName(source),
		PagesTotal: len(results),
		Pages:      make([]model.PageResult, 0, len(results)),
	}

	for _, r := range results {
		if r.Skipped {
			run.PagesSkipped++
			continue
		}
		run.Pages = append(run.Pages, r)
		run.InputTokens += r.InputTokens
		run.OutputTokens += r.OutputTokens
	}

	// The scheduler already yields results in page order; sorting here keeps
	// the invariant even if a caller hands us a shuffled slice.
	sort.Slice(run.Pages, func(i, j int) bool {
		return run.Pages[i].Page < run.Pages[j].Page
	})

	run.CompletedAt = time.Now()
	run.Elapsed = run.CompletedAt.Sub(start)

	return run
}

// Document joins the successful pages into the final Markdown document.
// Pages are separated by a single blank line. An empty run yields an empty
// string.
func Document(run *model.RunResult) string {
	if len(run.Pages) == 0 {
		return ""
	}

	parts := make([]string, 0, len(run.Pages))
	for _, p := range run.Pages {
		parts = append(parts, p.Content)
	}

	return strings.Join(parts, "\n\n")
}

// foldDiacritics strips combining marks after NFKD decomposition, so
// "Résumé" folds to "Resume" before the character filter runs.
var foldDiacritics = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// DeriveFileName derives the normalized output name from a document
// reference. The base name is taken from the path (URL query and fragment
// stripped), the extension is dropped, letters are lowercased, and runs of
// spaces, hyphens, and underscores collapse to a single underscore. Any
// other rune is discarded. The result is stable: deriving from an already
// normalized name returns it unchanged.
//
//	"My Report (v2).pdf" -> "my_report_v2"
func DeriveFileName(source string) string {
	base := source
	if u, err := url.Parse(source); err == nil && u.Scheme != "" {
		base = u.Path
	}
	base = filepath.Base(base)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if folded, _, err := transform.String(foldDiacritics, base); err == nil {
		base = folded
	}
	base = strings.ToLower(base)

	var sb strings.Builder
	sb.Grow(len(base))
	pendingSep := false
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingSep && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pendingSep = false
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}

	name := sb.String()
	if name == "" {
		return "document"
	}
	return name
}
