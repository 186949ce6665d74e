package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pagemd/pagemd/internal/model"
)

// SaveDocument writes the assembled Markdown document to
// <outputDir>/<FileName>.md, creating the directory if needed, and returns
// the written path.
//
// Persistence failures here are hard errors: by the time SaveDocument runs,
// every page has already been processed, so the caller reports the error
// instead of tagging pages.
func SaveDocument(run *model.RunResult, document, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outputDir, run.FileName+".md")
	if err := os.WriteFile(path, []byte(document), 0600); err != nil {
		return "", fmt.Errorf("failed to write document: %w", err)
	}

	return path, nil
}
