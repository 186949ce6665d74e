package source

import (
	"context"
	"fmt"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"

	"github.com/pagemd/pagemd/internal/model"
)

// Rasterizer converts a document into per-page JPEG images using go-fitz.
// It owns a temp directory for the rendered files; callers must invoke
// Cleanup once the run is finished.
//
// Design decision: Pages are written to disk rather than kept in memory
// because large documents would otherwise hold every rendered bitmap at once.
// The completion client re-reads each file only while that page is in flight.
type Rasterizer struct {
	// quality is the JPEG quality (1-100) for rendered pages.
	quality int

	// logger is used for structured logging during rasterization.
	logger *slog.Logger

	// tempDir holds the rendered page files for one run.
	tempDir string
}

// RasterizerOption configures a Rasterizer.
type RasterizerOption func(*Rasterizer)

// WithQuality sets the JPEG quality for rendered pages.
// Values outside 1-100 are ignored and the default of 90 is kept.
func WithQuality(q int) RasterizerOption {
	return func(r *Rasterizer) {
		if q >= 1 && q <= 100 {
			r.quality = q
		}
	}
}

// WithLogger sets a custom logger for the rasterizer.
func WithLogger(logger *slog.Logger) RasterizerOption {
	return func(r *Rasterizer) {
		r.logger = logger
	}
}

// NewRasterizer creates a Rasterizer with the given options.
func NewRasterizer(opts ...RasterizerOption) *Rasterizer {
	r := &Rasterizer{
		quality: 90,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Rasterize renders every page of the document at path to a JPEG file and
// returns the ordered page sequence. Page numbers are 1-based.
//
// A missing or unreadable document wraps ErrSourceUnavailable; a document
// that opens but cannot be rendered wraps ErrConversionFailed. A document
// with zero pages is a conversion failure, not an empty success: the caller
// asked to convert something and nothing was convertible.
func (r *Rasterizer) Rasterize(ctx context.Context, path string) ([]model.PageImage, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrConversionFailed, path, err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", ErrConversionFailed, path)
	}

	tempDir, err := os.MkdirTemp("", "pagemd-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp directory: %v", ErrConversionFailed, err)
	}
	r.tempDir = tempDir

	r.logger.Debug("rasterizing document",
		"path", path,
		"pages", pageCount,
		"quality", r.quality,
	)

	pages := make([]model.PageImage, 0, pageCount)
	for i := range pageCount {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		img, err := doc.Image(i)
		if err != nil {
			return nil, fmt.Errorf("%w: rendering page %d: %v", ErrConversionFailed, i+1, err)
		}

		outPath := filepath.Join(tempDir, fmt.Sprintf("page_%04d.jpg", i+1))
		f, err := os.Create(outPath) //nolint:gosec // Path is inside our own temp dir
		if err != nil {
			return nil, fmt.Errorf("%w: creating %s: %v", ErrConversionFailed, outPath, err)
		}

		err = jpeg.Encode(f, img, &jpeg.Options{Quality: r.quality})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("%w: encoding page %d: %v", ErrConversionFailed, i+1, err)
		}

		bounds := img.Bounds()
		pages = append(pages, model.PageImage{
			Page:   i + 1,
			Path:   outPath,
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
		})
	}

	return pages, nil
}

// Cleanup removes the temp directory holding rendered pages.
// Safe to call multiple times and before Rasterize.
func (r *Rasterizer) Cleanup() error {
	if r.tempDir == "" {
		return nil
	}

	err := os.RemoveAll(r.tempDir)
	r.tempDir = ""
	if err != nil {
		return fmt.Errorf("removing temp directory: %w", err)
	}
	return nil
}
