package raster

import (
	"context"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
	"github.com/google/uuid"

	"billscan/internal/domain"
)

// PDFRasterizer implements port.Rasterizer using go-fitz. PDFs are rendered
// to one PNG per page at the configured DPI; image inputs pass through as a
// single-page sequence.
type PDFRasterizer struct {
	dpi     int
	tempDir string
}

// NewPDFRasterizer creates a PDFRasterizer rendering at the given DPI.
// A dpi of 0 falls back to 200.
func NewPDFRasterizer(dpi int) *PDFRasterizer {
	if dpi <= 0 {
		dpi = 200
	}
	return &PDFRasterizer{dpi: dpi, tempDir: os.TempDir()}
}

func (r *PDFRasterizer) Split(ctx context.Context, doc *domain.LocalDocument) ([]string, error) {
	if doc.FileType != domain.FileTypePDF {
		// Already a single page image
		return []string{doc.Path}, nil
	}

	pdf, err := fitz.New(doc.Path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer func() { _ = pdf.Close() }()

	if pdf.NumPage() == 0 {
		return nil, domain.ErrEmptyDocument
	}

	paths := make([]string, 0, pdf.NumPage())
	for i := 0; i < pdf.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			removeAll(paths)
			return nil, err
		}

		img, err := pdf.ImageDPI(i, float64(r.dpi))
		if err != nil {
			removeAll(paths)
			return nil, fmt.Errorf("rendering page %d: %w", i+1, err)
		}

		path := filepath.Join(r.tempDir, fmt.Sprintf("bill_page_%d_%s.png", i+1, uuid.NewString()))
		out, err := os.Create(path)
		if err != nil {
			removeAll(paths)
			return nil, fmt.Errorf("creating page image: %w", err)
		}
		if err := png.Encode(out, img); err != nil {
			_ = out.Close()
			_ = os.Remove(path)
			removeAll(paths)
			return nil, fmt.Errorf("encoding page %d: %w", i+1, err)
		}
		if err := out.Close(); err != nil {
			removeAll(paths)
			return nil, fmt.Errorf("writing page image: %w", err)
		}
		paths = append(paths, path)
	}

	log.Printf("raster.PDFRasterizer: split %s into %d page image(s) at %d dpi", doc.Path, len(paths), r.dpi)
	return paths, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
