package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"billscan/internal/domain"
	"billscan/internal/parser"
	"billscan/internal/port"
)

// ExtractService runs the per-page extraction pipeline: rasterize, call the
// model once per page, repair the response JSON, normalize line items, and
// assemble page results with running token-usage totals.
type ExtractService interface {
	Extract(ctx context.Context, doc *domain.LocalDocument) (*domain.ExtractionData, domain.TokenUsage, error)
}

type extractService struct {
	model      port.PageModelClient
	rasterizer port.Rasterizer
}

// NewExtractService creates a new ExtractService implementation.
func NewExtractService(model port.PageModelClient, rasterizer port.Rasterizer) ExtractService {
	return &extractService{
		model:      model,
		rasterizer: rasterizer,
	}
}

// Extract processes pages strictly sequentially and all-or-nothing: one
// failed page fails the whole document, and no partial result is returned.
func (s *extractService) Extract(ctx context.Context, doc *domain.LocalDocument) (*domain.ExtractionData, domain.TokenUsage, error) {
	var usage domain.TokenUsage

	pagePaths, err := s.rasterizer.Split(ctx, doc)
	if err != nil {
		return nil, usage, fmt.Errorf("splitting document: %w", err)
	}
	defer func() {
		for _, p := range pagePaths {
			if p != doc.Path {
				_ = os.Remove(p)
			}
		}
	}()

	if len(pagePaths) == 0 {
		return nil, usage, domain.ErrEmptyDocument
	}

	prompt := parser.BuildBillExtractionPrompt()
	pages := make([]domain.Page, 0, len(pagePaths))
	totalItems := 0

	for i, path := range pagePaths {
		pageNo := i + 1

		imageBytes, err := os.ReadFile(path)
		if err != nil {
			return nil, usage, &parser.ExtractionError{Page: pageNo, Err: fmt.Errorf("reading page image: %w", err)}
		}

		out, err := s.model.Generate(ctx, port.GenerateInput{
			Prompt:     prompt,
			PageHint:   fmt.Sprintf("Extract items from page %d", pageNo),
			ImageBytes: imageBytes,
			MimeType:   mimeTypeForImage(path),
		})
		if err != nil {
			return nil, usage, &parser.ExtractionError{Page: pageNo, Err: err}
		}
		usage.Add(out.Usage)

		extracted, err := parser.DecodeExtraction(out.Text)
		if err != nil {
			return nil, usage, &parser.ExtractionError{Page: pageNo, Err: err}
		}
		if len(extracted.PagewiseLineItems) == 0 {
			return nil, usage, &parser.ExtractionError{Page: pageNo, Err: errors.New("model response missing pagewise_line_items")}
		}

		// The model sees a single page per call; take its first page block
		// and stamp it with the caller-side index, ignoring whatever page
		// numbering the model invented.
		rawPage := extracted.PagewiseLineItems[0]
		items := parser.NormalizeItems(rawPage.BillItems)

		pages = append(pages, domain.Page{
			PageNo:    strconv.Itoa(pageNo),
			PageType:  parser.NormalizePageType(rawPage.PageType),
			BillItems: items,
		})
		totalItems += len(items)

		log.Printf("extractService.Extract: page %d/%d done (%d items, %d tokens)",
			pageNo, len(pagePaths), len(items), out.Usage.TotalTokens)
	}

	return &domain.ExtractionData{
		PagewiseLineItems: pages,
		TotalItemCount:    totalItems,
	}, usage, nil
}

func mimeTypeForImage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
