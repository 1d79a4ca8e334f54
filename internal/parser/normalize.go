package parser

import (
	"regexp"
	"strings"

	"billscan/internal/domain"
)

// Embedded newlines from multi-line OCR wrapping, with any surrounding
// whitespace, collapse to a single space.
var newlineRe = regexp.MustCompile(`\s*[\r\n]+\s*`)

// CleanItemName trims an item name and collapses embedded newlines into
// single spaces.
func CleanItemName(name string) string {
	return strings.TrimSpace(newlineRe.ReplaceAllString(name, " "))
}

// NormalizeItems converts raw line items into normalized ones, in input
// order. Items whose normalized amount is zero are dropped entirely: they are
// section headers, mis-parsed rows, or zero-value noise, not billable lines.
// The returned slice is never nil so bill_items marshals as [].
func NormalizeItems(raw []RawLineItem) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(raw))
	for _, it := range raw {
		amount := NormalizeNumber(it.ItemAmount)
		if amount == 0 {
			continue
		}
		items = append(items, domain.LineItem{
			ItemName:     CleanItemName(it.ItemName),
			ItemAmount:   Round2(amount),
			ItemRate:     Round2(NormalizeNumber(it.ItemRate)),
			ItemQuantity: Round2(NormalizeNumber(it.ItemQuantity)),
		})
	}
	return items
}

// NormalizePageType maps the model's page_type string onto the domain enum.
// An empty value falls back to the default; unrecognized values pass through
// verbatim rather than being second-guessed.
func NormalizePageType(s string) domain.PageType {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.DefaultPageType
	}
	return domain.PageType(s)
}
