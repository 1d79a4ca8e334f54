package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"billscan/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Page No",
	"Page Type",
	"Item Name",
	"Item Amount",
	"Item Rate",
	"Item Quantity",
}

// Writer wraps csv.Writer for exporting extraction results as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WritePages converts extracted pages to CSV rows and writes them, one row
// per line item, in document order.
func (w *Writer) WritePages(pages []domain.Page) error {
	for _, page := range pages {
		for _, item := range page.BillItems {
			row := []string{
				page.PageNo,
				string(page.PageType),
				item.ItemName,
				formatAmount(item.ItemAmount),
				formatAmount(item.ItemRate),
				formatAmount(item.ItemQuantity),
			}
			if err := w.csv.Write(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
