package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"billscan/internal/domain"
)

const sheetName = "Line Items"

// BuildWorkbook renders an extraction result as a single-sheet XLSX workbook,
// one row per line item in document order.
func BuildWorkbook(data *domain.ExtractionData) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, page := range data.PagewiseLineItems {
		for _, item := range page.BillItems {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, fmt.Errorf("cell name for row %d: %w", row, err)
			}
			values := []interface{}{
				page.PageNo,
				string(page.PageType),
				item.ItemName,
				item.ItemAmount,
				item.ItemRate,
				item.ItemQuantity,
			}
			if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}

	return f, nil
}
