package parser_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billscan/internal/domain"
	"billscan/internal/parser"
)

func TestCleanItemName(t *testing.T) {
	assert.Equal(t, "Paracetamol 500mg", parser.CleanItemName("Paracetamol\n500mg"))
	assert.Equal(t, "CBC Panel", parser.CleanItemName("  CBC Panel  "))
	assert.Equal(t, "Room Rent Deluxe", parser.CleanItemName("Room Rent\r\n   Deluxe"))
	assert.Equal(t, "X-Ray Chest", parser.CleanItemName("X-Ray \n Chest"))
	assert.Equal(t, "", parser.CleanItemName("   "))
}

func TestNormalizeItems_FullNormalization(t *testing.T) {
	raw := []parser.RawLineItem{
		{
			ItemName:     "Paracetamol\n500mg",
			ItemAmount:   "1,200.5",
			ItemRate:     "600",
			ItemQuantity: "2",
		},
	}

	items := parser.NormalizeItems(raw)
	require.Len(t, items, 1)

	assert.Equal(t, domain.LineItem{
		ItemName:     "Paracetamol 500mg",
		ItemAmount:   1200.5,
		ItemRate:     600,
		ItemQuantity: 2,
	}, items[0])
}

func TestNormalizeItems_DropsZeroAmountRows(t *testing.T) {
	raw := []parser.RawLineItem{
		{ItemName: "PHARMACY CHARGES", ItemAmount: 0, ItemRate: 0, ItemQuantity: 0},
		{ItemName: "Paracetamol", ItemAmount: 25.5, ItemRate: 25.5, ItemQuantity: 1},
		{ItemName: "Section Header", ItemAmount: "n/a", ItemRate: nil, ItemQuantity: nil},
	}

	items := parser.NormalizeItems(raw)
	require.Len(t, items, 1)
	assert.Equal(t, "Paracetamol", items[0].ItemName)
}

func TestNormalizeItems_PreservesOrder(t *testing.T) {
	raw := []parser.RawLineItem{
		{ItemName: "First", ItemAmount: 1},
		{ItemName: "Second", ItemAmount: 2},
		{ItemName: "Third", ItemAmount: 3},
	}

	items := parser.NormalizeItems(raw)
	require.Len(t, items, 3)
	assert.Equal(t, "First", items[0].ItemName)
	assert.Equal(t, "Second", items[1].ItemName)
	assert.Equal(t, "Third", items[2].ItemName)
}

func TestNormalizeItems_NegativeAmountKept(t *testing.T) {
	// Accounting-style negatives (refunds, discounts shown as line rows) are
	// billable lines and must survive the zero-amount drop
	raw := []parser.RawLineItem{
		{ItemName: "Refund", ItemAmount: "(123)", ItemRate: nil, ItemQuantity: 1},
	}

	items := parser.NormalizeItems(raw)
	require.Len(t, items, 1)
	assert.Equal(t, -123.0, items[0].ItemAmount)
}

func TestNormalizeItems_EmptyInputMarshalsAsEmptyArray(t *testing.T) {
	items := parser.NormalizeItems(nil)
	require.NotNil(t, items)

	page := domain.Page{PageNo: "1", PageType: domain.PageTypeBillDetail, BillItems: items}
	encoded, err := json.Marshal(page)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"bill_items":[]`)
}

func TestNormalizePageType(t *testing.T) {
	assert.Equal(t, domain.PageTypeBillDetail, parser.NormalizePageType(""))
	assert.Equal(t, domain.PageTypeBillDetail, parser.NormalizePageType("   "))
	assert.Equal(t, domain.PageTypeFinalBill, parser.NormalizePageType("Final Bill"))
	assert.Equal(t, domain.PageTypePharmacy, parser.NormalizePageType("Pharmacy"))
	// Unrecognized values pass through verbatim
	assert.Equal(t, domain.PageType("Discharge Summary"), parser.NormalizePageType("Discharge Summary"))
}
