package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billscan/internal/domain"
	"billscan/internal/parser"
	"billscan/internal/port"
	"billscan/internal/service"
	"billscan/mocks"
)

func writePageFile(t *testing.T, dir string, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("fake page image"), 0o600))
	return path
}

func pageHintMatcher(pageNo int) interface{} {
	hint := fmt.Sprintf("Extract items from page %d", pageNo)
	return mock.MatchedBy(func(input port.GenerateInput) bool {
		return input.PageHint == hint
	})
}

func modelOutput(text string, tokens int) *port.GenerateOutput {
	return &port.GenerateOutput{
		Text: text,
		Usage: domain.TokenUsage{
			TotalTokens:  tokens,
			InputTokens:  tokens - 10,
			OutputTokens: 10,
		},
	}
}

func TestExtract_MultiPageSuccess(t *testing.T) {
	dir := t.TempDir()
	doc := &domain.LocalDocument{Path: filepath.Join(dir, "doc.pdf"), FileType: domain.FileTypePDF}
	page1 := writePageFile(t, dir, "page1.png")
	page2 := writePageFile(t, dir, "page2.png")

	rasterizer := new(mocks.MockRasterizer)
	rasterizer.On("Split", mock.Anything, doc).Return([]string{page1, page2}, nil)

	// Page 1 arrives fenced, with a bogus page_no and a trailing comma; page 2
	// is clean JSON
	fenced := "```json\n" + `{"pagewise_line_items":[{"page_no":"99","page_type":"Final Bill","bill_items":[
		{"item_name":"Room Rent","item_amount":"5,000","item_rate":"2,500","item_quantity":2},
		{"item_name":"SECTION TOTAL","item_amount":0,"item_rate":0,"item_quantity":0},
	]}]}` + "\n```"
	clean := `{"pagewise_line_items":[{"page_no":1,"page_type":"","bill_items":[
		{"item_name":"Paracetamol\n500mg","item_amount":"₹1,200.5","item_rate":600,"item_quantity":2}
	]}]}`

	model := new(mocks.MockPageModelClient)
	model.On("Generate", mock.Anything, pageHintMatcher(1)).Return(modelOutput(fenced, 100), nil)
	model.On("Generate", mock.Anything, pageHintMatcher(2)).Return(modelOutput(clean, 60), nil)

	svc := service.NewExtractService(model, rasterizer)
	data, usage, err := svc.Extract(context.Background(), doc)

	require.NoError(t, err)
	require.NotNil(t, data)
	require.Len(t, data.PagewiseLineItems, 2)

	first := data.PagewiseLineItems[0]
	assert.Equal(t, "1", first.PageNo) // caller-side index wins over the model's "99"
	assert.Equal(t, domain.PageTypeFinalBill, first.PageType)
	require.Len(t, first.BillItems, 1) // zero-amount section row dropped
	assert.Equal(t, "Room Rent", first.BillItems[0].ItemName)
	assert.Equal(t, 5000.0, first.BillItems[0].ItemAmount)

	second := data.PagewiseLineItems[1]
	assert.Equal(t, "2", second.PageNo)
	assert.Equal(t, domain.PageTypeBillDetail, second.PageType) // empty page_type falls back
	require.Len(t, second.BillItems, 1)
	assert.Equal(t, "Paracetamol 500mg", second.BillItems[0].ItemName)
	assert.Equal(t, 1200.5, second.BillItems[0].ItemAmount)

	assert.Equal(t, 2, data.TotalItemCount)
	assert.Equal(t, 160, usage.TotalTokens)
	assert.Equal(t, 140, usage.InputTokens)
	assert.Equal(t, 20, usage.OutputTokens)

	// Intermediate page files are removed after extraction
	_, err = os.Stat(page1)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(page2)
	assert.True(t, os.IsNotExist(err))

	model.AssertExpectations(t)
	rasterizer.AssertExpectations(t)
}

func TestExtract_MalformedPageFailsWholeDocument(t *testing.T) {
	dir := t.TempDir()
	doc := &domain.LocalDocument{Path: filepath.Join(dir, "doc.pdf"), FileType: domain.FileTypePDF}
	page1 := writePageFile(t, dir, "page1.png")
	page2 := writePageFile(t, dir, "page2.png")

	rasterizer := new(mocks.MockRasterizer)
	rasterizer.On("Split", mock.Anything, doc).Return([]string{page1, page2}, nil)

	model := new(mocks.MockPageModelClient)
	model.On("Generate", mock.Anything, pageHintMatcher(1)).Return(modelOutput("I see no structured data here", 40), nil)

	svc := service.NewExtractService(model, rasterizer)
	data, usage, err := svc.Extract(context.Background(), doc)

	require.Error(t, err)
	assert.Nil(t, data)

	var extErr *parser.ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, 1, extErr.Page)

	var malformed *parser.MalformedResponseError
	assert.True(t, errors.As(err, &malformed))

	// Tokens already spent are still reported on failure
	assert.Equal(t, 40, usage.TotalTokens)

	// Page 2 never reached
	model.AssertNumberOfCalls(t, "Generate", 1)
}

func TestExtract_ModelErrorWrappedWithPage(t *testing.T) {
	dir := t.TempDir()
	doc := &domain.LocalDocument{Path: filepath.Join(dir, "doc.jpg"), FileType: domain.FileTypeJPG}
	page1 := writePageFile(t, dir, "page1.png")

	rasterizer := new(mocks.MockRasterizer)
	rasterizer.On("Split", mock.Anything, doc).Return([]string{page1}, nil)

	model := new(mocks.MockPageModelClient)
	model.On("Generate", mock.Anything, mock.Anything).Return(nil, errors.New("upstream 500"))

	svc := service.NewExtractService(model, rasterizer)
	_, _, err := svc.Extract(context.Background(), doc)

	require.Error(t, err)
	var extErr *parser.ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, 1, extErr.Page)
	assert.Contains(t, err.Error(), "upstream 500")
}

func TestExtract_MissingPagewiseArrayFails(t *testing.T) {
	dir := t.TempDir()
	doc := &domain.LocalDocument{Path: filepath.Join(dir, "doc.png"), FileType: domain.FileTypePNG}
	page1 := writePageFile(t, dir, "page1.png")

	rasterizer := new(mocks.MockRasterizer)
	rasterizer.On("Split", mock.Anything, doc).Return([]string{page1}, nil)

	model := new(mocks.MockPageModelClient)
	model.On("Generate", mock.Anything, mock.Anything).Return(modelOutput(`{"something_else": []}`, 20), nil)

	svc := service.NewExtractService(model, rasterizer)
	_, _, err := svc.Extract(context.Background(), doc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "pagewise_line_items")
}

func TestExtract_RasterizerErrorPropagates(t *testing.T) {
	doc := &domain.LocalDocument{Path: "/tmp/doc.pdf", FileType: domain.FileTypePDF}

	rasterizer := new(mocks.MockRasterizer)
	rasterizer.On("Split", mock.Anything, doc).Return(nil, errors.New("corrupt PDF"))

	model := new(mocks.MockPageModelClient)

	svc := service.NewExtractService(model, rasterizer)
	data, _, err := svc.Extract(context.Background(), doc)

	require.Error(t, err)
	assert.Nil(t, data)
	assert.Contains(t, err.Error(), "splitting document")
	model.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestExtract_NoPagesIsEmptyDocument(t *testing.T) {
	doc := &domain.LocalDocument{Path: "/tmp/doc.pdf", FileType: domain.FileTypePDF}

	rasterizer := new(mocks.MockRasterizer)
	rasterizer.On("Split", mock.Anything, doc).Return([]string{}, nil)

	svc := service.NewExtractService(new(mocks.MockPageModelClient), rasterizer)
	_, _, err := svc.Extract(context.Background(), doc)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyDocument))
}
