package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"billscan/internal/domain"
	"billscan/internal/handler"
	"billscan/internal/parser"
	"billscan/internal/router"
	"billscan/mocks"
)

func setupExtractRouter(t *testing.T, sources *mocks.MockSourceService, extractor *mocks.MockExtractService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	extractH := handler.NewExtractHandler(sources, extractor)
	healthH := handler.NewHealthHandler(testModelConfig())
	return router.Setup(extractH, healthH, nil)
}

func multipartBody(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func sampleExtraction() *domain.ExtractionData {
	return &domain.ExtractionData{
		PagewiseLineItems: []domain.Page{
			{
				PageNo:   "1",
				PageType: domain.PageTypeFinalBill,
				BillItems: []domain.LineItem{
					{ItemName: "Room Rent", ItemAmount: 5000, ItemRate: 2500, ItemQuantity: 2},
				},
			},
		},
		TotalItemCount: 1,
	}
}

func TestExtract_MultipartSuccess(t *testing.T) {
	doc := &domain.LocalDocument{Path: "/tmp/ignore-missing.pdf", FileType: domain.FileTypePDF}
	usage := domain.TokenUsage{TotalTokens: 150, InputTokens: 100, OutputTokens: 50}

	sources := new(mocks.MockSourceService)
	sources.On("FromUpload", mock.Anything, mock.Anything, mock.Anything).Return(doc, nil)
	extractor := new(mocks.MockExtractService)
	extractor.On("Extract", mock.Anything, doc).Return(sampleExtraction(), usage, nil)

	r := setupExtractRouter(t, sources, extractor)

	body, contentType := multipartBody(t, "bill.pdf", []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["is_success"])

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total_item_count"])
	pages := data["pagewise_line_items"].([]interface{})
	require.Len(t, pages, 1)
	page := pages[0].(map[string]interface{})
	assert.Equal(t, "1", page["page_no"])
	assert.Equal(t, "Final Bill", page["page_type"])

	tokenUsage := resp["token_usage"].(map[string]interface{})
	assert.Equal(t, float64(150), tokenUsage["total_tokens"])

	_, hasError := resp["error"]
	assert.False(t, hasError)

	sources.AssertExpectations(t)
	extractor.AssertExpectations(t)
}

func TestExtract_JSONBodyWithURL(t *testing.T) {
	doc := &domain.LocalDocument{Path: "/tmp/ignore-missing.pdf", FileType: domain.FileTypePDF}

	sources := new(mocks.MockSourceService)
	sources.On("FromURL", mock.Anything, "https://example.com/bill.pdf").Return(doc, nil)
	extractor := new(mocks.MockExtractService)
	extractor.On("Extract", mock.Anything, doc).Return(sampleExtraction(), domain.TokenUsage{}, nil)

	r := setupExtractRouter(t, sources, extractor)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract",
		strings.NewReader(`{"document": "https://example.com/bill.pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	sources.AssertExpectations(t)
}

func TestExtract_JSONBodyWithBase64(t *testing.T) {
	doc := &domain.LocalDocument{Path: "/tmp/ignore-missing.png", FileType: domain.FileTypePNG}

	sources := new(mocks.MockSourceService)
	sources.On("FromBase64", mock.Anything, "aGVsbG8=").Return(doc, nil)
	extractor := new(mocks.MockExtractService)
	extractor.On("Extract", mock.Anything, doc).Return(sampleExtraction(), domain.TokenUsage{}, nil)

	r := setupExtractRouter(t, sources, extractor)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract",
		strings.NewReader(`{"document": "aGVsbG8="}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	sources.AssertExpectations(t)
}

func TestExtract_MissingDocument(t *testing.T) {
	r := setupExtractRouter(t, new(mocks.MockSourceService), new(mocks.MockExtractService))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["is_success"])
	assert.NotEmpty(t, resp["error"])

	_, hasData := resp["data"]
	assert.False(t, hasData)
}

func TestExtract_FileTooLarge(t *testing.T) {
	sources := new(mocks.MockSourceService)
	sources.On("FromBase64", mock.Anything, mock.Anything).Return(nil, domain.ErrFileTooLarge)

	r := setupExtractRouter(t, sources, new(mocks.MockExtractService))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract",
		strings.NewReader(`{"document": "aGVsbG8="}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestExtract_MalformedResponseIncludesTrace(t *testing.T) {
	doc := &domain.LocalDocument{Path: "/tmp/ignore-missing.pdf", FileType: domain.FileTypePDF}
	extractErr := &parser.ExtractionError{
		Page: 2,
		Err:  &parser.MalformedResponseError{Raw: "garbled model output", Err: errors.New("invalid character")},
	}

	sources := new(mocks.MockSourceService)
	sources.On("FromURL", mock.Anything, mock.Anything).Return(doc, nil)
	extractor := new(mocks.MockExtractService)
	extractor.On("Extract", mock.Anything, doc).Return(nil, domain.TokenUsage{TotalTokens: 30}, extractErr)

	r := setupExtractRouter(t, sources, extractor)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract",
		strings.NewReader(`{"document": "https://example.com/bill.pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["is_success"])
	assert.Contains(t, resp["error"], "page 2 extraction failed")
	assert.Contains(t, resp["trace"], "garbled model output")
}

func TestExtract_RateLimitedMapsTo429(t *testing.T) {
	doc := &domain.LocalDocument{Path: "/tmp/ignore-missing.pdf", FileType: domain.FileTypePDF}
	rlErr := parser.NewRateLimitError("gemini", errors.New("quota exceeded"), 30)

	sources := new(mocks.MockSourceService)
	sources.On("FromURL", mock.Anything, mock.Anything).Return(doc, nil)
	extractor := new(mocks.MockExtractService)
	extractor.On("Extract", mock.Anything, doc).Return(nil, domain.TokenUsage{}, &parser.ExtractionError{Page: 1, Err: rlErr})

	r := setupExtractRouter(t, sources, extractor)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract",
		strings.NewReader(`{"document": "https://example.com/bill.pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestExport_CSV(t *testing.T) {
	doc := &domain.LocalDocument{Path: "/tmp/ignore-missing.pdf", FileType: domain.FileTypePDF}

	sources := new(mocks.MockSourceService)
	sources.On("FromURL", mock.Anything, mock.Anything).Return(doc, nil)
	extractor := new(mocks.MockExtractService)
	extractor.On("Extract", mock.Anything, doc).Return(sampleExtraction(), domain.TokenUsage{}, nil)

	r := setupExtractRouter(t, sources, extractor)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/export?format=csv",
		strings.NewReader(`{"document": "https://example.com/bill.pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bill_items.csv")

	body := w.Body.String()
	assert.Contains(t, body, "Page No,Page Type,Item Name")
	assert.Contains(t, body, "1,Final Bill,Room Rent,5000.00,2500.00,2.00")
}

func TestExport_UnsupportedFormat(t *testing.T) {
	r := setupExtractRouter(t, new(mocks.MockSourceService), new(mocks.MockExtractService))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract/export?format=pdf",
		strings.NewReader(`{"document": "https://example.com/bill.pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["is_success"])
	assert.Contains(t, resp["error"], "unsupported export format")
}
