package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"billscan/internal/domain"
	"billscan/internal/export"
	"billscan/internal/service"
)

// ExtractHandler handles bill extraction endpoints.
type ExtractHandler struct {
	sources   service.SourceService
	extractor service.ExtractService
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(sources service.SourceService, extractor service.ExtractService) *ExtractHandler {
	return &ExtractHandler{sources: sources, extractor: extractor}
}

// extractRequest is the JSON body alternative to a multipart upload.
type extractRequest struct {
	Document string `json:"document"`
}

// Extract handles POST /api/v1/extract
// @Summary Extract bill line items
// @Description Extract per-page line items from a bill (PDF, JPG, or PNG) supplied as a multipart upload, a URL, or base64
// @Tags extract
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param file formData file false "Document to extract (PDF, JPG, or PNG)"
// @Param document body extractRequest false "Document URL or base64 payload"
// @Success 200 {object} ExtractionResponse "Extraction result"
// @Failure 400 {object} ExtractionResponse "Missing document or unsupported type"
// @Failure 413 {object} ExtractionResponse "Document too large"
// @Failure 500 {object} ExtractionResponse "Extraction failed"
// @Router /extract [post]
func (h *ExtractHandler) Extract(c *gin.Context) {
	doc, err := h.resolveDocument(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer func() { _ = doc.Cleanup() }()

	data, usage, err := h.extractor.Extract(c.Request.Context(), doc)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondData(c, data, usage)
}

// Export handles POST /api/v1/extract/export
// @Summary Export extracted line items
// @Description Run extraction and stream the result as a spreadsheet
// @Tags extract
// @Accept multipart/form-data
// @Accept json
// @Produce application/octet-stream
// @Param format query string false "Export format: xlsx or csv" default(xlsx)
// @Success 200 {file} binary "Spreadsheet with one row per line item"
// @Failure 400 {object} ExtractionResponse "Missing document or unsupported format"
// @Router /extract/export [post]
func (h *ExtractHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")
	if format != "xlsx" && format != "csv" {
		RespondFailure(c, http.StatusBadRequest, errUnsupportedFormat(format))
		return
	}

	doc, err := h.resolveDocument(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer func() { _ = doc.Cleanup() }()

	data, _, err := h.extractor.Extract(c.Request.Context(), doc)
	if err != nil {
		HandleError(c, err)
		return
	}

	switch format {
	case "csv":
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="bill_items.csv"`)
		c.Status(http.StatusOK)
		_, _ = c.Writer.Write(export.BOM)
		w := export.NewWriter(c.Writer)
		if err := w.WriteHeader(); err == nil {
			_ = w.WritePages(data.PagewiseLineItems)
		}
		_ = w.Flush()
	case "xlsx":
		f, err := export.BuildWorkbook(data)
		if err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="bill_items.xlsx"`)
		c.Status(http.StatusOK)
		_ = f.Write(c.Writer)
	}
}

// resolveDocument materializes the request's document from, in order of
// precedence: a multipart "file" field, a JSON body with a URL, or a JSON
// body with a base64 payload.
func (h *ExtractHandler) resolveDocument(c *gin.Context) (*domain.LocalDocument, error) {
	ctx := c.Request.Context()

	if file, header, err := c.Request.FormFile("file"); err == nil {
		defer func() { _ = file.Close() }()
		return h.sources.FromUpload(ctx, file, header)
	}

	var body extractRequest
	if err := c.ShouldBindJSON(&body); err != nil || body.Document == "" {
		return nil, domain.ErrMissingDocument
	}

	if strings.HasPrefix(body.Document, "http://") || strings.HasPrefix(body.Document, "https://") {
		return h.sources.FromURL(ctx, body.Document)
	}
	return h.sources.FromBase64(ctx, body.Document)
}

type formatError string

func errUnsupportedFormat(format string) error {
	return formatError(format)
}

func (e formatError) Error() string {
	return "unsupported export format: " + string(e) + " (allowed: xlsx, csv)"
}
