package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"billscan/internal/domain"
	"billscan/internal/parser"
)

// ExtractionResponse is the envelope for all extraction API responses.
// Exactly one of the success (Data/TokenUsage) or failure (Error/Trace)
// shapes is populated.
type ExtractionResponse struct {
	IsSuccess  bool                   `json:"is_success"`
	Data       *domain.ExtractionData `json:"data,omitempty"`
	TokenUsage *domain.TokenUsage     `json:"token_usage,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Trace      string                 `json:"trace,omitempty"`
}

// RespondData sends a 200 success envelope with extraction data and token usage.
func RespondData(c *gin.Context, data *domain.ExtractionData, usage domain.TokenUsage) {
	c.JSON(http.StatusOK, ExtractionResponse{
		IsSuccess:  true,
		Data:       data,
		TokenUsage: &usage,
	})
}

// RespondFailure sends a failure envelope with the given status code.
// No partial data is ever attached to a failure.
func RespondFailure(c *gin.Context, status int, err error) {
	c.JSON(status, ExtractionResponse{
		IsSuccess: false,
		Error:     err.Error(),
		Trace:     traceFor(err),
	})
}

// MapError translates pipeline errors to HTTP status codes.
func MapError(err error) int {
	var rlErr *parser.RateLimitError
	switch {
	case errors.Is(err, domain.ErrMissingDocument),
		errors.Is(err, domain.ErrUnsupportedFileType),
		errors.Is(err, domain.ErrInvalidBase64),
		errors.Is(err, domain.ErrDownloadFailed),
		errors.Is(err, domain.ErrEmptyDocument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &rlErr):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// HandleError maps a pipeline error and sends the failure envelope.
func HandleError(c *gin.Context, err error) {
	status := MapError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%v] extraction error: %v", requestID, err)
	}
	RespondFailure(c, status, err)
}

// traceFor surfaces the unrepairable raw model text as the diagnostic trace
// when the failure came from the JSON repair parser.
func traceFor(err error) string {
	var malformed *parser.MalformedResponseError
	if errors.As(err, &malformed) {
		return "raw model response: " + malformed.Excerpt()
	}
	return ""
}
