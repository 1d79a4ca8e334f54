package port

import (
	"context"

	"billscan/internal/domain"
)

// GenerateInput carries one page image and the extraction instructions for a
// single model call.
type GenerateInput struct {
	Prompt     string
	PageHint   string
	ImageBytes []byte
	MimeType   string
}

// GenerateOutput contains the model's raw text response and its token-usage
// counters. Text is untrusted free-form output; callers must run it through
// the repair parser before interpreting it as JSON.
type GenerateOutput struct {
	Text  string
	Usage domain.TokenUsage
}

// PageModelClient abstracts the multimodal extraction model invoked once per
// page.
type PageModelClient interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
}
