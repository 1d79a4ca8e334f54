package domain

import "os"

// LineItem is one normalized billable row. Monetary fields are rounded to two
// decimal places and ItemAmount is always non-zero; zero-amount rows are
// dropped during normalization as headers or mis-parsed noise.
type LineItem struct {
	ItemName     string  `json:"item_name"`
	ItemAmount   float64 `json:"item_amount"`
	ItemRate     float64 `json:"item_rate"`
	ItemQuantity float64 `json:"item_quantity"`
}

// Page holds the normalized line items of one document page. BillItems keeps
// the document's visual top-to-bottom reading order and is never re-sorted.
type Page struct {
	PageNo    string     `json:"page_no"`
	PageType  PageType   `json:"page_type"`
	BillItems []LineItem `json:"bill_items"`
}

// ExtractionData is the success payload of one extraction request.
type ExtractionData struct {
	PagewiseLineItems []Page `json:"pagewise_line_items"`
	TotalItemCount    int    `json:"total_item_count"`
}

// TokenUsage accumulates model token counters across page calls.
type TokenUsage struct {
	TotalTokens  int `json:"total_tokens"`
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add accumulates another call's counters into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.TotalTokens += other.TotalTokens
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// LocalDocument is a request-scoped temporary file holding the document to
// extract. The creator owns Cleanup once the response is assembled.
type LocalDocument struct {
	Path     string
	FileType FileType
}

// ContentType returns the MIME content type for the document's file type.
func (d *LocalDocument) ContentType() string {
	return AllowedFileTypes[d.FileType]
}

// Cleanup removes the temporary file backing the document.
func (d *LocalDocument) Cleanup() error {
	if d.Path == "" {
		return nil
	}
	return os.Remove(d.Path)
}
