package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

// RawExtraction is the schema the model is instructed to emit, decoded at the
// parse boundary before any normalization. Numeric fields are typed any
// because the model freely mixes numbers, locale-formatted strings, and nulls.
type RawExtraction struct {
	PagewiseLineItems []RawPage `json:"pagewise_line_items"`
}

// RawPage is one page as the model reported it. PageNo is never trusted; the
// orchestrator overwrites it with the caller-supplied index.
type RawPage struct {
	PageNo    any           `json:"page_no"`
	PageType  string        `json:"page_type"`
	BillItems []RawLineItem `json:"bill_items"`
}

// RawLineItem is one unnormalized billable row.
type RawLineItem struct {
	ItemName     string `json:"item_name"`
	ItemAmount   any    `json:"item_amount"`
	ItemRate     any    `json:"item_rate"`
	ItemQuantity any    `json:"item_quantity"`
}

var (
	// Leading bare language tag on its own, e.g. "json\n{...}".
	languageTagRe = regexp.MustCompile(`(?i)^json`)
	// Trailing comma immediately before a closing brace or bracket, a common
	// model JSON-generation defect.
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// stripFences removes markdown code-fence markers and a leading language tag
// from raw model output.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	s = languageTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// RepairJSON recovers a well-formed JSON object from raw model output. It
// first attempts a direct parse of the fence-stripped text; on failure it
// slices between the first '{' and last '}' (discarding surrounding prose),
// drops embedded NUL characters, strips trailing commas, and re-parses.
// When both attempts fail it returns a *MalformedResponseError carrying the
// original raw text.
func RepairJSON(raw string) ([]byte, error) {
	cleaned := stripFences(raw)

	var probe map[string]any
	directErr := json.Unmarshal([]byte(cleaned), &probe)
	if directErr == nil {
		return []byte(cleaned), nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, &MalformedResponseError{Raw: raw, Err: directErr}
	}

	sliced := cleaned[start : end+1]
	sliced = strings.ReplaceAll(sliced, "\x00", "")
	sliced = trailingCommaRe.ReplaceAllString(sliced, "$1")

	if err := json.Unmarshal([]byte(sliced), &probe); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Err: err}
	}
	return []byte(sliced), nil
}

// DecodeExtraction repairs raw model output and decodes it into the typed
// extraction schema.
func DecodeExtraction(raw string) (*RawExtraction, error) {
	repaired, err := RepairJSON(raw)
	if err != nil {
		return nil, err
	}

	var out RawExtraction
	if err := json.Unmarshal(repaired, &out); err != nil {
		return nil, &MalformedResponseError{Raw: raw, Err: err}
	}
	return &out, nil
}
