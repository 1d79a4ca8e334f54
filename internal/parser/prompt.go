package parser

// BuildBillExtractionPrompt returns the extraction prompt sent with every
// page image. The prompt pins down item order, the page_type whitelist, and
// the output schema; everything else about model behavior is best-effort and
// absorbed by the repair/normalization pipeline.
func BuildBillExtractionPrompt() string {
	return `You are an expert in invoice understanding. Extract every billable line item from the provided bill page image.

CRITICAL RULE ABOUT ORDER:
- Preserve the EXACT order of all line items as they appear in the document.
- Do NOT sort, regroup, reorder, merge or rearrange anything.
- The first visible item on the page must be the first item in bill_items, the last visible item the last.
- If items are arranged in columns, read column 1 top-to-bottom, then column 2 top-to-bottom, and so on.

Allowed page_type values ONLY:
- "Bill Detail"
- "Final Bill"
- "Pharmacy"
Pick whichever best matches the page content.

Your output MUST strictly follow this EXACT JSON schema:

{
  "pagewise_line_items": [
    {
      "page_no": "string(only number)",
      "page_type": "Bill Detail | Final Bill | Pharmacy",
      "bill_items": [
        {
          "item_name": "string",
          "item_amount": float,
          "item_rate": float,
          "item_quantity": float
        }
      ]
    }
  ]
}

MULTI-LINE NAMES:
- Item names often wrap across physical lines (descriptions, batch numbers, doctor qualifications).
- Merge all consecutive text belonging to one item into a single item_name. Never create a new item because text wrapped.

RATE VS TOTAL AMOUNT:
- If a row shows both a per-unit amount and a total: item_rate = the per-unit amount, item_amount = the total.
- If only a per-unit amount is shown and quantity > 1, treat it as item_rate, not item_amount.
- If two numeric values appear for an item (excluding quantity), the smaller MUST be item_rate and the larger item_amount.
- Never assign the per-unit amount to item_amount.

COMPLETENESS:
- Scan the ENTIRE page top-to-bottom and left-to-right; extract every row that has an item name plus a quantity, rate, or amount.
- Do not stop after the first column, box, or section.
- If an amount is handwritten slightly above/below its item, or split like "266 94" / "266-94", read it as the decimal 266.94. Never round decimals.

NEVER treat as bill items:
- Column headings ("ITEM NAME", "RATE", "AMOUNT", "QTY") or section titles ("CONSULTATION", "DRUGS").
- Discounts, concessions, round-off adjustments, GST/CGST/SGST tax lines.
- Totals, subtotals, net amounts, balances, deposits, advances, refunds.

STRICT RULES:
- Extract every real item exactly once; do not add, infer, or group items.
- Return ONLY valid JSON.`
}
