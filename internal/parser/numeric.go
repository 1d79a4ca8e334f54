package parser

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// currencyReplacer strips currency symbols and thousands separators before
// numeric parsing.
var currencyReplacer = strings.NewReplacer(",", "", "₹", "", "$", "")

// NormalizeNumber converts a loosely formatted numeric value into a float64.
// It accepts nil, numbers, and strings carrying currency symbols, thousands
// separators, or parenthesized negatives. It is a total function: any value
// it cannot parse resolves to 0 rather than an error, so one malformed number
// never aborts a page's extraction.
func NormalizeNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		return parseNumericString(n)
	default:
		return parseNumericString(fmt.Sprint(v))
	}
}

func parseNumericString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = currencyReplacer.Replace(s)
	// Accounting-style negatives: (123.45) means -123.45
	s = strings.ReplaceAll(s, "(", "-")
	s = strings.ReplaceAll(s, ")", "")
	s = strings.TrimSpace(s)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// Round2 rounds a monetary value to two decimal places, half away from zero.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
