// Package numeric converts the heterogeneous number representations found in
// fiscal documents (XML text, LLM JSON, OCR strings in pt-BR locale) into
// float64 values, and formats them back for Brazilian readers.
package numeric

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// brGrouped matches pt-BR amounts with "." thousands groups before a single
// "," decimal separator: "1.234,56", "-12.345.678,9".
var brGrouped = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+,\d+$`)

// ToFloat converts v to a float64 and never fails: nil, empty, malformed and
// non-finite inputs all degrade to 0.
//
// Strings are trimmed and a "," decimal separator is accepted. When a string
// carries both "." and "," only the pt-BR grouped form ("1.234,56") is read;
// anything else ("1,234.56", "1.23,4") is malformed and yields 0.
func ToFloat(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(t)
	case float32:
		return finite(float64(t))
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case string:
		return parseString(t)
	case *string:
		if t == nil {
			return 0
		}
		return parseString(*t)
	case *float64:
		if t == nil {
			return 0
		}
		return finite(*t)
	default:
		return 0
	}
}

// ParseXMLFloat is the variant used while mapping XML text nodes. It trims the
// value and treats "," as the decimal separator. Missing input ("") yields 0,
// exactly like ToFloat(nil).
func ParseXMLFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

// ParseBRL reads a pt-BR formatted amount ("R$ 1.234,56", "1234,56", "12.5").
// Unlike ParseXMLFloat it strips thousands separators. Invalid input yields
// ok=false so callers that must reject bad input (manual corrections) can.
func ParseBRL(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "R$"))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			if !brGrouped.MatchString(s) {
				return 0, false
			}
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseString(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		f, _ := ParseBRL(s)
		return f
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
