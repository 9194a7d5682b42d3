// Package amount parses and formats Brazilian monetary values
// ("R$ 1.234,56") and computes net amounts.
package amount

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	reCurrency   = regexp.MustCompile(`[R$\s]`)
	reNonNumeric = regexp.MustCompile(`[^\d,.]`)
)

// Parse converts a monetary value of any shape into a finite float. It never
// fails: empty, unparseable and non-finite inputs yield 0.
func Parse(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return finite(t, v)
	case float32:
		return finite(float64(t), v)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		return ParseString(t.String())
	case string:
		return ParseString(t)
	default:
		return ParseString(fmt.Sprint(t))
	}
}

// ParseString parses a textual amount. Currency markers and whitespace are
// dropped, commas become periods, and when more than one period remains all
// but the last are treated as thousands separators.
func ParseString(s string) float64 {
	if s == "" {
		return 0
	}

	cleaned := reCurrency.ReplaceAllString(strings.TrimSpace(s), "")
	cleaned = reNonNumeric.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		zap.L().Debug("amount: empty after cleanup", zap.String("value", s))
		return 0
	}

	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if strings.Count(cleaned, ".") > 1 {
		last := strings.LastIndex(cleaned, ".")
		cleaned = strings.ReplaceAll(cleaned[:last], ".", "") + cleaned[last:]
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		zap.L().Warn("amount: unparseable value", zap.String("value", s), zap.Error(err))
		return 0
	}
	return finite(f, s)
}

func finite(f float64, orig any) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		zap.L().Warn("amount: non-finite value", zap.Any("value", orig))
		return 0
	}
	return f
}

// Net returns total minus withheld, rounded to two decimal places.
func Net(total, withheld float64) float64 {
	return decimal.NewFromFloat(total).
		Sub(decimal.NewFromFloat(withheld)).
		Round(2).
		InexactFloat64()
}

// Format renders a value as "1.234,56" with a "- " prefix for negatives.
// Strings must hold a plain float literal; anything unparseable or
// non-finite renders as "".
func Format(v any) string {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return ""
		}
		f = parsed
	default:
		return ""
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}

	d := decimal.NewFromFloat(f)
	fixed := d.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	out := groupThousands(intPart) + "," + fracPart
	if f < 0 {
		return "- " + out
	}
	return out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	head := len(digits) % 3
	if head > 0 {
		sb.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte('.')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}
