package numeric

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Sum adds values in order using decimal arithmetic so cent-level comparisons
// are not disturbed by binary float error.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(finite(v)))
	}
	f, _ := total.Float64()
	return f
}

// WithinTolerance reports whether |a-b| <= tol, compared in decimal.
func WithinTolerance(a, b, tol float64) bool {
	diff := decimal.NewFromFloat(finite(a)).Sub(decimal.NewFromFloat(finite(b))).Abs()
	return diff.LessThanOrEqual(decimal.NewFromFloat(tol))
}

// FormatBRL renders v as Brazilian currency: "R$ 1.234,56". Zero renders as "R$ 0,00".
func FormatBRL(v float64) string {
	return "R$ " + groupThousands(decimal.NewFromFloat(finite(v)).StringFixed(2))
}

// FormatDecimalBR renders v with two decimals and a comma separator and no
// thousands grouping ("1234,56"), the shape regional spreadsheets import.
func FormatDecimalBR(v float64) string {
	return strings.Replace(decimal.NewFromFloat(finite(v)).StringFixed(2), ".", ",", 1)
}

// groupThousands turns "-1234567.89" into "-1.234.567,89".
func groupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(intPart[i : i+3])
	}
	out := sign + b.String()
	if frac != "" {
		out += "," + frac
	}
	return out
}
