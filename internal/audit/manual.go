package audit

import (
	"strings"

	"github.com/joseph-ayodele/fiscal-extract/internal/numeric"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

// ManualTotals carries user-typed amounts ("1.234,56", "R$ 12,00", "12.5").
// Empty fields keep the current value.
type ManualTotals struct {
	PrincipalTax  string
	AdditionalTax string
	ContributionA string
	ContributionB string
}

// ApplyManualTotals overwrites the tax totals from user input. Every field is
// parsed before anything is written, so on error the record is unchanged.
func ApplyManualTotals(rec *schema.DocumentRecord, m ManualTotals) error {
	next := rec.Totals
	fields := []struct {
		path string
		in   string
		dst  *float64
	}{
		{"totais_valores.valor_total_principal", m.PrincipalTax, &next.PrincipalTax},
		{"totais_valores.valor_total_adicional", m.AdditionalTax, &next.AdditionalTax},
		{"totais_valores.valor_total_contribuicao_a", m.ContributionA, &next.ContributionA},
		{"totais_valores.valor_total_contribuicao_b", m.ContributionB, &next.ContributionB},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.in) == "" {
			continue
		}
		v, ok := numeric.ParseBRL(f.in)
		if !ok {
			return &schema.ValidationError{Path: f.path, Message: "not a valid amount: " + f.in}
		}
		if v < 0 {
			return &schema.ValidationError{Path: f.path, Message: "must be >= 0"}
		}
		*f.dst = v
	}
	rec.Totals = next
	return nil
}
