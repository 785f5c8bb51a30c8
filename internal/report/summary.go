// Package report computes the document summary shown after an extraction:
// tax totals, value per operation code, top items, cost composition and
// whether manual tax correction should be offered.
package report

import (
	"math"
	"sort"
	"strings"

	"github.com/joseph-ayodele/fiscal-extract/constants"
	"github.com/joseph-ayodele/fiscal-extract/internal/numeric"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

const (
	NoOperationCode = "SEM COD. OP."
	TopItemsLimit   = 10

	TaxSourceItems    = "Soma dos Itens"
	TaxSourceDocument = "Total do Documento"

	ComponentProducts    = "Valor dos Produtos/Serviços"
	ComponentHighlighted = "Valores Secundários (Principal, Adicional, Contr. A/B)"
	ComponentApproxTaxes = "Taxas (Valor Aproximado do Documento)"
	ComponentOther       = "Frete/Seguro/Outras Despesas"

	// CompositionDivergence is how far the component sum may drift from the
	// document total before the composition is flagged.
	CompositionDivergence = 1.0
)

type GroupValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

type Component struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Composition struct {
	Components []Component `json:"components"`
	Sum        float64     `json:"sum"`
	Total      float64     `json:"total"`
	Note       string      `json:"note,omitempty"`
}

type Summary struct {
	ItemCount         int          `json:"item_count"`
	ItemsSum          float64      `json:"items_sum"`
	ApproxTaxes       float64      `json:"approx_taxes"`
	ApproxTaxesSource string       `json:"approx_taxes_source,omitempty"`
	ByOperationCode   []GroupValue `json:"by_operation_code"`
	TopItems          []GroupValue `json:"top_items"`
	Composition       Composition  `json:"composition"`
	ManualCorrection  bool         `json:"manual_correction"`
}

// Summarize builds the summary of rec extracted through source.
func Summarize(rec *schema.DocumentRecord, source constants.Source) Summary {
	if rec == nil {
		rec = schema.NewDocumentRecord()
	}
	s := Summary{
		ItemCount:       len(rec.LineItems),
		ItemsSum:        rec.ItemsTotal(),
		ByOperationCode: ByOperationCode(rec),
		TopItems:        TopItems(rec, TopItemsLimit),
		Composition:     CostComposition(rec),
	}
	s.ApproxTaxes, s.ApproxTaxesSource = ApproxTaxes(rec)
	s.ManualCorrection = NeedsManualCorrection(rec, source)
	return s
}

// ApproxTaxes prefers the sum of per-item approximate taxes and falls back
// to the document-level figure.
func ApproxTaxes(rec *schema.DocumentRecord) (float64, string) {
	vals := make([]float64, 0, len(rec.LineItems))
	for _, it := range rec.LineItems {
		vals = append(vals, it.ApproxTaxValue)
	}
	if sum := numeric.Sum(vals...); sum > 0 {
		return sum, TaxSourceItems
	}
	if rec.Totals.ApproxTaxes > 0 {
		return rec.Totals.ApproxTaxes, TaxSourceDocument
	}
	return 0, ""
}

// ByOperationCode sums line totals per operation code, ordered by code.
// Blank codes are grouped under NoOperationCode.
func ByOperationCode(rec *schema.DocumentRecord) []GroupValue {
	return groupSum(rec, func(it schema.LineItem) string {
		if code := strings.TrimSpace(it.OperationCode); code != "" {
			return code
		}
		return NoOperationCode
	}, func(a, b GroupValue) bool { return a.Key < b.Key })
}

// TopItems sums line totals per description and returns the n largest.
func TopItems(rec *schema.DocumentRecord, n int) []GroupValue {
	out := groupSum(rec, func(it schema.LineItem) string { return it.Description },
		func(a, b GroupValue) bool {
			if a.Value != b.Value {
				return a.Value > b.Value
			}
			return a.Key < b.Key
		})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func groupSum(rec *schema.DocumentRecord, key func(schema.LineItem) string, less func(a, b GroupValue) bool) []GroupValue {
	sums := map[string][]float64{}
	for _, it := range rec.LineItems {
		k := key(it)
		sums[k] = append(sums[k], it.LineTotal)
	}
	out := make([]GroupValue, 0, len(sums))
	for k, v := range sums {
		out = append(out, GroupValue{Key: k, Value: numeric.Sum(v...)})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// CostComposition splits the document total into products, taxes and other
// expenses. Highlighted taxes are used unless they are all zero and an
// approximate tax figure exists. Components at or below one cent are left
// out.
func CostComposition(rec *schema.DocumentRecord) Composition {
	t := rec.Totals
	taxLabel, taxValue := ComponentHighlighted, numeric.Sum(t.PrincipalTax, t.AdditionalTax, t.ContributionA, t.ContributionB)
	if taxValue < 0.01 && t.ApproxTaxes > 0.01 {
		taxLabel, taxValue = ComponentApproxTaxes, t.ApproxTaxes
	}

	c := Composition{Total: rec.TotalValue}
	for _, comp := range []Component{
		{ComponentProducts, rec.ItemsTotal()},
		{taxLabel, taxValue},
		{ComponentOther, t.OtherExpenses},
	} {
		if math.Round(comp.Value*100)/100 > 0.01 {
			c.Components = append(c.Components, comp)
		}
	}
	vals := make([]float64, 0, len(c.Components))
	for _, comp := range c.Components {
		vals = append(vals, comp.Value)
	}
	c.Sum = numeric.Sum(vals...)
	if math.Abs(c.Sum-c.Total) > CompositionDivergence {
		c.Note = "Aviso: Soma dos Componentes (" + numeric.FormatBRL(c.Sum) + ") difere do Total (" + numeric.FormatBRL(c.Total) + ")"
	}
	return c
}

// NeedsManualCorrection reports whether the user should be offered to type
// the tax totals: the LLM path left the principal or additional total at zero.
func NeedsManualCorrection(rec *schema.DocumentRecord, source constants.Source) bool {
	if source != constants.SourceLLMOCR {
		return false
	}
	return rec.Totals.PrincipalTax <= 0 || rec.Totals.AdditionalTax <= 0
}
