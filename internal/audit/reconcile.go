package audit

import (
	"fmt"

	"github.com/joseph-ayodele/fiscal-extract/constants"
	"github.com/joseph-ayodele/fiscal-extract/internal/numeric"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

// ItemsSum adds the line totals in document order.
func ItemsSum(rec *schema.DocumentRecord) float64 {
	values := make([]float64, 0, len(rec.LineItems))
	for _, it := range rec.LineItems {
		values = append(values, numeric.ToFloat(it.LineTotal))
	}
	return numeric.Sum(values...)
}

// Reconcile compares the sum of line totals with the declared document total
// using the absolute constants.ReconciliationTolerance.
func Reconcile(rec *schema.DocumentRecord) []Finding {
	sum := ItemsSum(rec)
	sumFmt := numeric.FormatBRL(sum)
	totalFmt := numeric.FormatBRL(rec.TotalValue)

	findings := []Finding{info(msgReconcileStart)}
	if numeric.WithinTolerance(sum, rec.TotalValue, constants.ReconciliationTolerance) {
		return append(findings, success(fmt.Sprintf(
			"Consistência Aprovada! O somatório dos itens é consistente com o Valor Total do Documento. Soma dos Itens: %s | Total Doc: %s",
			sumFmt, totalFmt)))
	}
	return append(findings, failure(fmt.Sprintf(
		"ALERTA DE INCONSISTÊNCIA! O somatório dos itens extraídos é diferente do Valor Total do Documento extraído. | Soma dos Itens: %s | Total Doc: %s | Recomendação: Verifique a qualidade do OCR ou edite os valores manualmente.",
		sumFmt, totalFmt)))
}
