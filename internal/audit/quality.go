package audit

import "github.com/joseph-ayodele/fiscal-extract/internal/schema"

const (
	WarnSenderIncomplete    = "Dados completos do Remetente estão faltando ou ilegíveis."
	WarnRecipientIncomplete = "Dados completos do Receptor estão faltando ou ilegíveis."
	WarnZeroTotal           = "O 'Valor Total do Documento' está zerado (R$ 0,00)."
	WarnNoItems             = "A lista de Itens/Produtos está vazia."
)

// CheckQuality returns every applicable data-quality warning. Rules are
// independent and never short-circuit.
func CheckQuality(rec *schema.DocumentRecord) []string {
	var warnings []string
	if rec.Sender.TaxID == "" || rec.Sender.FullName == "" {
		warnings = append(warnings, WarnSenderIncomplete)
	}
	if rec.Recipient.TaxID == "" || rec.Recipient.FullName == "" {
		warnings = append(warnings, WarnRecipientIncomplete)
	}
	if rec.TotalValue <= 0 {
		warnings = append(warnings, WarnZeroTotal)
	}
	if len(rec.LineItems) == 0 {
		warnings = append(warnings, WarnNoItems)
	}
	return warnings
}
