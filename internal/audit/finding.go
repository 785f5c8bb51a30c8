// Package audit repairs and checks extracted records: regex backfill of item
// codes, the unidentified-consumer rule, sum-vs-total reconciliation, the
// data-quality checklist and manual total corrections.
//
// Nothing here discards a record. Findings and warnings travel next to it.
package audit

import "github.com/joseph-ayodele/fiscal-extract/constants"

// Finding is one ordered audit observation. It is not an error.
type Finding struct {
	Severity constants.Severity `json:"severity"`
	Message  string             `json:"message"`
}

func info(msg string) Finding    { return Finding{Severity: constants.SeverityInfo, Message: msg} }
func success(msg string) Finding { return Finding{Severity: constants.SeveritySuccess, Message: msg} }
func failure(msg string) Finding { return Finding{Severity: constants.SeverityError, Message: msg} }

// HasErrors reports whether any finding has error severity.
func HasErrors(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == constants.SeverityError {
			return true
		}
	}
	return false
}

const (
	msgEnrichStart    = "Iniciando enriquecimento heurístico para códigos (Cod. Operação, Cod. Tributário)."
	msgReconcileStart = "Iniciando pós-validação de consistência de totais."
	msgSentinel       = "Receptor não identificado em documento de consumidor: preenchido com '" + constants.UnidentifiedConsumer + "'."
)
