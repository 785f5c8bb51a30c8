package audit

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/fiscal-extract/constants"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

var consumerMarkers = []string{
	"CONSUMIDOR NAO INFORMADO",
	"CONSUMIDOR NAO IDENTIFICADO",
}

// ApplyConsumerSentinel fills the recipient with constants.UnidentifiedConsumer
// when the recipient is fully blank and the document is a consumer receipt:
// the OCR text carries an unidentified-consumer marker or the model is NFC-e
// or cupom. It reports whether the record changed.
func ApplyConsumerSentinel(rec *schema.DocumentRecord, rawText string) bool {
	if rec.Recipient.IsIdentified() {
		return false
	}
	if !mentionsUnidentifiedConsumer(rawText) && !constants.IsConsumerReceipt(rec.DocumentModel) {
		return false
	}
	rec.Recipient.TaxID = constants.UnidentifiedConsumer
	rec.Recipient.FullName = constants.UnidentifiedConsumer
	return true
}

func mentionsUnidentifiedConsumer(text string) bool {
	if text == "" {
		return false
	}
	folded := strings.Join(strings.Fields(strings.ToUpper(foldAccents(text))), " ")
	for _, m := range consumerMarkers {
		if strings.Contains(folded, m) {
			return true
		}
	}
	return false
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
