package audit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

// RE2's \b is ASCII-only, so word edges are spelled out with Unicode classes:
// "ção5102" must not yield 5102.
var (
	operationCodePattern = regexp.MustCompile(`(?:^|[^\pL\pN_])(\d{4})(?:$|[^\pL\pN_])`)
	taxCodePattern       = regexp.MustCompile(`(?:^|[^\pL\pN_])(0\d{2}|[1-9]\d{1,2})(?:$|[^\pL\pN_])`)
)

// Enrich runs the OCR+LLM post-pass over rec in place and returns the ordered
// findings: code backfill (only when rawText is non-empty), the
// unidentified-consumer rule, then a single reconciliation.
//
// Backfill only fills codes; descriptions and values are never rewritten.
// The patterns can pick up unrelated digits in a description (a pack size,
// a quantity). That is accepted.
func Enrich(rec *schema.DocumentRecord, rawText string) []Finding {
	var findings []Finding

	if rawText != "" {
		findings = append(findings, info(msgEnrichStart))
		for i := range rec.LineItems {
			findings = append(findings, backfillItem(&rec.LineItems[i])...)
		}
	}

	if ApplyConsumerSentinel(rec, rawText) {
		findings = append(findings, info(msgSentinel))
	}

	return append(findings, Reconcile(rec)...)
}

func backfillItem(item *schema.LineItem) []Finding {
	var out []Finding
	desc := strings.ToLower(item.Description)

	if len(item.OperationCode) != 4 {
		if m := operationCodePattern.FindStringSubmatch(desc); m != nil {
			item.OperationCode = m[1]
			out = append(out, success(fmt.Sprintf("Cod. Operação do item '%s...' preenchido via Regex: %s",
				truncate(item.Description, 20), item.OperationCode)))
		}
	}

	if len(item.TaxSituationCode) < 2 {
		if m := taxCodePattern.FindStringSubmatch(desc); m != nil {
			item.TaxSituationCode = m[1]
			out = append(out, success(fmt.Sprintf("Cod. Tributário do item '%s...' preenchido via Regex: %s",
				truncate(item.Description, 20), item.TaxSituationCode)))
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
