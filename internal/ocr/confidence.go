package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate    = regexp.MustCompile(`\b\d{2}[/.-]\d{2}[/.-]\d{4}\b`)
	reCurr    = regexp.MustCompile(`r\$`)
	reAmount  = regexp.MustCompile(`\b\d{1,3}(\.\d{3})*,\d{2}\b`)
	reTaxID   = regexp.MustCompile(`\b(cnpj|cpf)\b|\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}`)
	reKeyword = regexp.MustCompile(`\b(total|valor|danfe|nfc-e|cupom)\b`)
)

// heuristicConfidence scores how much the text looks like a Brazilian fiscal
// document, in 0..1.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2)
	if reDate.MatchString(txtL) {
		score += 0.15
	}
	if reCurr.MatchString(txtL) {
		score += 0.15
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if reTaxID.MatchString(txtL) {
		score += 0.15
	}
	if reKeyword.MatchString(txtL) {
		score += 0.1
	}
	if len(txt) > 120 {
		score += 0.1
	}
	return min(score, 1.0)
}
