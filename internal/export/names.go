package export

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

const (
	fallbackName = "extraido"
	fallbackDate = "data_desconhecida"
)

// nameParts returns the issue date and the first word of the sender name,
// each replaced by its fallback when empty.
func nameParts(rec *schema.DocumentRecord) (date, short string) {
	date, short = fallbackDate, fallbackName
	if rec == nil {
		return date, short
	}
	if d := sanitize(rec.IssueDate); d != "" {
		date = d
	}
	if f := strings.Fields(rec.Sender.FullName); len(f) > 0 {
		if s := sanitize(f[0]); s != "" {
			short = s
		}
	}
	return date, short
}

// sanitize keeps a string safe to use inside a file name.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// JSONFileName is doc_<data_emissao>_<first word of sender>.json.
func JSONFileName(rec *schema.DocumentRecord) string {
	d, s := nameParts(rec)
	return fmt.Sprintf("doc_%s_%s.json", d, s)
}

func CSVFileName(rec *schema.DocumentRecord) string {
	d, s := nameParts(rec)
	return fmt.Sprintf("itens_%s_%s.csv", d, s)
}

func XLSXFileName(rec *schema.DocumentRecord) string {
	d, s := nameParts(rec)
	return fmt.Sprintf("itens_%s_%s.xlsx", d, s)
}
