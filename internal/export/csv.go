package export

import (
	"bytes"
	"encoding/csv"

	"github.com/joseph-ayodele/fiscal-extract/internal/numeric"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

// ItemColumns is the header shared by the CSV and XLSX item exports.
var ItemColumns = []string{
	"Descricao_Produto",
	"Quantidade",
	"Valor_Unitario",
	"Valor_Total_Item",
	"Cod_Operacao",
	"Cod_Tributario",
	"Valor_Aprox_Taxas",
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ItemsCSV writes the line items as a ';' separated CSV with ',' decimals
// and a UTF-8 BOM, the layout spreadsheet tools in pt-BR locales open
// directly. A record without items yields an empty slice.
func ItemsCSV(rec *schema.DocumentRecord) ([]byte, error) {
	if rec == nil || len(rec.LineItems) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write(ItemColumns); err != nil {
		return nil, err
	}
	for _, it := range rec.LineItems {
		row := []string{
			it.Description,
			numeric.FormatDecimalBR(it.Quantity),
			numeric.FormatDecimalBR(it.UnitValue),
			numeric.FormatDecimalBR(it.LineTotal),
			it.OperationCode,
			it.TaxSituationCode,
			numeric.FormatDecimalBR(it.ApproxTaxValue),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
