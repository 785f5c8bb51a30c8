package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

const (
	itemsSheet    = "Itens"
	documentSheet = "Documento"
	moneyFormat   = `"R$" #,##0.00`
)

// ItemsXLSX returns a workbook with the line items on one sheet and the
// document header and totals on another. Amounts are numeric cells.
func ItemsXLSX(rec *schema.DocumentRecord) ([]byte, error) {
	if rec == nil {
		rec = schema.NewDocumentRecord()
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", itemsSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(documentSheet); err != nil {
		return nil, err
	}
	idx, _ := f.GetSheetIndex(itemsSheet)
	f.SetActiveSheet(idx)

	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(moneyFormat)})
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, h := range ItemColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(itemsSheet, cell, h)
	}
	_ = f.SetCellStyle(itemsSheet, "A1", "G1", bold)

	row := 2
	for _, it := range rec.LineItems {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(itemsSheet, cell, v)
		}
		write(1, it.Description)
		write(2, it.Quantity)
		write(3, it.UnitValue)
		write(4, it.LineTotal)
		write(5, it.OperationCode)
		write(6, it.TaxSituationCode)
		write(7, it.ApproxTaxValue)
		row++
	}
	if len(rec.LineItems) > 0 {
		last := row - 1
		_ = f.SetCellStyle(itemsSheet, "C2", fmt.Sprintf("D%d", last), money)
		_ = f.SetCellStyle(itemsSheet, "G2", fmt.Sprintf("G%d", last), money)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("A%d", row), "TOTAL")
		_ = f.SetCellFormula(itemsSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("SUM(D2:D%d)", last))
		_ = f.SetCellStyle(itemsSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), bold)
		_ = f.SetCellStyle(itemsSheet, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), money)
	}

	_ = f.SetColWidth(itemsSheet, "A", "A", 48) // description
	_ = f.SetColWidth(itemsSheet, "B", "D", 14) // amounts
	_ = f.SetColWidth(itemsSheet, "E", "F", 14) // codes
	_ = f.SetColWidth(itemsSheet, "G", "G", 18)

	header := [][2]any{
		{"Numero_Controle", rec.ControlNumber},
		{"Modelo_Documento", rec.DocumentModel},
		{"Data_Emissao", rec.IssueDate},
		{"Tipo_Operacao", rec.OperationType},
		{"Valor_Total_Nota", rec.TotalValue},
		{"Remetente_ID", rec.Sender.TaxID},
		{"Remetente_Nome", rec.Sender.FullName},
		{"Receptor_ID", rec.Recipient.TaxID},
		{"Receptor_Nome", rec.Recipient.FullName},
		{"Base_Calculo_Principal", rec.Totals.PrincipalBase},
		{"Valor_Total_Principal", rec.Totals.PrincipalTax},
		{"Valor_Total_Adicional", rec.Totals.AdditionalTax},
		{"Valor_Total_Contribuicao_A", rec.Totals.ContributionA},
		{"Valor_Total_Contribuicao_B", rec.Totals.ContributionB},
		{"Valor_Outras_Despesas", rec.Totals.OtherExpenses},
		{"Valor_Aprox_Taxas_Total", rec.Totals.ApproxTaxes},
	}
	for i, kv := range header {
		r := i + 1
		_ = f.SetCellValue(documentSheet, fmt.Sprintf("A%d", r), kv[0])
		_ = f.SetCellValue(documentSheet, fmt.Sprintf("B%d", r), kv[1])
		if _, isNum := kv[1].(float64); isNum {
			_ = f.SetCellStyle(documentSheet, fmt.Sprintf("B%d", r), fmt.Sprintf("B%d", r), money)
		}
	}
	_ = f.SetCellStyle(documentSheet, "A1", fmt.Sprintf("A%d", len(header)), bold)
	_ = f.SetColWidth(documentSheet, "A", "A", 28)
	_ = f.SetColWidth(documentSheet, "B", "B", 52)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func ptr[T any](v T) *T { return &v }
