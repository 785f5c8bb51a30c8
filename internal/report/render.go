package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/joseph-ayodele/fiscal-extract/internal/numeric"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

// Render writes a plain-text summary of rec for terminals.
func Render(w io.Writer, rec *schema.DocumentRecord, s Summary) error {
	if rec == nil {
		rec = schema.NewDocumentRecord()
	}
	if _, err := fmt.Fprintf(w, "Documento %s (modelo %s) emitido em %s\nRemetente: %s\nReceptor:  %s\nValor total: %s\n\n",
		orDash(rec.ControlNumber), orDash(rec.DocumentModel), orDash(rec.IssueDate),
		orDash(rec.Sender.FullName), orDash(rec.Recipient.FullName), numeric.FormatBRL(rec.TotalValue)); err != nil {
		return err
	}

	items := tablewriter.NewWriter(w)
	items.SetHeader([]string{"Descrição", "Qtde", "Valor Unit.", "Valor Total", "Cod. Op.", "Cod. Trib.", "V. Aprox. Taxas"})
	items.SetAutoWrapText(false)
	for _, it := range rec.LineItems {
		items.Append([]string{
			it.Description,
			strconv.FormatFloat(it.Quantity, 'f', -1, 64),
			numeric.FormatBRL(it.UnitValue),
			numeric.FormatBRL(it.LineTotal),
			it.OperationCode,
			it.TaxSituationCode,
			numeric.FormatBRL(it.ApproxTaxValue),
		})
	}
	items.SetFooter([]string{"", "", "Itens", strconv.Itoa(s.ItemCount), "", "Soma", numeric.FormatBRL(s.ItemsSum)})
	items.Render()

	groups := tablewriter.NewWriter(w)
	groups.SetHeader([]string{"Cód. de Operação", "Valor Total"})
	for _, g := range s.ByOperationCode {
		groups.Append([]string{g.Key, numeric.FormatBRL(g.Value)})
	}
	groups.Render()

	comp := tablewriter.NewWriter(w)
	comp.SetHeader([]string{"Componente", "Valor"})
	for _, c := range s.Composition.Components {
		comp.Append([]string{c.Label, numeric.FormatBRL(c.Value)})
	}
	comp.Render()
	if s.Composition.Note != "" {
		if _, err := fmt.Fprintln(w, s.Composition.Note); err != nil {
			return err
		}
	}

	label := "Total V. Aprox. Taxas"
	if s.ApproxTaxesSource != "" {
		label += " (" + s.ApproxTaxesSource + ")"
	}
	if _, err := fmt.Fprintf(w, "%s: %s\n", label, numeric.FormatBRL(s.ApproxTaxes)); err != nil {
		return err
	}
	if s.ManualCorrection {
		if _, err := fmt.Fprintln(w, "Valores principal/adicional zerados: use --principal/--adicional para corrigir manualmente."); err != nil {
			return err
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
