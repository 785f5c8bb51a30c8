package schema

import "encoding/json"

// Party is the sender (remetente) or recipient (receptor) of a document.
type Party struct {
	TaxID             string `json:"id_fiscal"` // CNPJ or CPF, digits only
	FullName          string `json:"nome_completo"`
	Address           string `json:"endereco_completo"`
	StateRegistration string `json:"inscricao_estadual"`
}

// IsIdentified reports whether the party carries a tax id or a name.
func (p Party) IsIdentified() bool {
	return p.TaxID != "" || p.FullName != ""
}

// TotalsBreakdown holds the document-level tax aggregates.
type TotalsBreakdown struct {
	PrincipalBase float64 `json:"base_calculo_principal"` // vBC
	PrincipalTax  float64 `json:"valor_total_principal"`  // vICMS
	AdditionalTax float64 `json:"valor_total_adicional"`  // vIPI
	ContributionA float64 `json:"valor_total_contribuicao_a"`
	ContributionB float64 `json:"valor_total_contribuicao_b"`
	OtherExpenses float64 `json:"valor_outras_despesas"`
	ApproxTaxes   float64 `json:"valor_aprox_taxas_total"`
}

// LineItem is one product or service line. Order inside DocumentRecord.LineItems
// follows the source document.
type LineItem struct {
	Description      string  `json:"descricao"`
	Quantity         float64 `json:"quantidade"`
	UnitValue        float64 `json:"valor_unitario"`
	LineTotal        float64 `json:"valor_total"`
	OperationCode    string  `json:"codigo_operacao"`   // CFOP, 4 digits
	TaxSituationCode string  `json:"codigo_tributario"` // CST/CSOSN, 2-3 digits
	ApproxTaxValue   float64 `json:"valor_aprox_taxas"`
}

// DocumentRecord is the canonical record produced for every processed document,
// whatever the source (XML or OCR+LLM).
type DocumentRecord struct {
	ControlNumber string          `json:"numero_controle"`
	DocumentModel string          `json:"modelo_documento"`
	IssueDate     string          `json:"data_emissao"` // DD-MM-YYYY
	TotalValue    float64         `json:"valor_total_nota"`
	OperationType string          `json:"tipo_operacao"`
	Sender        Party           `json:"remetente"`
	Recipient     Party           `json:"receptor"`
	Totals        TotalsBreakdown `json:"totais_valores"`
	LineItems     []LineItem      `json:"itens"`
}

// NewDocumentRecord returns a record with every field at its default.
func NewDocumentRecord() *DocumentRecord {
	return &DocumentRecord{LineItems: []LineItem{}}
}

// Clone returns a deep copy so cached records are never shared between callers.
func (r *DocumentRecord) Clone() *DocumentRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.LineItems = make([]LineItem, len(r.LineItems))
	copy(c.LineItems, r.LineItems)
	return &c
}

// ItemsTotal returns the plain float sum of line totals, in document order.
func (r *DocumentRecord) ItemsTotal() float64 {
	var total float64
	for _, it := range r.LineItems {
		total += it.LineTotal
	}
	return total
}

// MarshalJSON keeps "itens" an array even when no items were extracted.
func (r DocumentRecord) MarshalJSON() ([]byte, error) {
	type plain DocumentRecord
	p := plain(r)
	if p.LineItems == nil {
		p.LineItems = []LineItem{}
	}
	return json.Marshal(p)
}
