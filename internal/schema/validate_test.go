package schema

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "numero_controle": "35240512345678000199550010000012341000012345",
  "modelo_documento": "55",
  "data_emissao": "15-03-2024",
  "valor_total_nota": 99.99,
  "tipo_operacao": "VENDA",
  "remetente": {"id_fiscal": "12345678000199", "nome_completo": "LOJA EXEMPLO LTDA", "endereco_completo": "", "inscricao_estadual": "123"},
  "receptor": {"id_fiscal": "12345678909", "nome_completo": "FULANO DE TAL"},
  "totais_valores": {"valor_total_principal": 18.0},
  "itens": [
    {"descricao": "ARROZ 5KG", "quantidade": 1, "valor_unitario": 50.0, "valor_total": 50.0, "codigo_operacao": "5102", "codigo_tributario": "00", "valor_aprox_taxas": 0},
    {"descricao": "FEIJAO", "quantidade": 1, "valor_unitario": 49.99, "valor_total": 49.99, "codigo_operacao": "", "codigo_tributario": null}
  ]
}`

func TestValidate_Accepts(t *testing.T) {
	rec, err := Validate([]byte(sampleJSON))
	require.NoError(t, err)

	assert.Equal(t, "15-03-2024", rec.IssueDate)
	assert.Equal(t, 99.99, rec.TotalValue)
	assert.Equal(t, "LOJA EXEMPLO LTDA", rec.Sender.FullName)
	assert.Equal(t, "", rec.Recipient.Address)
	assert.Equal(t, 18.0, rec.Totals.PrincipalTax)
	assert.Equal(t, 0.0, rec.Totals.PrincipalBase)
	require.Len(t, rec.LineItems, 2)
	assert.Equal(t, "FEIJAO", rec.LineItems[1].Description)
	assert.Equal(t, "", rec.LineItems[1].TaxSituationCode)
}

func TestValidate_DefaultsForEmptyObject(t *testing.T) {
	rec, err := Validate([]byte(`{}`))
	require.NoError(t, err)
	assert.NotNil(t, rec.LineItems)
	assert.Empty(t, rec.LineItems)
	assert.Equal(t, 0.0, rec.TotalValue)
	assert.Equal(t, "", rec.ControlNumber)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		path string
	}{
		{"not json", `not json`, "$"},
		{"not an object", `[1,2]`, "$"},
		{"string in float field", `{"valor_total_nota": "abc"}`, "valor_total_nota"},
		{"negative total", `{"valor_total_nota": -1}`, "valor_total_nota"},
		{"nested party type", `{"remetente": {"id_fiscal": 123}}`, "remetente.id_fiscal"},
		{"item field", `{"itens": [{"valor_total": 1}, {"valor_total": "dez"}]}`, "itens[1].valor_total"},
		{"items not array", `{"itens": {}}`, "itens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Validate([]byte(tt.raw))
			assert.Nil(t, rec)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.path, verr.Path)
			assert.NotEmpty(t, verr.Message)
		})
	}
}

func TestValidateRecord(t *testing.T) {
	rec := NewDocumentRecord()
	rec.TotalValue = 10
	rec.LineItems = append(rec.LineItems, LineItem{Description: "x", LineTotal: 10})
	assert.NoError(t, ValidateRecord(rec))

	rec.LineItems[0].UnitValue = math.NaN()
	var verr *ValidationError
	require.ErrorAs(t, ValidateRecord(rec), &verr)
	assert.Equal(t, "itens[0].valor_unitario", verr.Path)

	rec.LineItems[0].UnitValue = 0
	rec.Totals.OtherExpenses = -2
	require.ErrorAs(t, ValidateRecord(rec), &verr)
	assert.Equal(t, "totais_valores.valor_outras_despesas", verr.Path)

	require.ErrorAs(t, ValidateRecord(nil), &verr)
}

func TestMarshalKeepsEmptyItemsArray(t *testing.T) {
	var rec DocumentRecord
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"itens":[]`)
}

func TestClone(t *testing.T) {
	rec := NewDocumentRecord()
	rec.LineItems = append(rec.LineItems, LineItem{Description: "a"})
	c := rec.Clone()
	c.LineItems[0].Description = "b"
	assert.Equal(t, "a", rec.LineItems[0].Description)
}

func TestPointerToPath(t *testing.T) {
	assert.Equal(t, "$", pointerToPath(""))
	assert.Equal(t, "itens[0].valor_total", pointerToPath("/itens/0/valor_total"))
	assert.Equal(t, "receptor.nome_completo", pointerToPath("/receptor/nome_completo"))
}
