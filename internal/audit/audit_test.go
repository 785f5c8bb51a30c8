package audit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/fiscal-extract/constants"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

func recordWithItems(total float64, lines ...float64) *schema.DocumentRecord {
	rec := schema.NewDocumentRecord()
	rec.TotalValue = total
	for _, v := range lines {
		rec.LineItems = append(rec.LineItems, schema.LineItem{Description: "item", LineTotal: v})
	}
	return rec
}

func TestReconcile_Tolerance(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		lines    []float64
		severity constants.Severity
	}{
		{"exact", 99.99, []float64{50.00, 49.99}, constants.SeveritySuccess},
		{"one cent over", 100.01, []float64{60.00, 40.00}, constants.SeveritySuccess},
		{"two cents over", 100.02, []float64{60.00, 40.00}, constants.SeverityError},
		{"no items", 10, nil, constants.SeverityError},
		{"empty document", 0, nil, constants.SeveritySuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := Reconcile(recordWithItems(tt.total, tt.lines...))
			require.Len(t, findings, 2)
			assert.Equal(t, constants.SeverityInfo, findings[0].Severity)
			assert.Equal(t, tt.severity, findings[1].Severity)
		})
	}
}

func TestReconcile_MessagesCarryBothAmounts(t *testing.T) {
	findings := Reconcile(recordWithItems(1234.56, 1000, 200))
	last := findings[len(findings)-1]
	assert.Equal(t, constants.SeverityError, last.Severity)
	assert.Contains(t, last.Message, "Soma dos Itens: R$ 1.200,00")
	assert.Contains(t, last.Message, "Total Doc: R$ 1.234,56")
	assert.Contains(t, last.Message, "Recomendação")
	assert.True(t, HasErrors(findings))
}

func TestEnrich_OperationCodeBackfill(t *testing.T) {
	rec := schema.NewDocumentRecord()
	rec.TotalValue = 10
	rec.Recipient = schema.Party{TaxID: "123", FullName: "FULANO"}
	rec.LineItems = []schema.LineItem{{Description: "produto cfop 5102 revenda", LineTotal: 10}}

	findings := Enrich(rec, "texto ocr")

	assert.Equal(t, "5102", rec.LineItems[0].OperationCode)
	assert.Equal(t, "produto cfop 5102 revenda", rec.LineItems[0].Description)
	assert.Equal(t, 10.0, rec.LineItems[0].LineTotal)

	require.GreaterOrEqual(t, len(findings), 4)
	assert.Equal(t, info(msgEnrichStart), findings[0])
	assert.Equal(t, constants.SeveritySuccess, findings[1].Severity)
	assert.Contains(t, findings[1].Message, "Cod. Operação do item 'produto cfop 5102 re...'")
	assert.Contains(t, findings[1].Message, "5102")

	n := len(findings)
	assert.Equal(t, info(msgReconcileStart), findings[n-2])
	assert.Equal(t, constants.SeveritySuccess, findings[n-1].Severity)
}

func TestEnrich_TaxCodeBackfill(t *testing.T) {
	rec := recordWithItems(5)
	rec.LineItems = []schema.LineItem{
		{Description: "Refrigerante cst 060", OperationCode: "5405", LineTotal: 5},
	}
	Enrich(rec, "x")
	assert.Equal(t, "5405", rec.LineItems[0].OperationCode, "valid code untouched")
	assert.Equal(t, "060", rec.LineItems[0].TaxSituationCode)
}

func TestEnrich_BackfillNeedsUnicodeWordEdges(t *testing.T) {
	tests := []struct {
		desc, wantOp, wantTax string
	}{
		{"operação5102 especial", "", ""},
		{"cfop 5102 revenda", "5102", ""},
		{"cfop:5102/cst-060", "5102", "060"},
		{"5102", "5102", ""},
		{"tributação060", "", ""},
		{"óleo 900ml cst 040", "", "040"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			rec := recordWithItems(1, 1)
			rec.LineItems[0].Description = tt.desc
			Enrich(rec, "x")
			assert.Equal(t, tt.wantOp, rec.LineItems[0].OperationCode)
			assert.Equal(t, tt.wantTax, rec.LineItems[0].TaxSituationCode)
		})
	}
}

func TestEnrich_NoMatchNoFinding(t *testing.T) {
	rec := recordWithItems(3, 3)
	rec.LineItems[0].Description = "pao frances"
	rec.Recipient = schema.Party{TaxID: "1", FullName: "A"}

	findings := Enrich(rec, "x")
	assert.Equal(t, "", rec.LineItems[0].OperationCode)
	assert.Equal(t, "", rec.LineItems[0].TaxSituationCode)
	require.Len(t, findings, 3)
	assert.False(t, HasErrors(findings))
}

func TestEnrich_WithoutTextSkipsBackfill(t *testing.T) {
	rec := recordWithItems(10, 10)
	rec.LineItems[0].Description = "cfop 5102"
	rec.Recipient = schema.Party{TaxID: "1", FullName: "A"}

	findings := Enrich(rec, "")
	assert.Equal(t, "", rec.LineItems[0].OperationCode)
	require.Len(t, findings, 2)
	assert.Equal(t, info(msgReconcileStart), findings[0])
}

func TestApplyConsumerSentinel(t *testing.T) {
	t.Run("marker in ocr text", func(t *testing.T) {
		rec := schema.NewDocumentRecord()
		assert.True(t, ApplyConsumerSentinel(rec, "CPF/CNPJ: consumidor  não   informado\nTOTAL"))
		assert.Equal(t, constants.UnidentifiedConsumer, rec.Recipient.TaxID)
		assert.Equal(t, constants.UnidentifiedConsumer, rec.Recipient.FullName)
	})
	t.Run("consumer receipt model", func(t *testing.T) {
		rec := schema.NewDocumentRecord()
		rec.DocumentModel = "65"
		assert.True(t, ApplyConsumerSentinel(rec, ""))
	})
	t.Run("identified recipient is kept", func(t *testing.T) {
		rec := schema.NewDocumentRecord()
		rec.DocumentModel = "NFC-e"
		rec.Recipient.FullName = "MARIA"
		assert.False(t, ApplyConsumerSentinel(rec, "CONSUMIDOR NAO IDENTIFICADO"))
		assert.Equal(t, "", rec.Recipient.TaxID)
	})
	t.Run("business invoice without marker", func(t *testing.T) {
		rec := schema.NewDocumentRecord()
		rec.DocumentModel = "55"
		assert.False(t, ApplyConsumerSentinel(rec, "DANFE documento auxiliar"))
		assert.Equal(t, "", rec.Recipient.TaxID)
	})
}

func TestEnrich_SentinelFinding(t *testing.T) {
	rec := recordWithItems(0)
	findings := Enrich(rec, "CONSUMIDOR NÃO IDENTIFICADO")
	assert.Contains(t, findings, info(msgSentinel))
	assert.Equal(t, constants.UnidentifiedConsumer, rec.Recipient.FullName)
}

func TestCheckQuality(t *testing.T) {
	rec := schema.NewDocumentRecord()
	assert.Equal(t, []string{WarnSenderIncomplete, WarnRecipientIncomplete, WarnZeroTotal, WarnNoItems}, CheckQuality(rec))

	rec = recordWithItems(99.99, 50, 49.99)
	rec.Sender = schema.Party{TaxID: "12345678000199", FullName: "LOJA"}
	rec.Recipient = schema.Party{TaxID: "12345678909", FullName: ""}
	assert.Equal(t, []string{WarnRecipientIncomplete}, CheckQuality(rec))

	rec.Recipient.FullName = "CLIENTE"
	assert.Empty(t, CheckQuality(rec))
}

func TestApplyManualTotals(t *testing.T) {
	rec := schema.NewDocumentRecord()
	rec.Totals.ContributionB = 3

	err := ApplyManualTotals(rec, ManualTotals{PrincipalTax: "1.234,56", AdditionalTax: "R$ 10,00", ContributionA: "0.5"})
	require.NoError(t, err)
	assert.Equal(t, 1234.56, rec.Totals.PrincipalTax)
	assert.Equal(t, 10.0, rec.Totals.AdditionalTax)
	assert.Equal(t, 0.5, rec.Totals.ContributionA)
	assert.Equal(t, 3.0, rec.Totals.ContributionB)

	before := rec.Totals
	err = ApplyManualTotals(rec, ManualTotals{PrincipalTax: "1", ContributionB: "abc"})
	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "totais_valores.valor_total_contribuicao_b", verr.Path)
	assert.Equal(t, before, rec.Totals)

	err = ApplyManualTotals(rec, ManualTotals{AdditionalTax: "-1"})
	require.ErrorAs(t, err, &verr)
	assert.True(t, strings.HasSuffix(verr.Path, "valor_total_adicional"))
}
