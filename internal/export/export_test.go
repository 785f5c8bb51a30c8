package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

func sampleRecord() *schema.DocumentRecord {
	rec := schema.NewDocumentRecord()
	rec.IssueDate = "15-03-2024"
	rec.TotalValue = 1284.56
	rec.Sender.FullName = "MERCADO SÃO JOÃO LTDA"
	rec.LineItems = []schema.LineItem{
		{Description: "ARROZ; TIPO 1", Quantity: 2, UnitValue: 25, LineTotal: 50, OperationCode: "5102", TaxSituationCode: "00", ApproxTaxValue: 6.5},
		{Description: "TV 32\"", Quantity: 1, UnitValue: 1234.56, LineTotal: 1234.56},
	}
	return rec
}

func TestFileNames(t *testing.T) {
	rec := sampleRecord()
	assert.Equal(t, "doc_15-03-2024_MERCADO.json", JSONFileName(rec))
	assert.Equal(t, "itens_15-03-2024_MERCADO.csv", CSVFileName(rec))
	assert.Equal(t, "itens_15-03-2024_MERCADO.xlsx", XLSXFileName(rec))

	empty := schema.NewDocumentRecord()
	assert.Equal(t, "doc_data_desconhecida_extraido.json", JSONFileName(empty))
	assert.Equal(t, "doc_data_desconhecida_extraido.json", JSONFileName(nil))

	empty.Sender.FullName = "A/B COMERCIO"
	assert.Equal(t, "doc_data_desconhecida_AB.json", JSONFileName(empty))
}

func TestJSON(t *testing.T) {
	b, err := JSON(sampleRecord())
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, "\n    \"numero_controle\": \"\"")
	assert.Contains(t, s, "MERCADO SÃO JOÃO LTDA")
	assert.Contains(t, s, "1234.56")

	b, err = JSON(schema.NewDocumentRecord())
	require.NoError(t, err)
	assert.Contains(t, string(b), `"itens": []`)
}

func TestItemsCSV(t *testing.T) {
	b, err := ItemsCSV(sampleRecord())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(b, utf8BOM))

	lines := strings.Split(strings.TrimRight(string(b[len(utf8BOM):]), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Descricao_Produto;Quantidade;Valor_Unitario;Valor_Total_Item;Cod_Operacao;Cod_Tributario;Valor_Aprox_Taxas", lines[0])
	assert.Equal(t, `"ARROZ; TIPO 1";2,00;25,00;50,00;5102;00;6,50`, lines[1])
	assert.Equal(t, `"TV 32""";1,00;1234,56;1234,56;;;0,00`, lines[2])

	b, err = ItemsCSV(schema.NewDocumentRecord())
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestItemsXLSX(t *testing.T) {
	b, err := ItemsXLSX(sampleRecord())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{itemsSheet, documentSheet}, f.GetSheetList())

	raw := excelize.Options{RawCellValue: true}
	v, err := f.GetCellValue(itemsSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Descricao_Produto", v)
	v, err = f.GetCellValue(itemsSheet, "D3", raw)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", v)
	formula, err := f.GetCellFormula(itemsSheet, "D4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(D2:D3)", formula)

	v, err = f.GetCellValue(documentSheet, "B3")
	require.NoError(t, err)
	assert.Equal(t, "15-03-2024", v)
}

func TestServiceWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := NewService(nil)

	paths, err := s.WriteFiles(dir, sampleRecord(), Formats{JSON: true, CSV: true, XLSX: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "doc_15-03-2024_MERCADO.json"),
		filepath.Join(dir, "itens_15-03-2024_MERCADO.csv"),
		filepath.Join(dir, "itens_15-03-2024_MERCADO.xlsx"),
	}, paths)
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.NoError(t, err)
	}

	paths, err = s.WriteFiles(dir, schema.NewDocumentRecord(), Formats{JSON: true, CSV: true})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "doc_data_desconhecida_extraido.json")}, paths)
}
