package llm

import (
	"encoding/json"
	"strings"

	"github.com/joseph-ayodele/fiscal-extract/constants"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

// MaxPromptChars caps the OCR text sent in one request.
const MaxPromptChars = 60000

// BuildSystemPrompt returns the extraction rules given to the model.
func BuildSystemPrompt() string {
	parts := []string{
		"Você é um Agente de Extração de Dados especializado em documentos fiscais, incluindo documentos eletrônicos (DANFE) e cupons/recibos.",
		"Sua função é ler o texto bruto (OCR) do documento e extrair os dados em JSON, obedecendo rigorosamente o JSON Schema fornecido.",
		"Siga estas regras estritas:",
		"1. Documentos de consumidor (recibos) muitas vezes trazem '" + constants.UnidentifiedConsumer + "'. Nesse caso preencha `id_fiscal` e `nome_completo` do `receptor` com '" + constants.UnidentifiedConsumer + "'.",
		"2. O texto vem de OCR e contém erros de grafia. Corrija a grafia da `descricao` de cada item usando o contexto e o português correto; se não for possível inferir a palavra, mantenha o valor original.",
		"3. Se um campo estiver ausente ou ilegível, use string vazia (''). Nunca invente dados, exceto pela regra 1.",
		"4. Valores numéricos usam o formato brasileiro (1.234,56). Converta para número JSON com ponto decimal e sem separador de milhar (1234.56).",
		"5. Datas no formato estrito 'DD-MM-AAAA'.",
		"6. O `numero_controle` é uma string de 44 dígitos, apenas números. Em recibos o número pode aparecer em blocos: junte-os.",
		"7. Leia as colunas da tabela de itens com máxima atenção. `valor_total` do item é o valor total do produto, não o valor do imposto.",
		"8. A saída deve ser SOMENTE o JSON, sem texto explicativo nem markdown.",
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt packages the OCR text and the output schema.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	b.WriteString("Extraia os dados do documento no texto OCR abaixo. Retorne apenas o JSON.\n")
	if name := strings.TrimSpace(req.FilenameHint); name != "" {
		b.WriteString("Arquivo: ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("\nJSON Schema:\n")
	b.WriteString(SchemaJSON())
	b.WriteString("\n\nTexto OCR:\n")

	ocr := strings.TrimSpace(req.OCRText)
	if r := []rune(ocr); len(r) > MaxPromptChars {
		b.WriteString(string(r[:MaxPromptChars]))
		b.WriteString("\n…(truncado)")
	} else {
		b.WriteString(ocr)
	}
	return b.String()
}

// SchemaJSON renders the record schema for inclusion in prompts.
func SchemaJSON() string {
	b, _ := json.MarshalIndent(schema.BuildDocumentJSONSchema(), "", "  ")
	return string(b)
}
