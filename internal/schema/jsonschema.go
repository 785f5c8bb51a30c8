package schema

// BuildDocumentJSONSchema returns the JSON Schema (draft 2020-12 subset) for a
// DocumentRecord as a generic map. The same map is sent to the LLM as the output
// contract and compiled locally by Validate.
//
// No member is required: absent members take their zero value on decode.
func BuildDocumentJSONSchema() map[string]any {
	party := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id_fiscal":          stringProp(),
			"nome_completo":      stringProp(),
			"endereco_completo":  stringProp(),
			"inscricao_estadual": stringProp(),
		},
	}

	totals := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"base_calculo_principal":     amountProp(),
			"valor_total_principal":      amountProp(),
			"valor_total_adicional":      amountProp(),
			"valor_total_contribuicao_a": amountProp(),
			"valor_total_contribuicao_b": amountProp(),
			"valor_outras_despesas":      amountProp(),
			"valor_aprox_taxas_total":    amountProp(),
		},
	}

	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"descricao":         stringProp(),
			"quantidade":        amountProp(),
			"valor_unitario":    amountProp(),
			"valor_total":       amountProp(),
			"codigo_operacao":   stringProp(),
			"codigo_tributario": stringProp(),
			"valor_aprox_taxas": amountProp(),
		},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"numero_controle":  stringProp(),
			"modelo_documento": stringProp(),
			"data_emissao":     stringProp(),
			"valor_total_nota": amountProp(),
			"tipo_operacao":    stringProp(),
			"remetente":        party,
			"receptor":         party,
			"totais_valores":   totals,
			"itens": map[string]any{
				"type":  "array",
				"items": item,
			},
		},
	}
}

func stringProp() map[string]any {
	return map[string]any{"type": "string"}
}

func amountProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}
