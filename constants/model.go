package constants

import (
	"strings"
)

// DocumentModel is the canonical family of a fiscal document.
type DocumentModel string

const (
	ModelNFe     DocumentModel = "NF-e"
	ModelNFCe    DocumentModel = "NFC-e"
	ModelNFSe    DocumentModel = "NFS-e"
	ModelCupom   DocumentModel = "Cupom"
	ModelUnknown DocumentModel = ""
)

// Canonicalize maps the raw model field (XML "mod" code or free text from the LLM)
// to a DocumentModel. The bool reports whether the input was recognized.
func Canonicalize(input string) (DocumentModel, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return ModelUnknown, false
	}

	synonyms := map[string]DocumentModel{
		"55":                      ModelNFe,
		"nfe":                     ModelNFe,
		"nf-e":                    ModelNFe,
		"danfe":                   ModelNFe,
		"65":                      ModelNFCe,
		"nfce":                    ModelNFCe,
		"nfc-e":                   ModelNFCe,
		"nfs-e":                   ModelNFSe,
		"nfse":                    ModelNFSe,
		"cupom":                   ModelCupom,
		"cupom fiscal":            ModelCupom,
		"recibo":                  ModelCupom,
		"sat":                     ModelCupom,
		"cf-e":                    ModelCupom,
		"cf-e-sat":                ModelCupom,
		"extrato cf-e":            ModelCupom,
		"cupom fiscal eletronico": ModelCupom,
	}
	if m, ok := synonyms[normalized]; ok {
		return m, true
	}

	switch {
	case strings.Contains(normalized, "nfc"):
		return ModelNFCe, true
	case strings.Contains(normalized, "nfs"):
		return ModelNFSe, true
	case strings.Contains(normalized, "cupom"), strings.Contains(normalized, "recibo"):
		return ModelCupom, true
	case strings.Contains(normalized, "nf-e"), strings.Contains(normalized, "nfe"), strings.Contains(normalized, "danfe"):
		return ModelNFe, true
	}
	return ModelUnknown, false
}

// IsConsumerReceipt reports whether the model denotes a consumer-facing receipt
// (NFC-e or cupom), where an unidentified buyer is the norm.
func IsConsumerReceipt(input string) bool {
	m, _ := Canonicalize(input)
	return m == ModelNFCe || m == ModelCupom
}
