// Package xmlmap maps NF-e family XML documents into schema.DocumentRecord.
package xmlmap

import (
	"log/slog"
	"strings"

	"github.com/beevik/etree"

	"github.com/joseph-ayodele/fiscal-extract/constants"
	"github.com/joseph-ayodele/fiscal-extract/internal/numeric"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

// Mapper converts XML bytes to records. It holds no per-document state and is
// safe for concurrent use.
type Mapper struct {
	namespaces []string
	logger     *slog.Logger
}

type Option func(*Mapper)

// WithNamespaces replaces the namespace allowlist. The empty namespace is always allowed.
func WithNamespaces(ns ...string) Option {
	return func(m *Mapper) {
		if len(ns) > 0 {
			m.namespaces = ns
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Mapper) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{
		namespaces: []string{constants.NFeNamespace},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var defaultMapper = NewMapper()

// Extract maps xmlBytes with the default NF-e namespace allowlist.
func Extract(xmlBytes []byte) (*schema.DocumentRecord, error) {
	return defaultMapper.Extract(xmlBytes)
}

// Parse builds the lookup tree without mapping it.
func (m *Mapper) Parse(xmlBytes []byte) (*Tree, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		return nil, newParseError(err)
	}
	if doc.Root() == nil {
		return nil, newParseError(errNoRoot)
	}
	return newTree(doc, m.namespaces), nil
}

// Extract maps a fiscal XML document into a record. The record has not been
// enriched or reconciled.
func (m *Mapper) Extract(xmlBytes []byte) (*schema.DocumentRecord, error) {
	t, err := m.Parse(xmlBytes)
	if err != nil {
		m.logger.Warn("xmlmap.extract.parse_failed", "error", err)
		return nil, err
	}
	root := t.Root()
	rec := schema.NewDocumentRecord()

	rec.ControlNumber = controlNumber(t)
	rec.IssueDate = FormatIssueDate(firstNonEmpty(t.FindText("dhEmi", root, ""), t.FindText("dEmi", root, "")))
	rec.DocumentModel = t.FindText("mod", root, "")
	rec.OperationType = t.FindText("natOp", root, "")

	tot := t.FindScope("ICMSTot", root)
	rec.TotalValue = numeric.ParseXMLFloat(t.FindText("vNF", tot, ""))
	rec.Totals = schema.TotalsBreakdown{
		PrincipalBase: numeric.ParseXMLFloat(t.FindText("vBC", tot, "")),
		PrincipalTax:  numeric.ParseXMLFloat(t.FindText("vICMS", tot, "")),
		AdditionalTax: numeric.ParseXMLFloat(t.FindText("vIPI", tot, "")),
		ContributionA: numeric.ParseXMLFloat(t.FindText("vPIS", tot, "")),
		ContributionB: numeric.ParseXMLFloat(t.FindText("vCOFINS", tot, "")),
		OtherExpenses: numeric.ParseXMLFloat(t.FindText("vOutro", tot, "")),
		ApproxTaxes:   numeric.ParseXMLFloat(t.FindText("vTotTrib", tot, "")),
	}

	rec.Sender = party(t, t.FindScope("emit", root))
	rec.Recipient = party(t, t.FindScope("dest", root))

	for _, det := range t.FindAll("det", root) {
		rec.LineItems = append(rec.LineItems, lineItem(t, det))
	}

	m.logger.Debug("xmlmap.extract.ok",
		"control_number", rec.ControlNumber,
		"model", rec.DocumentModel,
		"items", len(rec.LineItems),
		"total", rec.TotalValue,
	)
	return rec, nil
}

// FormatIssueDate keeps the first 10 characters and rewrites YYYY-MM-DD as
// DD-MM-YYYY. Values that do not split into three parts pass through.
func FormatIssueDate(raw string) string {
	if raw == "" {
		return ""
	}
	if r := []rune(raw); len(r) > 10 {
		raw = string(r[:10])
	}
	parts := strings.Split(raw, "-")
	if len(parts) != 3 {
		return raw
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}

func controlNumber(t *Tree) string {
	root := t.Root()
	if key := t.FindText("chNFe", root, ""); key != "" {
		return key
	}
	id := t.FindText("Id", root, "")
	if id == "" {
		if inf := t.FindScope("infNFe", root); inf != nil {
			id = strings.TrimSpace(inf.SelectAttrValue("Id", ""))
		} else if root.Tag == "infNFe" {
			id = strings.TrimSpace(root.SelectAttrValue("Id", ""))
		}
	}
	return strings.TrimPrefix(id, "NFe")
}

func party(t *Tree, el *etree.Element) schema.Party {
	if el == nil {
		return schema.Party{}
	}
	p := schema.Party{
		TaxID:             firstNonEmpty(t.FindText("CNPJ", el, ""), t.FindText("CPF", el, "")),
		FullName:          t.FindText("xNome", el, ""),
		StateRegistration: t.FindText("IE", el, ""),
	}
	addr := t.FindScope("enderEmit", el)
	if addr == nil {
		addr = t.FindScope("enderDest", el)
	}
	if addr != nil {
		p.Address = ComposeAddress(
			t.FindText("xLgr", addr, ""),
			t.FindText("nro", addr, ""),
			t.FindText("xBairro", addr, ""),
			t.FindText("xMun", addr, ""),
			t.FindText("UF", addr, ""),
		)
	}
	return p
}

// ComposeAddress renders "<street>, <number> - <district> - <city>/<state>".
// Street, number, city and state gate the result: if any is empty the address
// is "". An empty district is dropped from the string.
func ComposeAddress(street, number, district, city, state string) string {
	if street == "" || number == "" || city == "" || state == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(street + ", " + number)
	if district != "" {
		b.WriteString(" - " + district)
	}
	b.WriteString(" - " + city + "/" + state)
	return b.String()
}

func lineItem(t *Tree, det *etree.Element) schema.LineItem {
	prod := t.FindScope("prod", det)
	imposto := t.FindScope("imposto", det)

	item := schema.LineItem{
		Description:   t.FindText("xProd", prod, ""),
		Quantity:      numeric.ParseXMLFloat(t.FindText("qCom", prod, "")),
		UnitValue:     numeric.ParseXMLFloat(t.FindText("vUnCom", prod, "")),
		LineTotal:     numeric.ParseXMLFloat(t.FindText("vProd", prod, "")),
		OperationCode: t.FindText("CFOP", prod, ""),
	}
	if imposto == nil {
		return item
	}
	item.TaxSituationCode = t.resolveRegime(imposto).Code
	// only the nested tax-included block counts; a bare imposto/vTotTrib is ignored
	if trib := t.Child(imposto, "impostoTrib"); trib != nil {
		item.ApproxTaxValue = numeric.ParseXMLFloat(t.FindText("vTotTrib", trib, ""))
	}
	return item
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
