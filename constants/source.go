package constants

// Source identifies which extraction path produced a record.
type Source string

const (
	SourceXML    Source = "XML"     // deterministic XML mapping
	SourceLLMOCR Source = "LLM/OCR" // OCR text turned into a candidate record by the LLM
)

// Severity is the level of an audit finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// UnidentifiedConsumer is the placeholder written to the recipient of consumer
// receipts that carry no identified buyer.
const UnidentifiedConsumer = "CONSUMIDOR NAO INFORMADO"

// NFeNamespace is the default namespace of the NF-e / NFC-e XML family.
const NFeNamespace = "http://www.portalfiscal.inf.br/nfe"

// ReconciliationTolerance is the absolute difference accepted between the sum of
// line totals and the declared document total.
const ReconciliationTolerance = 0.01
