package llm

import (
	"context"

	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

// ExtractRequest is the input of one OCR-text-to-record call.
type ExtractRequest struct {
	OCRText      string
	FilenameHint string
}

// RecordExtractor turns OCR text into a candidate record. Implementations run
// the model's JSON through schema.Validate before returning, and hand back the
// raw JSON they validated.
type RecordExtractor interface {
	ExtractRecord(ctx context.Context, req ExtractRequest) (*schema.DocumentRecord, []byte, error)
}
