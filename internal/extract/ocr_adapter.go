package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/fiscal-extract/internal/ocr"
)

// ErrNoText is returned when OCR ran but recognized nothing besides page
// markers, so there is nothing worth sending to the LLM.
var ErrNoText = errors.New("no text recognized")

// DefaultMinConfidence is the heuristic confidence below which a warning is
// attached to the result.
const DefaultMinConfidence float32 = 0.4

// OCRAdapter exposes an ocr.Extractor as a TextExtractor.
type OCRAdapter struct {
	e             *ocr.Extractor
	minConfidence float32
}

type AdapterOption func(*OCRAdapter)

// WithMinConfidence sets the low-confidence warning threshold. Zero disables it.
func WithMinConfidence(c float32) AdapterOption {
	return func(a *OCRAdapter) { a.minConfidence = c }
}

func NewOCRAdapter(e *ocr.Extractor, opts ...AdapterOption) *OCRAdapter {
	a := &OCRAdapter{e: e, minConfidence: DefaultMinConfidence}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *OCRAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.e.Extract(ctx, path)
	res := TextExtractionResult{
		Text:       r.Text,
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}
	if err != nil {
		return res, err
	}
	if !hasContent(r.Text, r.Pages) {
		return res, fmt.Errorf("%w in %d page(s)", ErrNoText, r.Pages)
	}
	if a.minConfidence > 0 && r.Confidence < a.minConfidence {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("OCR com baixa confiança (%.2f < %.2f): revise os valores extraídos", r.Confidence, a.minConfidence))
	}
	return res, nil
}

// hasContent reports whether text holds anything besides page markers.
func hasContent(text string, pages int) bool {
	for i := 1; i <= pages; i++ {
		text = strings.Replace(text, ocr.PageMarker(i), "", 1)
	}
	return strings.TrimSpace(text) != ""
}
