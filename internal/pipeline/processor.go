// Package pipeline routes a document through the XML mapper or the OCR and
// LLM adapters, then through the schema gate and the audit engine.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/fiscal-extract/constants"
	"github.com/joseph-ayodele/fiscal-extract/internal/audit"
	"github.com/joseph-ayodele/fiscal-extract/internal/cache"
	"github.com/joseph-ayodele/fiscal-extract/internal/common"
	"github.com/joseph-ayodele/fiscal-extract/internal/extract"
	"github.com/joseph-ayodele/fiscal-extract/internal/llm"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
	"github.com/joseph-ayodele/fiscal-extract/internal/xmlmap"
)

// Result is everything produced for one document. Findings and Warnings
// never block the record.
type Result struct {
	File     string                 `json:"file,omitempty"`
	Source   constants.Source       `json:"source"`
	Record   *schema.DocumentRecord `json:"record"`
	Findings []audit.Finding        `json:"findings"`
	Warnings []string               `json:"warnings"`
	RawText  string                 `json:"raw_text,omitempty"`
	RawJSON  json.RawMessage        `json:"raw_json,omitempty"`
	Cached   bool                   `json:"-"`
}

// Processor coordinates extraction, validation and audit for one document
// at a time. It holds no per-document state and is safe for concurrent use
// when its collaborators are.
type Processor struct {
	mapper  *xmlmap.Mapper
	text    extract.TextExtractor
	llm     llm.RecordExtractor
	cache   cache.Store
	workers int
	logger  *slog.Logger
}

type Option func(*Processor)

func WithMapper(m *xmlmap.Mapper) Option { return func(p *Processor) { p.mapper = m } }

// WithTextExtractor enables PDF, image and text inputs.
func WithTextExtractor(tx extract.TextExtractor) Option {
	return func(p *Processor) { p.text = tx }
}

// WithRecordExtractor sets the LLM used to turn OCR text into a record.
func WithRecordExtractor(re llm.RecordExtractor) Option {
	return func(p *Processor) { p.llm = re }
}

func WithCache(s cache.Store) Option { return func(p *Processor) { p.cache = s } }

func WithWorkers(n int) Option { return func(p *Processor) { p.workers = n } }

func WithLogger(l *slog.Logger) Option { return func(p *Processor) { p.logger = l } }

func NewProcessor(opts ...Option) *Processor {
	p := &Processor{workers: 4}
	for _, o := range opts {
		o(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.mapper == nil {
		p.mapper = xmlmap.NewMapper(xmlmap.WithLogger(p.logger))
	}
	if p.workers <= 0 {
		p.workers = 1
	}
	return p
}

// ProcessXML maps an NF-e document, validates it and reconciles its items
// against the document total.
func (p *Processor) ProcessXML(ctx context.Context, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := common.LoggerFromContext(ctx, p.logger)
	logger.Debug("pipeline.xml.start", "bytes", len(data))

	rec, err := p.mapper.Extract(data)
	if err != nil {
		return nil, common.NewAppError(common.CodeParse, "xml extraction failed", err)
	}
	if err := schema.ValidateRecord(rec); err != nil {
		return nil, common.NewAppError(common.CodeValidation, "extracted record failed validation", err)
	}
	res := &Result{
		Source:   constants.SourceXML,
		Record:   rec,
		Findings: audit.Reconcile(rec),
		Warnings: audit.CheckQuality(rec),
	}
	logger.Info("pipeline.xml.ok",
		"items", len(rec.LineItems),
		"consistent", !audit.HasErrors(res.Findings),
		"warnings", len(res.Warnings),
	)
	return res, nil
}

// ProcessText asks the LLM for a record, then runs the heuristic
// enrichment over it with the same text.
func (p *Processor) ProcessText(ctx context.Context, text, filenameHint string) (*Result, error) {
	if p.llm == nil {
		return nil, common.NewAppError(common.CodeLLM, "no LLM provider configured", common.ErrNoExtractor)
	}
	logger := common.LoggerFromContext(ctx, p.logger)
	logger.Debug("pipeline.text.start", "chars", len(text), "filename", filenameHint)

	rec, raw, err := p.llm.ExtractRecord(ctx, llm.ExtractRequest{OCRText: text, FilenameHint: filenameHint})
	if err != nil {
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			return nil, common.NewAppError(common.CodeValidation, "llm response failed validation", err)
		}
		return nil, common.NewAppError(common.CodeLLM, "llm extraction failed", err)
	}

	findings := audit.Enrich(rec, text)
	res := &Result{
		Source:   constants.SourceLLMOCR,
		Record:   rec,
		Findings: findings,
		Warnings: audit.CheckQuality(rec),
		RawText:  text,
		RawJSON:  raw,
	}
	logger.Info("pipeline.text.ok",
		"items", len(rec.LineItems),
		"findings", len(findings),
		"consistent", !audit.HasErrors(findings),
		"warnings", len(res.Warnings),
	)
	return res, nil
}

// ProcessFile routes a file by extension. Results are cached by file name
// and size when a cache is configured.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, p.logger).With("file", path)
	ctx = common.WithLogger(ctx, logger)
	logger.Info("pipeline.process.start")

	format := constants.MapExtToFormat(filepath.Ext(path))
	if format == "" {
		return nil, common.NewAppError(common.CodeUnsupported, fmt.Sprintf("cannot process %s", filepath.Base(path)), common.ErrUnsupportedFormat)
	}

	key := p.cacheKey(ctx, path)
	if res, ok := p.lookup(ctx, key); ok {
		res.File = path
		logger.Info("pipeline.process.cache_hit", "key", key)
		return res, nil
	}

	var (
		res *Result
		err error
	)
	if format == constants.XML {
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, common.NewAppError(common.CodeParse, "read xml", err)
		}
		res, err = p.ProcessXML(ctx, data)
	} else {
		res, err = p.processScanned(ctx, path)
	}
	if err != nil {
		logger.Error("pipeline.process.failed", "code", common.ErrorCode(err), "error", err)
		return nil, err
	}
	res.File = path
	p.store(ctx, key, res)

	logger.Info("pipeline.process.ok",
		"source", res.Source,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Processor) processScanned(ctx context.Context, path string) (*Result, error) {
	if p.text == nil {
		return nil, common.NewAppError(common.CodeOCR, "no text extractor configured", common.ErrNoExtractor)
	}
	tx, err := p.text.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, common.ErrUnsupportedFormat) {
			return nil, common.NewAppError(common.CodeUnsupported, "text extraction", err)
		}
		return nil, common.NewAppError(common.CodeOCR, "text extraction failed", err)
	}
	for _, w := range tx.Warnings {
		if w != "" {
			p.logger.Warn("pipeline.ocr.warning", "file", path, "warning", w)
		}
	}
	return p.ProcessText(ctx, tx.Text, filepath.Base(path))
}

func (p *Processor) cacheKey(ctx context.Context, path string) string {
	if p.cache == nil {
		return ""
	}
	key, err := cache.FileKey(path)
	if err != nil {
		common.LoggerFromContext(ctx, p.logger).Warn("pipeline.cache.key_failed", "error", err)
		return ""
	}
	return key
}

func (p *Processor) lookup(ctx context.Context, key string) (*Result, bool) {
	if key == "" {
		return nil, false
	}
	b, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		common.LoggerFromContext(ctx, p.logger).Warn("pipeline.cache.get_failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(b, &res); err != nil || res.Record == nil {
		common.LoggerFromContext(ctx, p.logger).Warn("pipeline.cache.decode_failed", "key", key, "error", err)
		return nil, false
	}
	if res.Record.LineItems == nil {
		res.Record.LineItems = []schema.LineItem{}
	}
	res.Cached = true
	return &res, true
}

func (p *Processor) store(ctx context.Context, key string, res *Result) {
	if key == "" {
		return
	}
	b, err := json.Marshal(res)
	if err == nil {
		err = p.cache.Put(ctx, key, b)
	}
	if err != nil {
		common.LoggerFromContext(ctx, p.logger).Warn("pipeline.cache.put_failed", "key", key, "error", err)
	}
}
