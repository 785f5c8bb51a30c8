// Package vertex implements llm.RecordExtractor with Gemini on Vertex AI.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"github.com/joseph-ayodele/fiscal-extract/internal/llm"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

type Config struct {
	ProjectID   string
	Region      string // default us-central1
	Model       string // default gemini-2.5-flash
	Temperature float32
	Timeout     time.Duration
}

// generator is the slice of *genai.GenerativeModel the client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Client struct {
	cfg    Config
	model  generator
	base   *genai.Client
	logger *slog.Logger
}

// NewClient dials Vertex AI and configures a JSON-mode model carrying the
// extraction rules as its system instruction.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("vertex: project id cannot be empty")
	}
	if cfg.Region == "" {
		cfg.Region = "us-central1"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}

	base, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	model := base.GenerativeModel(cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(llm.BuildSystemPrompt())},
	}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(cfg.Temperature),
	}

	return &Client{cfg: cfg, model: model, base: base, logger: logger}, nil
}

// Close releases the underlying Vertex AI connection.
func (c *Client) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

// ExtractRecord implements llm.RecordExtractor.
func (c *Client) ExtractRecord(ctx context.Context, req llm.ExtractRequest) (*schema.DocumentRecord, []byte, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()
	c.logger.Info("llm.extract.start",
		"provider", "vertex",
		"model", c.cfg.Model,
		"text_len", len(req.OCRText),
	)

	resp, err := c.model.GenerateContent(ctx, genai.Text(llm.BuildUserPrompt(req)))
	if err != nil {
		c.logger.Error("llm.extract.generate_failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, nil, fmt.Errorf("gemini generate: %w", err)
	}

	content, err := llm.UnwrapJSON(responseText(resp))
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			c.logger.Error("llm.extract.empty_response", "elapsed_ms", time.Since(start).Milliseconds())
		}
		return nil, nil, err
	}

	rec, err := schema.Validate(content)
	if err != nil {
		c.logger.Error("llm.extract.schema_validation_failed", "error", err)
		return nil, content, err
	}

	c.logger.Info("llm.extract.ok",
		"provider", "vertex",
		"items", len(rec.LineItems),
		"total", rec.TotalValue,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, content, nil
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if txt, ok := p.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
