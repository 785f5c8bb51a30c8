// Package provider builds the configured llm.RecordExtractor.
package provider

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/fiscal-extract/internal/common"
	"github.com/joseph-ayodele/fiscal-extract/internal/llm"
	"github.com/joseph-ayodele/fiscal-extract/internal/llm/openai"
	"github.com/joseph-ayodele/fiscal-extract/internal/llm/vertex"
)

// New returns the extractor selected by cfg.Provider and a close function.
// Provider "none" yields a nil extractor: OCR input then fails with
// common.ErrNoExtractor while XML input keeps working.
func New(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.RecordExtractor, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Provider {
	case "", "openai":
		if cfg.APIKey == "" {
			return nil, noop, common.NewAppError(common.CodeConfig, "OPENAI_API_KEY is required for provider openai", common.ErrInvalidInput)
		}
		return openai.NewClient(openai.Config{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			Model:           cfg.Model,
			Temperature:     cfg.Temperature,
			Timeout:         cfg.Timeout,
			MaxTokens:       cfg.MaxTokens,
			DisableJSONMode: cfg.DisableJSONMode,
		}, logger), noop, nil
	case "vertex":
		c, err := vertex.NewClient(ctx, vertex.Config{
			ProjectID:   cfg.VertexProject,
			Region:      cfg.VertexRegion,
			Model:       cfg.VertexModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, noop, common.NewAppError(common.CodeConfig, "vertex client", err)
		}
		return c, c.Close, nil
	case "none":
		return nil, noop, nil
	default:
		return nil, noop, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown LLM provider %q", cfg.Provider), common.ErrInvalidInput)
	}
}
