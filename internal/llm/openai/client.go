package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/fiscal-extract/internal/common"
	"github.com/joseph-ayodele/fiscal-extract/internal/llm"
	"github.com/joseph-ayodele/fiscal-extract/internal/schema"
)

var errNoAPIKey = errors.New("OPENAI_API_KEY is not set")

// ExtractRecord implements llm.RecordExtractor using chat/completions, in JSON
// mode unless disabled.
func (c *Client) ExtractRecord(ctx context.Context, req llm.ExtractRequest) (*schema.DocumentRecord, []byte, error) {
	if c.cfg.APIKey == "" {
		return nil, nil, errNoAPIKey
	}
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"provider", "openai",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.OCRText),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  c.cfg.MaxTokens,
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(req)},
		},
	}
	if !c.cfg.DisableJSONMode {
		body["response_format"] = map[string]any{"type": "json_object"}
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, fmt.Errorf("openai request: %w", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
		)
		return nil, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices", "req_id", rid, "raw_bytes", len(raw))
		return nil, raw, fmt.Errorf("no choices in openai response")
	}

	content, err := llm.UnwrapJSON(cc.Choices[0].Message.Content)
	if err != nil {
		return nil, nil, err
	}

	rec, err := schema.Validate(content)
	if err != nil {
		c.logger.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, content, err
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"items", len(rec.LineItems),
		"total", rec.TotalValue,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, content, nil
}
