package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Vertex")
	t.Setenv("VERTEX_PROJECT_ID", "proj-1")
	t.Setenv("LLM_TIMEOUT", "15s")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("XML_NAMESPACES", "http://www.portalfiscal.inf.br/nfe, urn:extra ,")
	t.Setenv("LLM_MAX_TOKENS", "2048")
	t.Setenv("OPENAI_DISABLE_JSON_MODE", "true")

	cfg := LoadConfig()
	assert.Equal(t, "vertex", cfg.LLM.Provider)
	assert.Equal(t, "proj-1", cfg.LLM.VertexProject)
	assert.Equal(t, 15*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, []string{"http://www.portalfiscal.inf.br/nfe", "urn:extra"}, cfg.XML.Namespaces)
	assert.Equal(t, "por", cfg.OCR.Lang)
	assert.Equal(t, 2048, cfg.LLM.MaxTokens)
	assert.True(t, cfg.LLM.DisableJSONMode)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFile_YAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: none
  timeout: 5s
cache:
  driver: sqlite
  dsn: file:cache.db
batch:
  workers: 2
`), 0o644))
	t.Setenv("BATCH_WORKERS", "6")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "sqlite", cfg.Cache.Driver)
	assert.Equal(t, 6, cfg.Batch.Workers, "env wins over file")
	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, CodeConfig, ErrorCode(err))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o644))
	_, err = LoadConfigFile(path)
	assert.Equal(t, CodeConfig, ErrorCode(err))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.LLM.Provider = "claude"
	cfg.Cache.Driver = "postgres"
	cfg.Batch.Workers = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, CodeConfig, ErrorCode(err))
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "LLM_PROVIDER")
	assert.Contains(t, err.Error(), "CACHE_DSN")
	assert.Contains(t, err.Error(), "BATCH_WORKERS")
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{NewAppError(CodeParse, "bad xml", nil), codes.InvalidArgument},
		{fmt.Errorf("wrapped: %w", NewAppError(CodeValidation, "bad field", ErrValidation)), codes.InvalidArgument},
		{NewAppError(CodeLLM, "model down", nil), codes.Unavailable},
		{NewAppError(CodeConfig, "no key", nil), codes.FailedPrecondition},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{ErrNotFound, codes.NotFound},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.PermissionDenied, "no"), codes.PermissionDenied},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, status.Code(ToStatus(tt.err)), tt.err.Error())
	}
	assert.NoError(t, ToStatus(nil))
}

func TestValidatorRules(t *testing.T) {
	v := NewValidator().
		Field("payload", []byte{}, Required).
		Field("payload_max", []byte("abcdef"), MaxLength(3)).
		Field("request_id", "not-a-uuid", UUID).
		Field("ok_id", "", UUID)
	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.Equal(t, codes.InvalidArgument, status.Code(ValidateAndReturnError(v)))
}

func TestContextHelpers(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "", RequestIDFromContext(context.Background()))

	l := slog.New(slog.NewTextHandler(os.Stderr, nil))
	assert.Same(t, l, LoggerFromContext(WithLogger(ctx, l), nil))
	assert.Same(t, slog.Default(), LoggerFromContext(ctx, nil))
}
