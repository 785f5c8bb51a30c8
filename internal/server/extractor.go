package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/fiscal-extract/internal/common"
	"github.com/joseph-ayodele/fiscal-extract/internal/pipeline"
	"github.com/joseph-ayodele/fiscal-extract/internal/report"
)

// DocumentProcessor is the part of pipeline.Processor the service calls.
type DocumentProcessor interface {
	ProcessXML(ctx context.Context, data []byte) (*pipeline.Result, error)
	ProcessText(ctx context.Context, text, filenameHint string) (*pipeline.Result, error)
}

type ExtractorServer struct {
	proc         DocumentProcessor
	maxBodyBytes int
	logger       *slog.Logger
}

func NewExtractorServer(proc DocumentProcessor, maxBodyBytes int, logger *slog.Logger) *ExtractorServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractorServer{proc: proc, maxBodyBytes: maxBodyBytes, logger: logger}
}

// ExtractXML implements ExtractorServiceServer
func (s *ExtractorServer) ExtractXML(ctx context.Context, req *wrapperspb.BytesValue) (*structpb.Struct, error) {
	data := req.GetValue()
	if err := s.validateBody("value", data); err != nil {
		return nil, err
	}
	res, err := s.proc.ProcessXML(ctx, data)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Warn("server.extract_xml.failed", "code", common.ErrorCode(err), "error", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(res)
}

// ExtractText implements ExtractorServiceServer
func (s *ExtractorServer) ExtractText(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	text := req.GetValue()
	if err := s.validateBody("value", strings.TrimSpace(text)); err != nil {
		return nil, err
	}
	res, err := s.proc.ProcessText(ctx, text, "")
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Warn("server.extract_text.failed", "code", common.ErrorCode(err), "error", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(res)
}

func (s *ExtractorServer) validateBody(field string, v any) error {
	val := common.NewValidator().Field(field, v, common.Required)
	if s.maxBodyBytes > 0 {
		if str, ok := v.(string); ok {
			v = []byte(str)
		}
		val.Field(field, v, common.MaxLength(s.maxBodyBytes))
	}
	return common.ValidateAndReturnError(val)
}

// toStruct renders the result plus its summary as a protobuf Struct using
// the same JSON names as the file exports.
func toStruct(res *pipeline.Result) (*structpb.Struct, error) {
	payload := struct {
		*pipeline.Result
		Summary report.Summary `json:"summary"`
	}{res, report.Summarize(res.Record, res.Source)}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, common.InternalError(fmt.Sprintf("encode result: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, common.InternalError(fmt.Sprintf("decode result: %v", err))
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalError(fmt.Sprintf("build struct: %v", err))
	}
	return out, nil
}
