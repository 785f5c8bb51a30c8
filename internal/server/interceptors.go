package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/fiscal-extract/internal/common"
)

const requestIDHeader = "x-request-id"

// RequestLogger attaches a request id and a request-scoped logger to the
// context and logs the outcome of every unary call.
func RequestLogger(base *slog.Logger) grpc.UnaryServerInterceptor {
	if base == nil {
		base = slog.Default()
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		rid := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(requestIDHeader); len(v) > 0 {
				rid = v[0]
			}
		}
		if rid == "" || common.UUID(requestIDHeader, rid) != nil {
			rid = uuid.NewString()
		}
		logger := base.With("request_id", rid, "method", info.FullMethod)
		ctx = common.WithRequestID(ctx, rid)
		ctx = common.WithLogger(ctx, logger)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, rid))

		resp, err := handler(ctx, req)
		code := status.Code(err)
		if err != nil {
			logger.Warn("grpc.request.failed", "code", code.String(), "elapsed_ms", time.Since(start).Milliseconds(), "error", err)
		} else {
			logger.Info("grpc.request.ok", "code", code.String(), "elapsed_ms", time.Since(start).Milliseconds())
		}
		return resp, err
	}
}
