// Package server exposes the extraction pipeline over gRPC.
package server

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// New builds a gRPC server with the extractor service, the health service
// and reflection registered. The health status of the extractor service is
// SERVING on return.
func New(proc DocumentProcessor, maxBodyBytes int, logger *slog.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(RequestLogger(logger))}
	if maxBodyBytes > 0 {
		// leave room for framing around the payload
		opts = append(opts, grpc.MaxRecvMsgSize(maxBodyBytes+64<<10))
	}
	gs := grpc.NewServer(opts...)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ExtractorServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(gs)

	RegisterExtractorServiceServer(gs, NewExtractorServer(proc, maxBodyBytes, logger))
	return gs, hs
}
