package main

import (
	"errors"
	"net"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/fiscal-extract/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve fiscal.v1.ExtractorService over gRPC",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.close()
			if addr == "" {
				addr = a.cfg.Server.GRPCAddr
			}

			gs, hs := server.New(a.proc, a.cfg.Server.MaxBodyBytes, a.logger)
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			a.logger.Info("serve.grpc.listening", "addr", lis.Addr().String())

			errCh := make(chan error, 1)
			go func() { errCh <- gs.Serve(lis) }()

			select {
			case <-ctx.Done():
				a.logger.Info("serve.grpc.shutdown")
				hs.Shutdown()
				gs.GracefulStop()
				return nil
			case err := <-errCh:
				if errors.Is(err, grpc.ErrServerStopped) {
					return nil
				}
				hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
				return err
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default GRPC_ADDR)")
	return cmd
}
