package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/fiscal-extract/internal/cache"
	"github.com/joseph-ayodele/fiscal-extract/internal/common"
)

func newCacheCheckCmd(root *rootOptions) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "cache-check",
		Short: "Open the configured result cache and ping it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.close()

			out := cmd.OutOrStdout()
			if a.store == nil {
				_, err := fmt.Fprintln(out, "cache: disabled")
				return err
			}
			hc, ok := a.store.(cache.HealthChecker)
			if !ok {
				_, err := fmt.Fprintf(out, "cache (%s): OK\n", a.cfg.Cache.Driver)
				return err
			}
			if err := hc.HealthCheck(ctx, timeout); err != nil {
				return common.NewAppError(common.CodeCache, fmt.Sprintf("cache (%s) health", a.cfg.Cache.Driver), err)
			}
			_, err = fmt.Fprintf(out, "cache (%s): OK\n", a.cfg.Cache.Driver)
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "ping timeout")
	return cmd
}
