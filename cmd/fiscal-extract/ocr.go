package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newOCRCmd(root *rootOptions) *cobra.Command {
	var showMeta bool
	cmd := &cobra.Command{
		Use:   "ocr <file>",
		Short: "Run only the OCR stage and print the recognized text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, root)
			if err != nil {
				return err
			}
			defer a.close()

			start := time.Now()
			res, err := a.ocr.Extract(ctx, args[0])
			dur := time.Since(start)
			if err != nil {
				a.logger.Error("ocr.failed", "file", args[0], "error", err, "duration_ms", dur.Milliseconds())
				return err
			}
			a.logger.Info("ocr.ok",
				"file", args[0],
				"method", res.Method,
				"pages", res.Pages,
				"chars", len(res.Text),
				"confidence", res.Confidence,
				"duration_ms", dur.Milliseconds(),
			)
			for _, w := range res.Warnings {
				a.logger.Warn("ocr.warning", "file", args[0], "warning", w)
			}
			if showMeta {
				fmt.Fprintf(cmd.ErrOrStderr(), "source=%s method=%s pages=%d confidence=%.2f\n",
					res.SourceType, res.Method, res.Pages, res.Confidence)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Text)
			return err
		},
	}
	cmd.Flags().BoolVar(&showMeta, "meta", false, "print source type, page count and confidence to stderr")
	return cmd
}
