package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/fiscal-extract/internal/async"
	"github.com/joseph-ayodele/fiscal-extract/internal/export"
	"github.com/joseph-ayodele/fiscal-extract/internal/ingest"
	"github.com/joseph-ayodele/fiscal-extract/internal/pipeline"
)

type watchOptions struct {
	dirs     []string
	outDir   string
	exts     []string
	initial  bool
	debounce time.Duration
	csv      bool
	xlsx     bool
}

func newWatchCmd(root *rootOptions) *cobra.Command {
	opts := &watchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch intake directories and extract documents as they arrive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, root, opts)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&opts.dirs, "dir", nil, "directory to watch, recursively (repeatable, required)")
	f.StringVarP(&opts.outDir, "out", "o", "", "export directory (required)")
	f.StringSliceVar(&opts.exts, "ext", nil, "extensions to include (default xml,pdf,jpg,jpeg,png,txt)")
	f.BoolVar(&opts.initial, "initial-scan", true, "process files already present at startup")
	f.DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "wait for writes to settle before processing")
	f.BoolVar(&opts.csv, "csv", true, "write items CSV files")
	f.BoolVar(&opts.xlsx, "xlsx", false, "write items XLSX files")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runWatch(cmd *cobra.Command, root *rootOptions, opts *watchOptions) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, root)
	if err != nil {
		return err
	}
	defer a.close()

	svc := export.NewService(a.logger)
	formats := export.Formats{JSON: true, CSV: opts.csv, XLSX: opts.xlsx}
	q := async.NewProcessorQueue(a.proc, a.logger,
		async.WithWorkers(a.cfg.Batch.Workers),
		async.WithHandler(func(job async.Job, res *pipeline.Result, err error) {
			if err != nil {
				return
			}
			if _, werr := svc.WriteFiles(opts.outDir, res.Record, formats); werr != nil {
				a.logger.Error("watch.export.failed", "path", job.Path, "error", werr)
			}
		}),
	)

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       opts.dirs,
		AllowedExts: ingest.ExtSet(opts.exts),
		InitialScan: opts.initial,
		Debounce:    opts.debounce,
		Logger:      a.logger,
	})
	if err != nil {
		q.Shutdown(ctx)
		return err
	}

	for events != nil || errs != nil {
		select {
		case p, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if err := q.Enqueue(ctx, async.Job{Path: p}); err != nil {
				a.logger.Warn("watch.enqueue.failed", "path", p, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.logger.Warn("watch.error", "error", err)
		}
	}

	// drain whatever is already queued, bounded
	sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	q.Shutdown(sctx)
	return nil
}
