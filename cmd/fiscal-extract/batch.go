package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/fiscal-extract/internal/audit"
	"github.com/joseph-ayodele/fiscal-extract/internal/common"
	"github.com/joseph-ayodele/fiscal-extract/internal/export"
	"github.com/joseph-ayodele/fiscal-extract/internal/ingest"
	"github.com/joseph-ayodele/fiscal-extract/internal/numeric"
	"github.com/joseph-ayodele/fiscal-extract/internal/pipeline"
)

type batchOptions struct {
	dir        string
	outDir     string
	exts       []string
	skipHidden bool
	csv        bool
	xlsx       bool
	workers    int
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Extract every document found under a directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatch(cmd, root, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.dir, "dir", "", "directory to scan (required)")
	f.StringVarP(&opts.outDir, "out", "o", "", "write export files for each document to this directory")
	f.StringSliceVar(&opts.exts, "ext", nil, "extensions to include (default xml,pdf,jpg,jpeg,png,txt)")
	f.BoolVar(&opts.skipHidden, "skip-hidden", true, "skip hidden files and directories")
	f.BoolVar(&opts.csv, "csv", false, "also write items CSV files")
	f.BoolVar(&opts.xlsx, "xlsx", false, "also write items XLSX files")
	f.IntVar(&opts.workers, "workers", 0, "override BATCH_WORKERS")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func runBatch(cmd *cobra.Command, root *rootOptions, opts *batchOptions) error {
	ctx := cmd.Context()
	root.workers = opts.workers
	a, err := newApp(ctx, root)
	if err != nil {
		return err
	}
	defer a.close()

	paths, stats, err := ingest.ScanDirectory(ctx, opts.dir, opts.exts, opts.skipHidden)
	if err != nil {
		return err
	}
	a.logger.Info("batch.scan.done", "dir", opts.dir, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	if len(paths) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "nenhum documento encontrado")
		return err
	}

	items, err := a.proc.ProcessBatch(ctx, paths)
	if err != nil {
		return err
	}

	if opts.outDir != "" {
		svc := export.NewService(a.logger)
		for _, it := range items {
			if it.Err != nil {
				continue
			}
			if _, err := svc.WriteFiles(opts.outDir, it.Result.Record, export.Formats{JSON: true, CSV: opts.csv, XLSX: opts.xlsx}); err != nil {
				return err
			}
		}
	}

	if err := renderBatch(cmd, opts.dir, items); err != nil {
		return err
	}
	if s := pipeline.Summarize(items); s.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", s.Failed, s.Total)
	}
	return nil
}

func renderBatch(cmd *cobra.Command, dir string, items []pipeline.BatchItem) error {
	out := cmd.OutOrStdout()
	t := tablewriter.NewWriter(out)
	t.SetHeader([]string{"Arquivo", "Fonte", "Itens", "Total", "Consistência", "Avisos"})
	t.SetAutoWrapText(false)
	for _, it := range items {
		name, _ := filepath.Rel(dir, it.Path)
		if it.Err != nil {
			t.Append([]string{name, "-", "-", "-", "FALHA: " + common.ErrorCode(it.Err), it.Err.Error()})
			continue
		}
		r := it.Result
		status := "OK"
		if audit.HasErrors(r.Findings) {
			status = "DIVERGENTE"
		}
		if r.Cached {
			status += " (cache)"
		}
		t.Append([]string{
			name,
			string(r.Source),
			strconv.Itoa(len(r.Record.LineItems)),
			numeric.FormatBRL(r.Record.TotalValue),
			status,
			strconv.Itoa(len(r.Warnings)),
		})
	}
	t.Render()

	s := pipeline.Summarize(items)
	if _, err := fmt.Fprintf(out, "total: %d  ok: %d  falhas: %d  divergentes: %d  cache: %d\n",
		s.Total, s.Succeeded, s.Failed, s.Inconsistent, s.Cached); err != nil {
		return err
	}
	codes := pipeline.FailuresByCode(items)
	keys := make([]string, 0, len(codes))
	for k := range codes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(out, "  %s: %d\n", k, codes[k]); err != nil {
			return err
		}
	}
	return nil
}
