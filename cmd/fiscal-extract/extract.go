package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/fiscal-extract/constants"
	"github.com/joseph-ayodele/fiscal-extract/internal/audit"
	"github.com/joseph-ayodele/fiscal-extract/internal/common"
	"github.com/joseph-ayodele/fiscal-extract/internal/export"
	"github.com/joseph-ayodele/fiscal-extract/internal/pipeline"
	"github.com/joseph-ayodele/fiscal-extract/internal/report"
)

type extractOptions struct {
	outDir  string
	csv     bool
	xlsx    bool
	text    bool
	summary bool
	manual  audit.ManualTotals
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract one document and print its JSON record",
		Long: `Extract one document. XML files are mapped directly; PDFs and images go through
OCR and the configured LLM. With --text the argument is OCR text (use - for stdin).

The JSON record goes to stdout unless --out is given, in which case the files
doc_<data>_<remetente>.json and, on request, itens_<data>_<remetente>.csv/.xlsx
are written to that directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, opts, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.outDir, "out", "o", "", "write export files to this directory")
	f.BoolVar(&opts.csv, "csv", false, "also write the items CSV (requires --out)")
	f.BoolVar(&opts.xlsx, "xlsx", false, "also write the items XLSX workbook (requires --out)")
	f.BoolVar(&opts.text, "text", false, "treat the argument as OCR text instead of a document file")
	f.BoolVar(&opts.summary, "summary", true, "print findings and the summary report to stderr")
	f.StringVar(&opts.manual.PrincipalTax, "principal", "", "manual value for valor_total_principal (e.g. 1.234,56)")
	f.StringVar(&opts.manual.AdditionalTax, "adicional", "", "manual value for valor_total_adicional")
	f.StringVar(&opts.manual.ContributionA, "contrib-a", "", "manual value for valor_total_contribuicao_a")
	f.StringVar(&opts.manual.ContributionB, "contrib-b", "", "manual value for valor_total_contribuicao_b")
	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, opts *extractOptions, arg string) error {
	if (opts.csv || opts.xlsx) && opts.outDir == "" {
		return common.InvalidArgumentError("--csv and --xlsx require --out")
	}
	ctx := cmd.Context()
	a, err := newApp(ctx, root)
	if err != nil {
		return err
	}
	defer a.close()

	var res *pipeline.Result
	if opts.text {
		text, rerr := readTextArg(cmd.InOrStdin(), arg)
		if rerr != nil {
			return rerr
		}
		res, err = a.proc.ProcessText(ctx, text, filepath.Base(arg))
	} else {
		res, err = a.proc.ProcessFile(ctx, arg)
	}
	if err != nil {
		return err
	}

	if opts.manual != (audit.ManualTotals{}) {
		if err := audit.ApplyManualTotals(res.Record, opts.manual); err != nil {
			return err
		}
		a.logger.Info("extract.manual_totals.applied")
	}

	stderr := cmd.ErrOrStderr()
	if opts.summary {
		if err := printFindings(stderr, res); err != nil {
			return err
		}
		if err := report.Render(stderr, res.Record, report.Summarize(res.Record, res.Source)); err != nil {
			return err
		}
	}

	if opts.outDir == "" {
		b, err := export.JSON(res.Record)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)
		return err
	}
	paths, err := export.NewService(a.logger).WriteFiles(opts.outDir, res.Record, export.Formats{JSON: true, CSV: opts.csv, XLSX: opts.xlsx})
	if err != nil {
		return err
	}
	for _, p := range paths {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
			return err
		}
	}
	return nil
}

func readTextArg(stdin io.Reader, arg string) (string, error) {
	if arg == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(arg)
	if err != nil {
		return "", common.NewAppError(common.CodeOCR, "read text input", err)
	}
	return string(b), nil
}

func printFindings(w io.Writer, res *pipeline.Result) error {
	if _, err := fmt.Fprintf(w, "Fonte: %s\n", res.Source); err != nil {
		return err
	}
	for _, f := range res.Findings {
		tag := "INFO"
		switch f.Severity {
		case constants.SeveritySuccess:
			tag = "OK"
		case constants.SeverityError:
			tag = "ERRO"
		}
		if _, err := fmt.Fprintf(w, "[%s] %s\n", tag, f.Message); err != nil {
			return err
		}
	}
	for _, warn := range res.Warnings {
		if _, err := fmt.Fprintf(w, "[AVISO] %s\n", warn); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
