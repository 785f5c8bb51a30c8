package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/fiscal-extract/internal/cache"
	"github.com/joseph-ayodele/fiscal-extract/internal/common"
	"github.com/joseph-ayodele/fiscal-extract/internal/extract"
	"github.com/joseph-ayodele/fiscal-extract/internal/llm/provider"
	"github.com/joseph-ayodele/fiscal-extract/internal/ocr"
	"github.com/joseph-ayodele/fiscal-extract/internal/pipeline"
	"github.com/joseph-ayodele/fiscal-extract/internal/xmlmap"
)

type rootOptions struct {
	configFile string
	verbose    bool
	provider   string
	cacheOff   bool
	workers    int // set by commands that take a --workers flag
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "fiscal-extract",
		Short: "Extract and reconcile Brazilian fiscal documents",
		Long: `fiscal-extract turns NF-e XML files and scanned receipts (PDF, images or OCR text)
into validated JSON records, checks the sum of the items against the document total
and exports the items as CSV or XLSX.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "optional YAML config file (environment variables still win)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.provider, "provider", "", "override LLM_PROVIDER (openai | vertex | none)")
	cmd.PersistentFlags().BoolVar(&opts.cacheOff, "no-cache", false, "disable the result cache")

	cmd.AddCommand(
		newExtractCmd(opts),
		newBatchCmd(opts),
		newServeCmd(opts),
		newWatchCmd(opts),
		newOCRCmd(opts),
		newCacheCheckCmd(opts),
	)
	return cmd
}

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg     *common.Config
	logger  *slog.Logger
	proc    *pipeline.Processor
	ocr     *ocr.Extractor
	store   cache.Store
	closers []func() error
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	// stdout carries command output, logs go to stderr
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	logger := newLogger(opts.verbose)

	cfg, err := common.LoadConfigFile(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.provider != "" {
		cfg.LLM.Provider = opts.provider
	}
	if opts.cacheOff {
		cfg.Cache.Driver = "none"
	}
	if opts.workers > 0 {
		cfg.Batch.Workers = opts.workers
	}
	if (cfg.LLM.Provider == "" || cfg.LLM.Provider == "openai") && cfg.LLM.APIKey == "" {
		logger.Warn("app.llm.disabled", "reason", "OPENAI_API_KEY not configured, only XML input can be processed")
		cfg.LLM.Provider = "none"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	extractor, closeLLM, err := provider.New(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeLLM)

	store, err := cache.NewStore(ctx, cfg.Cache, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	if store != nil {
		a.store = store
		a.closers = append(a.closers, store.Close)
	}

	ocrx := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      cfg.OCR.PdftoppmPath,
		Tesseract:     cfg.OCR.TesseractPath,
		TesseractLang: cfg.OCR.Lang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)
	a.ocr = ocrx

	popts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMapper(xmlmap.NewMapper(xmlmap.WithNamespaces(cfg.XML.Namespaces...), xmlmap.WithLogger(logger))),
		pipeline.WithTextExtractor(extract.NewOCRAdapter(ocrx)),
		pipeline.WithWorkers(cfg.Batch.Workers),
	}
	if extractor != nil {
		popts = append(popts, pipeline.WithRecordExtractor(extractor))
	}
	if store != nil {
		popts = append(popts, pipeline.WithCache(store))
	}
	a.proc = pipeline.NewProcessor(popts...)

	logger.Debug("app.ready",
		"llm_provider", cfg.LLM.Provider,
		"cache_driver", cfg.Cache.Driver,
		"workers", cfg.Batch.Workers,
	)
	return a, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("app.close.failed", "error", err)
		}
	}
	a.closers = nil
}
