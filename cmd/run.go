package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/model"
	"github.com/sells-group/invoice-cli/internal/pipeline"
)

var (
	runConcurrency   int
	runSkipProcessed bool
)

var runCmd = &cobra.Command{
	Use:   "run [pdf-dir] [output-dir]",
	Short: "Process every PDF in a folder into the CSV ledgers",
	Long: "Processes every PDF under pdf-dir (default input.dir) and appends one row per document to the " +
		"success, error or unsupported ledger in output-dir (default output.dir).",
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyRunOverrides(cmd, args)

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		paths, err := pipeline.DiscoverPDFs(cfg.Input.Dir)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			zap.L().Error("no PDF files found", zap.String("input_dir", cfg.Input.Dir))
			return eris.Wrapf(pipeline.ErrNoDocuments, "run: %s", cfg.Input.Dir)
		}

		if err := env.Ledger.EnsureHeaders(); err != nil {
			return err
		}

		res, err := pipeline.RunBatch(ctx, env.Pipeline, env.Ledger, env.Store, paths, pipeline.BatchOptions{
			InputDir:      cfg.Input.Dir,
			Concurrency:   cfg.Batch.Concurrency,
			SkipProcessed: cfg.Batch.SkipProcessed,
		})
		if res != nil {
			logRunSummary(res)
		}
		return err
	},
}

func init() {
	runCmd.Flags().IntVar(&runConcurrency, "concurrency", 0, "documents processed in parallel (default from config)")
	runCmd.Flags().BoolVar(&runSkipProcessed, "skip-processed", false, "skip documents already journaled with a non-error outcome")
	rootCmd.AddCommand(runCmd)
}

// applyRunOverrides lets positional arguments and flags override the loaded
// configuration.
func applyRunOverrides(cmd *cobra.Command, args []string) {
	if len(args) > 0 && args[0] != "" {
		cfg.Input.Dir = args[0]
	}
	if len(args) > 1 && args[1] != "" {
		cfg.Output.Dir = args[1]
	}
	if runConcurrency > 0 {
		cfg.Batch.Concurrency = runConcurrency
	}
	if cmd.Flags().Changed("skip-processed") {
		cfg.Batch.SkipProcessed = runSkipProcessed
	}
}

func logRunSummary(res *pipeline.BatchResult) {
	zap.L().Info("processing finished",
		zap.String("run_id", res.RunID),
		zap.Int("total", res.Summary.Total),
		zap.Int("succeeded", res.Summary.Succeeded),
		zap.Int("unsupported", res.Summary.Unsupported),
		zap.Int("failed", res.Summary.Failed),
		zap.Int("skipped", res.Summary.Skipped),
		zap.String("success_ledger", cfg.LedgerPath(cfg.Output.SuccessFile)),
		zap.String("error_ledger", cfg.LedgerPath(cfg.Output.ErrorFile)),
		zap.String("unsupported_ledger", cfg.LedgerPath(cfg.Output.UnsupportedFile)),
	)
}

// outcomeLedger names the ledger file an outcome kind is written to.
func outcomeLedger(kind model.OutcomeKind) string {
	switch kind {
	case model.OutcomeSuccess:
		return cfg.LedgerPath(cfg.Output.SuccessFile)
	case model.OutcomeUnsupported:
		return cfg.LedgerPath(cfg.Output.UnsupportedFile)
	default:
		return cfg.LedgerPath(cfg.Output.ErrorFile)
	}
}
