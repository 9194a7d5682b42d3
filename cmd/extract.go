package main

import (
	"encoding/json"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/model"
)

var extractWrite bool

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Run the extraction cascade on one PDF and print the outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		out := env.Pipeline.Process(ctx, args[0])
		if extractWrite {
			if err := env.Ledger.Append(out); err != nil {
				return err
			}
			zap.L().Info("outcome written", zap.String("ledger", outcomeLedger(out.Kind)))
		}

		return writeOutcomeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractWrite, "write", false, "also append the outcome to its ledger")
	rootCmd.AddCommand(extractCmd)
}

func writeOutcomeJSON(w io.Writer, out *model.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(out), "encode outcome")
}
