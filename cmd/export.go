package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/invoice-cli/internal/ledger"
)

var exportCmd = &cobra.Command{
	Use:   "export [csv-file] [xlsx-file]",
	Short: "Convert the success ledger to an XLSX workbook",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := cfg.LedgerPath(cfg.Output.SuccessFile)
		dst := cfg.LedgerPath(cfg.Output.XLSXFile)
		if len(args) > 0 {
			src = args[0]
		}
		if len(args) > 1 {
			dst = args[1]
		}

		n, err := ledger.ExportXLSX(src, dst)
		if err != nil {
			return err
		}

		zap.L().Info("ledger exported", zap.String("source", src), zap.String("workbook", dst), zap.Int("rows", n))
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", n, dst)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
