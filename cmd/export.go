package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/export"
)

var (
	exportAuditID string
	exportOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an audit report as an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		report, err := export.BuildReport(ctx, st, exportAuditID)
		if err != nil {
			return err
		}

		if err := export.WriteXLSX(report, exportOutput); err != nil {
			return eris.Wrap(err, "write workbook")
		}

		zap.L().Info("report exported",
			zap.String("audit_id", exportAuditID),
			zap.String("output", exportOutput),
			zap.Int("gaps", len(report.Gaps)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportAuditID, "audit", "", "audit ID (required)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "audit.xlsx", "output path")
	_ = exportCmd.MarkFlagRequired("audit")
	rootCmd.AddCommand(exportCmd)
}
