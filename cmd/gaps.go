package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	gapsAuditID    string
	gapsRegenerate bool
)

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "List or regenerate the gaps of an audit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if gapsRegenerate {
			gaps, err := env.Pipeline.RegenerateGaps(ctx, gapsAuditID)
			if err != nil {
				return err
			}
			zap.L().Info("gaps regenerated",
				zap.String("audit_id", gapsAuditID),
				zap.Int("gaps", len(gaps)),
			)
		}

		gaps, err := env.Store.ListGaps(ctx, gapsAuditID)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(gaps)
	},
}

func init() {
	gapsCmd.Flags().StringVar(&gapsAuditID, "audit", "", "audit ID (required)")
	gapsCmd.Flags().BoolVar(&gapsRegenerate, "regenerate", false, "recompute gaps before listing")
	_ = gapsCmd.MarkFlagRequired("audit")
	rootCmd.AddCommand(gapsCmd)
}
