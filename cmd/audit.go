package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var auditCompanyID string

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run a full promise-vs-reality audit",
	Long:  "Collects pending pages, extracts promises, analyzes reviews, scores all three dimensions, and identifies gaps for one company.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(ctx, auditCompanyID)
		if err != nil {
			return err
		}

		zap.L().Info("audit finished",
			zap.String("audit_id", result.Audit.ID),
			zap.Float64("overall", result.Score.OverallScore),
			zap.Int("gaps", len(result.Gaps)),
		)

		fmt.Printf("audit %s\n", result.Audit.ID)
		fmt.Printf("  overall %.1f (jobs %.1f, pains %.1f, gains %.1f)\n",
			result.Score.OverallScore,
			result.Score.JobsScore,
			result.Score.PainsScore,
			result.Score.GainsScore,
		)
		fmt.Printf("  sample size %d, significance %.2f\n",
			result.Score.SampleSize,
			result.Score.StatisticalSignificance,
		)
		fmt.Printf("  %d gaps identified\n", len(result.Gaps))
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditCompanyID, "company", "", "company ID (required)")
	_ = auditCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(auditCmd)
}
