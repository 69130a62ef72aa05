package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	scoreAuditID   string
	scoreCompanyID string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Show audit scores",
	Long: `Show the stored score for one audit, or the score history for a company.

Examples:
  # One audit's score
  score --audit 6b921c9e

  # Score history for a company
  score --company 0f3a2d18`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if (scoreAuditID == "") == (scoreCompanyID == "") {
			return eris.New("pass exactly one of --audit or --company")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		if scoreAuditID != "" {
			score, err := st.GetAuditScore(ctx, scoreAuditID)
			if err != nil {
				return err
			}
			if score == nil {
				return eris.Errorf("audit %s has not been scored", scoreAuditID)
			}
			return enc.Encode(score)
		}

		scores, err := st.ListAuditScores(ctx, scoreCompanyID)
		if err != nil {
			return err
		}
		return enc.Encode(scores)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreAuditID, "audit", "", "audit ID")
	scoreCmd.Flags().StringVar(&scoreCompanyID, "company", "", "company ID")
	rootCmd.AddCommand(scoreCmd)
}
