package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/ingest"
)

var (
	collectCompanyID string
	collectURL       string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Snapshot a company page for promise extraction",
	Long:  "Fetches one company-controlled page, strips it to readable text, and stores it as a pending raw page. The next audit run extracts promises from it.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		company, err := st.GetCompany(ctx, collectCompanyID)
		if err != nil {
			return eris.Wrap(err, "resolve company")
		}

		target := collectURL
		if target == "" {
			target = company.WebsiteURL
		}
		if target == "" {
			return eris.New("company has no website URL; pass --url")
		}

		snap := ingest.NewSnapshotter(ingest.SnapshotOptions{
			UserAgent:         cfg.Collect.UserAgent,
			Timeout:           time.Duration(cfg.Collect.TimeoutSecs) * time.Second,
			RequestsPerSecond: cfg.Collect.RatePerSec,
		})

		page, err := snap.Snapshot(ctx, company.ID, target)
		if err != nil {
			return eris.Wrap(err, "snapshot")
		}

		saved, err := st.InsertRawPage(ctx, &page)
		if err != nil {
			return eris.Wrap(err, "store page")
		}

		zap.L().Info("page collected",
			zap.String("page_id", saved.ID),
			zap.String("url", target),
			zap.Int("chars", len(saved.Content)),
		)
		return nil
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectCompanyID, "company", "", "company ID (required)")
	collectCmd.Flags().StringVar(&collectURL, "url", "", "page URL (default: company website)")
	_ = collectCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(collectCmd)
}
