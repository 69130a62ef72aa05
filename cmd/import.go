package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/ingest"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import reviews and fixtures into the store",
}

var (
	importCSVPath   string
	importCompanyID string
	importFixture   string
)

var importReviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Import customer reviews from a CSV file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		f, err := os.Open(importCSVPath)
		if err != nil {
			return eris.Wrap(err, "open csv")
		}
		defer f.Close() //nolint:errcheck

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if _, err := st.GetCompany(ctx, importCompanyID); err != nil {
			return eris.Wrap(err, "resolve company")
		}

		reviews, err := ingest.ReadReviewsCSV(ctx, f, importCompanyID)
		if err != nil {
			return eris.Wrap(err, "read reviews csv")
		}

		inserted, err := st.InsertReviews(ctx, reviews)
		if err != nil {
			return eris.Wrap(err, "insert reviews")
		}

		zap.L().Info("review import complete",
			zap.Int("inserted", inserted),
			zap.String("csv", importCSVPath),
			zap.String("company_id", importCompanyID),
		)
		return nil
	},
}

var importFixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Load a YAML fixture (company, promises, reviews)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		fixture, err := ingest.LoadFixture(importFixture)
		if err != nil {
			return eris.Wrap(err, "load fixture")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		company, err := st.CreateCompany(ctx, &fixture.Company)
		if err != nil {
			return eris.Wrap(err, "create company")
		}

		for i := range fixture.Promises {
			fixture.Promises[i].CompanyID = company.ID
			if _, err := st.InsertPromise(ctx, &fixture.Promises[i]); err != nil {
				return eris.Wrap(err, "insert promise")
			}
		}

		for i := range fixture.Reviews {
			fixture.Reviews[i].CompanyID = company.ID
		}
		inserted, err := st.InsertReviews(ctx, fixture.Reviews)
		if err != nil {
			return eris.Wrap(err, "insert reviews")
		}

		zap.L().Info("fixture loaded",
			zap.String("company_id", company.ID),
			zap.Int("promises", len(fixture.Promises)),
			zap.Int("reviews", inserted),
		)
		return nil
	},
}

func init() {
	importReviewsCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file (required)")
	importReviewsCmd.Flags().StringVar(&importCompanyID, "company", "", "company ID (required)")
	_ = importReviewsCmd.MarkFlagRequired("csv")
	_ = importReviewsCmd.MarkFlagRequired("company")

	importFixtureCmd.Flags().StringVar(&importFixture, "file", "", "path to fixture YAML (required)")
	_ = importFixtureCmd.MarkFlagRequired("file")

	importCmd.AddCommand(importReviewsCmd)
	importCmd.AddCommand(importFixtureCmd)
	rootCmd.AddCommand(importCmd)
}
