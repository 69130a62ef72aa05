package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/model"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Manage audited companies",
}

var (
	companyName     string
	companyURL      string
	companyIndustry string
)

var companyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a company for auditing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		company, err := st.CreateCompany(ctx, &model.Company{
			Name:       companyName,
			WebsiteURL: companyURL,
			Industry:   companyIndustry,
		})
		if err != nil {
			return err
		}

		zap.L().Info("company created",
			zap.String("id", company.ID),
			zap.String("name", company.Name),
		)
		fmt.Println(company.ID)
		return nil
	},
}

var companyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered companies",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		companies, err := st.ListCompanies(ctx)
		if err != nil {
			return err
		}

		for _, c := range companies {
			fmt.Printf("%s\t%s\t%s\n", c.ID, c.Name, c.WebsiteURL)
		}
		return nil
	},
}

func init() {
	companyAddCmd.Flags().StringVar(&companyName, "name", "", "company name (required)")
	companyAddCmd.Flags().StringVar(&companyURL, "url", "", "company website URL")
	companyAddCmd.Flags().StringVar(&companyIndustry, "industry", "", "industry label")
	_ = companyAddCmd.MarkFlagRequired("name")

	companyCmd.AddCommand(companyAddCmd)
	companyCmd.AddCommand(companyListCmd)
	rootCmd.AddCommand(companyCmd)
}
