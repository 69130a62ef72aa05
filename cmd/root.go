package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cvpa-audit",
	Short: "Promise-vs-reality audit pipeline",
	Long:  "Extracts value propositions from company-controlled sources, mines customer reviews for jobs, pains, and gains, and scores how well the promises hold up in reality.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
