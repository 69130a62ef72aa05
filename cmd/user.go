package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/cvpa-audit/internal/auth"
	"github.com/sells-group/cvpa-audit/internal/model"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users",
}

var (
	userEmail    string
	userName     string
	userPassword string
	userRole     string
)

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an API user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		hash, err := auth.HashPassword(userPassword)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		user, err := st.CreateUser(ctx, &model.User{
			Email:        userEmail,
			Name:         userName,
			PasswordHash: hash,
			Role:         userRole,
		})
		if err != nil {
			return err
		}

		zap.L().Info("user created", zap.String("email", user.Email))
		fmt.Println(user.ID)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "login email (required)")
	userAddCmd.Flags().StringVar(&userName, "name", "", "display name")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "password (required)")
	userAddCmd.Flags().StringVar(&userRole, "role", "analyst", "role label")
	_ = userAddCmd.MarkFlagRequired("email")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}
