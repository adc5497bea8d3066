package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/case-diary-api/models"
)

var (
	userEmail    string
	userName     string
	userPassword string
)

// userCmd groups the account commands
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	Example: `  case-diary user create --email counsel@example.com --name "A. Counsel" --password 'correct horse'`,
	RunE: runUserCreate,
}

var userSetPasswordCmd = &cobra.Command{
	Use:     "set-password",
	Short:   "Replace the password of an account",
	Example: `  case-diary user set-password --email counsel@example.com --password 'battery staple'`,
	RunE:    runUserSetPassword,
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd, userSetPasswordCmd)

	userCmd.PersistentFlags().StringVar(&userEmail, "email", "", "account email")
	userCmd.PersistentFlags().StringVar(&userPassword, "password", "", "account password, at least 8 characters")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	_ = userCmd.MarkPersistentFlagRequired("email")
	_ = userCmd.MarkPersistentFlagRequired("password")
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, closeApp, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeApp()

	u, err := a.Accounts.Register(ctx, models.RegisterRequest{
		Email:    userEmail,
		Name:     userName,
		Password: userPassword,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", u.Details.Email, u.ID)
	return nil
}

func runUserSetPassword(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, closeApp, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeApp()

	if err = a.Accounts.SetPassword(ctx, userEmail, userPassword); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", userEmail)
	return nil
}
