package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/case-diary-api/cases"
)

var (
	importUser string
	importFile string
)

// importCmd represents the import-local command
var importCmd = &cobra.Command{
	Use:   "import-local",
	Short: "Import cases saved by the offline client",
	Long: `Import the JSON array the offline client keeps under its legalCases
storage key. Statuses written by older clients (pending, active, completed,
urgent in any case) are migrated. Invalid records are skipped and listed.

Example:
  case-diary import-local --user counsel@example.com --file legalCases.json`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importUser, "user", "", "email of the account that will own the cases")
	importCmd.Flags().StringVar(&importFile, "file", "", "path of the exported legalCases JSON")
	_ = importCmd.MarkFlagRequired("user")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	b, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", importFile, err)
	}
	records, err := cases.DecodeLocalRecords(b)
	if err != nil {
		return err
	}

	a, closeApp, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeApp()

	userID, err := resolveUser(ctx, a, importUser)
	if err != nil {
		return err
	}
	result, err := a.Cases.Import(ctx, userID, records, a.Clock.Location())

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d cases, skipped %d\n", result.Imported, result.Skipped)
	for _, e := range result.Errors {
		fmt.Fprintf(out, "  %s\n", e)
	}
	return err
}
