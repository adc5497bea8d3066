package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/case-diary-api/diary"
)

var (
	exportUser   string
	exportOut    string
	exportQuery  string
	exportStatus string
	exportDate   string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's cases as CSV",
	Long: `Write a user's cases to a CSV file, narrowed by the same filters as the
case list. Without --out the file is named after today's date, e.g.
legal-cases-2024-06-10.csv. Use --out - to write to stdout.

Examples:
  case-diary export --user counsel@example.com
  case-diary export --user counsel@example.com --status hearing --date upcoming --out -`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportUser, "user", "", "email of the account to export")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file, - for stdout")
	exportCmd.Flags().StringVar(&exportQuery, "q", "", "only cases whose details contain this text")
	exportCmd.Flags().StringVar(&exportStatus, "status", "all", "only cases with this status")
	exportCmd.Flags().StringVar(&exportDate, "date", "all", "all, upcoming or past")
	_ = exportCmd.MarkFlagRequired("user")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	f, err := diary.ParseFilter(exportQuery, exportStatus, exportDate)
	if err != nil {
		return err
	}

	a, closeApp, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeApp()

	userID, err := resolveUser(ctx, a, exportUser)
	if err != nil {
		return err
	}
	list, err := a.Cases.List(ctx, userID)
	if err != nil {
		return err
	}
	list = diary.Compose(list, f, a.Clock.Now())

	out := exportOut
	if out == "" {
		out = diary.ExportFilename(a.Clock.Now(), a.Clock.Location())
	}

	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		file, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer file.Close()
		w = file
	}

	if err = diary.WriteCSV(w, list, a.Clock.Location()); err != nil {
		return err
	}
	if out != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d cases to %s\n", len(list), out)
	}
	return nil
}
