package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/case-diary-api/api/scheduler"
)

// digestCmd represents the digest command
var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send the daily case digest now",
	Long: `Email every user whose cases have a hearing today or within the next
seven days, the same way the scheduled morning digest does. Requires
SENDGRID_API_KEY.`,
	RunE: runDigest,
}

func init() {
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, closeApp, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeApp()

	if a.Mailer == nil {
		return fmt.Errorf("SENDGRID_API_KEY is not set")
	}

	s := scheduler.NewScheduler(a.Config.DigestSchedule, a.Accounts, a.Cases, a.Mailer, a.Clock)
	result, err := s.RunDigest(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %d, skipped %d, failed %d\n", result.Sent, result.Skipped, result.Failed)
	return nil
}
