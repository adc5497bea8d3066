package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/api"
	"github.com/linesmerrill/case-diary-api/api/handlers"
	"github.com/linesmerrill/case-diary-api/api/scheduler"
	"github.com/linesmerrill/case-diary-api/config"
)

const shutdownTimeout = 15 * time.Second

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the case diary API. The server connects to MongoDB, to Redis when
REDIS_URL or REDIS_ADDR is set, and starts the morning digest when
SENDGRID_API_KEY is set. It runs until interrupted and then drains open requests.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a := handlers.App{Config: *config.New()}
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	defer a.Close(context.Background())

	go a.Metrics.Run(ctx)

	if a.Mailer != nil {
		s := scheduler.NewScheduler(a.Config.DigestSchedule, a.Accounts, a.Cases, a.Mailer, a.Clock)
		if err := s.Start(); err != nil {
			return err
		}
		defer s.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           api.TimeoutMiddleware(a.Config.RequestTimeout)(a.Router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("case-diary-api is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
			"timezone", a.Clock.Location().String(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	zap.S().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
