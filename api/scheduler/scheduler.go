package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/cases"
	"github.com/linesmerrill/case-diary-api/diary"
	"github.com/linesmerrill/case-diary-api/models"
	"github.com/linesmerrill/case-diary-api/notifications"
	templates "github.com/linesmerrill/case-diary-api/templates/html"
)

// DefaultDigestSchedule runs the digest every morning at 7
const DefaultDigestSchedule = "0 7 * * *"

const digestTimeout = 5 * time.Minute

// UserLister returns every account the digest goes to
type UserLister interface {
	All(ctx context.Context) ([]models.User, error)
}

// Scheduler runs the daily case digest
type Scheduler struct {
	cron     *cron.Cron
	schedule string

	Users  UserLister
	Cases  *cases.Repository
	Mailer notifications.Mailer
	Clock  *diary.Clock
}

// DigestResult counts the outcome of one digest run
type DigestResult struct {
	Sent    int
	Skipped int
	Failed  int
}

// NewScheduler returns a scheduler firing on schedule in the clock's location.
// An empty schedule means DefaultDigestSchedule.
func NewScheduler(schedule string, u UserLister, repo *cases.Repository, mailer notifications.Mailer, clock *diary.Clock) *Scheduler {
	if schedule == "" {
		schedule = DefaultDigestSchedule
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(clock.Location())),
		schedule: schedule,
		Users:    u,
		Cases:    repo,
		Mailer:   mailer,
		Clock:    clock,
	}
}

// Start registers the digest job and starts the cron loop
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.runDigest)
	if err != nil {
		zap.S().Errorw("failed to register digest job", "schedule", s.schedule, "error", err)
		return fmt.Errorf("invalid digest schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	zap.S().Infow("digest scheduler started", "schedule", s.schedule)
	return nil
}

// Stop waits for a running job and stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("digest scheduler stopped")
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), digestTimeout)
	defer cancel()

	if _, err := s.RunDigest(ctx); err != nil {
		zap.S().Errorw("digest run failed", "error", err)
	}
}

// RunDigest emails every user with cases today or coming up. Users with neither are
// skipped. A failed send is logged and counted; the run carries on.
func (s *Scheduler) RunDigest(ctx context.Context) (DigestResult, error) {
	var result DigestResult

	accounts, err := s.Users.All(ctx)
	if err != nil {
		return result, err
	}

	zap.S().Infow("running case digest", "users", len(accounts))

	for _, u := range accounts {
		list, err := s.Cases.List(ctx, u.ID)
		if err != nil {
			zap.S().Errorw("failed to load cases for digest", "userId", u.ID, "error", err)
			result.Failed++
			continue
		}

		d := templates.Digest{
			Name:     u.Details.Name,
			Today:    diary.TodaysCases(list, s.Clock),
			Upcoming: diary.UpcomingCases(list, s.Clock, diary.DefaultUpcomingWindow),
			Date:     s.Clock.Now(),
			Location: s.Clock.Location(),
		}
		if len(d.Today) == 0 && len(d.Upcoming) == 0 {
			result.Skipped++
			continue
		}

		htmlBody, plain := templates.RenderDigestEmail(d)
		err = s.Mailer.Send(ctx, notifications.Message{
			ToEmail: u.Details.Email,
			ToName:  u.Details.Name,
			Subject: d.Subject(),
			HTML:    htmlBody,
			Plain:   plain,
		})
		if err != nil {
			zap.S().Errorw("failed to send digest", "userId", u.ID, "error", err)
			result.Failed++
			continue
		}
		result.Sent++
	}

	zap.S().Infow("case digest finished",
		"sent", result.Sent,
		"skipped", result.Skipped,
		"failed", result.Failed)
	return result, nil
}
