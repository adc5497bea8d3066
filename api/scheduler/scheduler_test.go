package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/case-diary-api/cases"
	"github.com/linesmerrill/case-diary-api/databases"
	"github.com/linesmerrill/case-diary-api/diary"
	"github.com/linesmerrill/case-diary-api/models"
	"github.com/linesmerrill/case-diary-api/notifications"
)

type staticUsers []models.User

func (s staticUsers) All(context.Context) ([]models.User, error) {
	return s, nil
}

type caseTable map[string][]models.CaseEntry

func (c caseTable) FindOne(context.Context, interface{}, ...*options.FindOneOptions) (*models.CaseEntry, error) {
	return nil, errors.New("not used")
}

func (c caseTable) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]models.CaseEntry, error) {
	return c[filter.(bson.M)["userId"].(string)], nil
}

func (c caseTable) InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (databases.InsertOneResultHelper, error) {
	return nil, nil
}

func (c caseTable) UpdateOne(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (int64, error) {
	return 0, nil
}

func (c caseTable) DeleteOne(context.Context, interface{}, ...*options.DeleteOptions) (int64, error) {
	return 0, nil
}

type recordingMailer struct {
	sent   []notifications.Message
	failTo string
}

func (m *recordingMailer) Send(_ context.Context, msg notifications.Message) error {
	if msg.ToEmail == m.failTo {
		return errors.New("sendgrid returned status 401")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestRunDigest(t *testing.T) {
	now := time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)
	clock := diary.NewClock(time.UTC).WithNow(func() time.Time { return now })

	table := caseTable{
		"u1": {{ID: "a", UserID: "u1", CaseDetails: "Smith v. Jones", Status: models.StatusHearing, PreviousDate: now.AddDate(0, -1, 0), NextDate: now.Add(2 * time.Hour)}},
		"u2": {{ID: "b", UserID: "u2", CaseDetails: "Old matter", Status: models.StatusSettled, PreviousDate: now.AddDate(-1, 0, 0), NextDate: now.AddDate(0, -1, 0)}},
		"u3": {{ID: "c", UserID: "u3", CaseDetails: "Doe appeal", Status: models.StatusAppeal, PreviousDate: now.AddDate(0, -1, 0), NextDate: now.AddDate(0, 0, 3)}},
	}
	repo := cases.NewRepository(table, nil, nil, nil, nil)
	mailer := &recordingMailer{failTo: "c@example.com"}
	users := staticUsers{
		{ID: "u1", Details: models.UserDetails{Email: "a@example.com", Name: "Ada"}},
		{ID: "u2", Details: models.UserDetails{Email: "b@example.com"}},
		{ID: "u3", Details: models.UserDetails{Email: "c@example.com"}},
	}

	s := NewScheduler("", users, repo, mailer, clock)
	result, err := s.RunDigest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, DigestResult{Sent: 1, Skipped: 1, Failed: 1}, result)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@example.com", mailer.sent[0].ToEmail)
	assert.Contains(t, mailer.sent[0].Plain, "Smith v. Jones")
	assert.Equal(t, DefaultDigestSchedule, s.schedule)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := NewScheduler("not a schedule", staticUsers{}, nil, &recordingMailer{}, diary.NewClock(time.UTC))
	assert.Error(t, s.Start())
}
