package handlers_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/linesmerrill/case-diary-api/api"
	"github.com/linesmerrill/case-diary-api/cases"
	"github.com/linesmerrill/case-diary-api/databases"
	"github.com/linesmerrill/case-diary-api/databases/mocks"
	"github.com/linesmerrill/case-diary-api/diary"
	"github.com/linesmerrill/case-diary-api/models"
	"github.com/linesmerrill/case-diary-api/storage"
)

const testUserID = "6e3a3d2c-1111-4a8e-9e0b-5f1b0c8a0001"

var testNow = time.Date(2024, time.June, 10, 9, 30, 0, 0, time.UTC)

func testClock() *diary.Clock {
	return diary.NewClock(time.UTC).WithNow(func() time.Time { return testNow })
}

func asUser(req *http.Request) *http.Request {
	return req.WithContext(api.WithUser(req.Context(), api.SessionUser{ID: testUserID, Email: "counsel@example.com"}))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleCases() []models.CaseEntry {
	return []models.CaseEntry{
		{
			ID:           "case-1",
			PreviousDate: day(2024, time.May, 2),
			NextDate:     day(2024, time.June, 10),
			Status:       models.StatusHearing,
			CaseDetails:  "Smith v. Jones, boundary dispute",
			UserID:       testUserID,
			CreatedAt:    day(2024, time.January, 5),
			UpdatedAt:    day(2024, time.May, 2),
		},
		{
			ID:           "case-2",
			PreviousDate: day(2024, time.June, 1),
			NextDate:     day(2024, time.June, 14),
			Status:       models.StatusActive,
			CaseDetails:  "Estate of Miller",
			UserID:       testUserID,
			CreatedAt:    day(2024, time.February, 1),
			UpdatedAt:    day(2024, time.June, 1),
		},
		{
			ID:           "case-3",
			PreviousDate: day(2024, time.March, 1),
			NextDate:     day(2024, time.April, 1),
			Status:       models.StatusSettled,
			CaseDetails:  "Acme lease, settled",
			UserID:       testUserID,
			CreatedAt:    day(2024, time.March, 1),
			UpdatedAt:    day(2024, time.April, 1),
		},
	}
}

// caseDB returns a database helper whose cases collection lists stored and whose
// other collections are unset. The collection mock is returned for extra expectations.
func caseDB(stored []models.CaseEntry) (*mocks.DatabaseHelper, *mocks.CollectionHelper) {
	db := &mocks.DatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("All", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(1).(*[]models.CaseEntry)
		*arg = append([]models.CaseEntry(nil), stored...)
	})
	cursor.On("Close", mock.Anything).Return(nil)
	conn.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursor, nil)
	db.On("Collection", "cases").Return(conn)
	return db, conn
}

func repository(db databases.DatabaseHelper) *cases.Repository {
	return cases.NewRepository(
		databases.NewCaseDatabase(db),
		databases.NewCaseEventDatabase(db),
		databases.NewCaseHistoryDatabase(db),
		nil,
		nil,
	)
}

type memStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Exists(_ context.Context, name string) (bool, error) {
	_, ok := m.objects[name]
	return ok, nil
}

func (m *memStore) Upload(_ context.Context, name string, r io.Reader, contentType string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[name] = b
	m.types[name] = contentType
	return nil
}

func (m *memStore) Delete(_ context.Context, name string) error {
	delete(m.objects, name)
	delete(m.types, name)
	return nil
}

func (m *memStore) Open(_ context.Context, name string) (*storage.Object, error) {
	b, ok := m.objects[name]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{
		ReadCloser:  io.NopCloser(bytes.NewReader(b)),
		Name:        name,
		ContentType: m.types[name],
		Length:      int64(len(b)),
	}, nil
}
