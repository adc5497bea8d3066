package cases

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/linesmerrill/case-diary-api/databases"
	"github.com/linesmerrill/case-diary-api/models"
	"github.com/linesmerrill/case-diary-api/storage"
)

func field(filter interface{}, key string) (string, bool) {
	m, ok := filter.(bson.M)
	if !ok {
		return "", false
	}
	v, ok := m[key].(string)
	return v, ok
}

type fakeCaseDB struct {
	mu        sync.Mutex
	cases     []models.CaseEntry
	finds     int
	findErr   error
	insertErr func(models.CaseEntry) error
}

func (f *fakeCaseDB) match(filter interface{}, c models.CaseEntry) bool {
	if id, ok := field(filter, "_id"); ok && id != c.ID {
		return false
	}
	if uid, ok := field(filter, "userId"); ok && uid != c.UserID {
		return false
	}
	return true
}

func (f *fakeCaseDB) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) (*models.CaseEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.cases {
		if f.match(filter, c) {
			found := c
			return &found, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (f *fakeCaseDB) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]models.CaseEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []models.CaseEntry
	for _, c := range f.cases {
		if f.match(filter, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCaseDB) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (databases.InsertOneResultHelper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := document.(models.CaseEntry)
	if f.insertErr != nil {
		if err := f.insertErr(c); err != nil {
			return nil, err
		}
	}
	f.cases = append(f.cases, c)
	return nil, nil
}

func (f *fakeCaseDB) UpdateOne(_ context.Context, filter interface{}, update interface{}, _ ...*options.UpdateOptions) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := update.(bson.M)["$set"].(bson.M)
	for i, c := range f.cases {
		if !f.match(filter, c) {
			continue
		}
		c.PreviousDate = set["previousDate"].(time.Time)
		c.NextDate = set["nextDate"].(time.Time)
		c.Status = set["status"].(models.CaseStatus)
		c.CaseDetails = set["caseDetails"].(string)
		c.TeamID = set["teamId"].(*string)
		c.UpdatedAt = set["updatedAt"].(time.Time)
		f.cases[i] = c
		return 1, nil
	}
	return 0, nil
}

func (f *fakeCaseDB) DeleteOne(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.cases {
		if f.match(filter, c) {
			f.cases = append(f.cases[:i], f.cases[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type fakeEventDB struct {
	events    []models.CaseEvent
	insertErr error
}

func (f *fakeEventDB) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]models.CaseEvent, error) {
	caseID, _ := field(filter, "caseId")
	var out []models.CaseEvent
	for _, e := range f.events {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventDB) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (databases.InsertOneResultHelper, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.events = append(f.events, document.(models.CaseEvent))
	return nil, nil
}

type fakeHistoryDB struct {
	rows      []models.CaseHistory
	insertErr error
}

func (f *fakeHistoryDB) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) ([]models.CaseHistory, error) {
	caseID, _ := field(filter, "caseId")
	var out []models.CaseHistory
	for _, r := range f.rows {
		if r.CaseID == caseID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHistoryDB) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (databases.InsertOneResultHelper, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.rows = append(f.rows, document.(models.CaseHistory))
	return nil, nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[name]
	return ok, nil
}

func (s *fakeStore) Upload(_ context.Context, name string, r io.Reader, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != "" && bytes.Contains([]byte(name), []byte(s.failOn)) {
		return errors.New("bucket unavailable")
	}
	if _, ok := s.objects[name]; ok {
		return fmt.Errorf("%s: %w", name, storage.ErrObjectExists)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[name] = b
	return nil
}

func (s *fakeStore) Open(_ context.Context, name string) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[name]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{ReadCloser: io.NopCloser(bytes.NewReader(b)), Name: name}, nil
}

func (s *fakeStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, name)
	return nil
}
