package cases

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/case-diary-api/diary"
	"github.com/linesmerrill/case-diary-api/models"
	"github.com/linesmerrill/case-diary-api/storage"
)

type signerFunc func(ctx context.Context, path string, ttl time.Duration) (string, error)

func (f signerFunc) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	return f(ctx, path, ttl)
}

func newHistoryFixture() (*repoFixture, *HistoryService, *fakeStore) {
	f := newRepoFixture()
	f.cases.cases = []models.CaseEntry{{ID: "c1", UserID: "u1", CaseDetails: "a", Status: models.StatusPending}}
	store := newFakeStore()
	signer := signerFunc(func(_ context.Context, path string, _ time.Duration) (string, error) {
		if ok, _ := store.Exists(context.Background(), path); !ok {
			return "", storage.ErrObjectNotFound
		}
		return "https://signed.test/" + path, nil
	})
	h := NewHistoryService(f.repo, store, signer)
	h.now = func() time.Time { return fixedNow }
	return f, h, store
}

func TestHistoryAddDefaults(t *testing.T) {
	_, h, _ := newHistoryFixture()
	eventDate := time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)

	row, err := h.Add(context.Background(), "u1", "c1", HistoryEntryInput{
		EventDate: &eventDate,
		Notes:     "  filed  ",
		Links:     []string{"courts.example.org/order", "https://courts.example.org/order", " "},
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultHistoryAction, row.Action)
	assert.Equal(t, "filed", row.Notes)
	assert.Equal(t, []string{"https://courts.example.org/order"}, row.DocumentLinks)
	assert.Equal(t, models.SourceManual, row.Source)
	assert.Equal(t, "u1", row.CreatedBy)
	assert.Equal(t, fixedNow, row.CreatedAt)
}

func TestHistoryAddValidation(t *testing.T) {
	f, h, _ := newHistoryFixture()
	eventDate := time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)

	_, err := h.Add(context.Background(), "u1", "c1", HistoryEntryInput{Notes: "no date"})
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = h.Add(context.Background(), "u1", "c1", HistoryEntryInput{EventDate: &eventDate})
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = h.Add(context.Background(), "u1", "c1", HistoryEntryInput{EventDate: &eventDate, Links: []string{"https://"}})
	assert.True(t, errors.Is(err, ErrInvalid))

	_, err = h.Add(context.Background(), "u2", "c1", HistoryEntryInput{EventDate: &eventDate, Notes: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.Empty(t, f.history.rows)
}

func TestHistoryAddUploadsFiles(t *testing.T) {
	f, h, store := newHistoryFixture()
	eventDate := time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)

	row, err := h.Add(context.Background(), "u1", "c1", HistoryEntryInput{
		EventDate: &eventDate,
		Files: []Upload{
			{Filename: "order.pdf", ContentType: "application/pdf", Body: strings.NewReader("%PDF")},
			{Filename: "scan.PNG", ContentType: "image/png", Body: strings.NewReader("png")},
		},
	})
	require.NoError(t, err)

	require.Len(t, row.DocumentFiles, 2)
	assert.True(t, strings.HasPrefix(row.DocumentFiles[0], "c1/"))
	assert.True(t, strings.HasSuffix(row.DocumentFiles[0], ".pdf"))
	assert.True(t, strings.HasSuffix(row.DocumentFiles[1], ".png"))
	assert.Len(t, store.objects, 2)
	assert.Len(t, f.history.rows, 1)
}

func TestHistoryAddUploadFailureWritesNothing(t *testing.T) {
	f, h, store := newHistoryFixture()
	store.failOn = ".png"
	eventDate := time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)

	_, err := h.Add(context.Background(), "u1", "c1", HistoryEntryInput{
		EventDate: &eventDate,
		Files: []Upload{
			{Filename: "order.pdf", Body: strings.NewReader("%PDF")},
			{Filename: "scan.png", Body: strings.NewReader("png")},
		},
	})
	assert.Error(t, err)
	assert.Empty(t, f.history.rows)
	assert.Empty(t, store.objects)
}

func TestHistoryAddInsertFailureRemovesDocuments(t *testing.T) {
	f, h, store := newHistoryFixture()
	f.history.insertErr = errors.New("write concern timeout")
	eventDate := time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)

	_, err := h.Add(context.Background(), "u1", "c1", HistoryEntryInput{
		EventDate: &eventDate,
		Files:     []Upload{{Filename: "order.pdf", Body: strings.NewReader("%PDF")}},
	})
	assert.Error(t, err)
	assert.Empty(t, store.objects)
}

func TestHistoryListMergesAndResolves(t *testing.T) {
	f, h, store := newHistoryFixture()
	store.objects["c1/a.pdf"] = []byte("a")
	eventDate := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f.history.rows = []models.CaseHistory{
		{ID: "h1", CaseID: "c1", EventDate: &eventDate, Action: "Filed", Notes: "filed", Source: models.SourceManual, DocumentFiles: []string{"c1/a.pdf", "c1/gone.pdf"}, CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "other", CaseID: "c2", CreatedAt: time.Date(2024, 5, 3, 9, 0, 0, 0, time.UTC)},
	}
	f.events.events = []models.CaseEvent{
		{ID: "e1", CaseID: "c1", Field: models.FieldNextDate, NewDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), ChangedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)},
	}

	items, err := h.List(context.Background(), "u1", "c1", diary.HistoryFilter{}, time.UTC)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "e1", items[0].ID)
	assert.Equal(t, "Next date updated", items[0].Action)
	assert.Equal(t, []string{"https://signed.test/c1/a.pdf"}, items[1].Files)

	_, err = h.List(context.Background(), "u2", "c1", diary.HistoryFilter{}, time.UTC)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestHistoryListFiltered(t *testing.T) {
	f, h, _ := newHistoryFixture()
	f.history.rows = []models.CaseHistory{
		{ID: "h1", CaseID: "c1", Action: "Hearing held", CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "h2", CaseID: "c1", Action: "Filed", CreatedAt: time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)},
	}

	items, err := h.List(context.Background(), "u1", "c1", diary.HistoryFilter{Action: "hearing"}, time.UTC)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "h1", items[0].ID)
}

func TestNormalizeLink(t *testing.T) {
	assert.Equal(t, "https://example.org", NormalizeLink(" example.org "))
	assert.Equal(t, "http://example.org", NormalizeLink("http://example.org"))
	assert.Equal(t, "HTTPS://example.org", NormalizeLink("HTTPS://example.org"))
	assert.Equal(t, "", NormalizeLink("   "))
}
