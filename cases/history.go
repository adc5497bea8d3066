package cases

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/databases"
	"github.com/linesmerrill/case-diary-api/diary"
	"github.com/linesmerrill/case-diary-api/models"
	"github.com/linesmerrill/case-diary-api/storage"
	"github.com/linesmerrill/case-diary-api/validation"
)

// DefaultHistoryAction is used when a manual entry names no action
const DefaultHistoryAction = "Manual update"

// Upload is one document attached to a new history entry
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// HistoryEntryInput is a manual history entry as submitted by the user
type HistoryEntryInput struct {
	EventDate   *time.Time
	Action      string
	StageChange string
	Notes       string
	Links       []string
	Files       []Upload
}

// HistoryService reads the merged history feed of a case and records manual entries
type HistoryService struct {
	Repo      *Repository
	History   databases.CaseHistoryDatabase
	Events    databases.CaseEventDatabase
	Store     storage.Store
	Signer    diary.URLSigner
	Validator *validation.Validator

	now func() time.Time
}

// NewHistoryService returns a history service reading case ownership through repo
func NewHistoryService(repo *Repository, store storage.Store, signer diary.URLSigner) *HistoryService {
	return &HistoryService{
		Repo:      repo,
		History:   repo.History,
		Events:    repo.Events,
		Store:     store,
		Signer:    signer,
		Validator: repo.Validator,
		now:       time.Now,
	}
}

// List returns the merged history of caseID, newest first, narrowed by f. Stored
// document paths are replaced with signed links.
func (h *HistoryService) List(ctx context.Context, userID, caseID string, f diary.HistoryFilter, loc *time.Location) ([]models.HistoryItem, error) {
	if _, err := h.Repo.Get(ctx, userID, caseID); err != nil {
		return nil, err
	}

	rows, err := h.History.Find(ctx, bson.M{"caseId": caseID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to load history of case %s: %w", caseID, err)
	}
	events, err := h.Events.Find(ctx, bson.M{"caseId": caseID}, options.Find().SetSort(bson.D{{Key: "changedAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to load date changes of case %s: %w", caseID, err)
	}

	items := diary.FilterHistory(diary.Merge(rows, events), f, loc)
	if h.Signer == nil {
		return items, nil
	}
	return diary.ResolveFiles(ctx, items, h.Signer, diary.SignedURLTTL), nil
}

// Add records a manual history entry on caseID. Documents are uploaded before the row
// is written. If an upload or the insert fails, documents already uploaded for the
// entry are removed and no row is written.
func (h *HistoryService) Add(ctx context.Context, userID, caseID string, in HistoryEntryInput) (*models.CaseHistory, error) {
	if _, err := h.Repo.Get(ctx, userID, caseID); err != nil {
		return nil, err
	}

	if in.EventDate == nil || in.EventDate.IsZero() {
		return nil, fmt.Errorf("%w: event date is required", ErrInvalid)
	}
	action := strings.TrimSpace(in.Action)
	notes := strings.TrimSpace(in.Notes)
	links, err := h.normalizeLinks(in.Links)
	if err != nil {
		return nil, err
	}
	if action == "" && notes == "" && len(links) == 0 && len(in.Files) == 0 {
		return nil, fmt.Errorf("%w: an action, notes, a link or a document is required", ErrInvalid)
	}
	if action == "" {
		action = DefaultHistoryAction
	}

	paths := make([]string, 0, len(in.Files))
	for _, f := range in.Files {
		if h.Store == nil {
			return nil, fmt.Errorf("document storage is not configured")
		}
		name := storage.ObjectName(caseID, f.Filename)
		if err = h.Store.Upload(ctx, name, f.Body, f.ContentType); err != nil {
			zap.S().Errorw("failed to upload history document",
				"caseId", caseID,
				"filename", f.Filename,
				"error", err)
			h.removeUploads(ctx, caseID, paths)
			return nil, fmt.Errorf("failed to upload %s: %w", f.Filename, err)
		}
		paths = append(paths, name)
	}

	eventDate := storedTime(*in.EventDate)
	row := models.CaseHistory{
		ID:          uuid.New().String(),
		CaseID:      caseID,
		EventDate:   &eventDate,
		Action:      action,
		StageChange: strings.TrimSpace(in.StageChange),
		Notes:       notes,
		Source:      models.SourceManual,
		CreatedBy:   userID,
		CreatedAt:   storedTime(h.now()),
	}
	if len(links) > 0 {
		row.DocumentLinks = links
	}
	if len(paths) > 0 {
		row.DocumentFiles = paths
	}

	if _, err = h.History.InsertOne(ctx, row); err != nil {
		h.removeUploads(ctx, caseID, paths)
		return nil, fmt.Errorf("failed to insert history entry: %w", err)
	}
	return &row, nil
}

func (h *HistoryService) removeUploads(ctx context.Context, caseID string, paths []string) {
	for _, p := range paths {
		if err := h.Store.Delete(ctx, p); err != nil {
			zap.S().Warnw("failed to remove orphaned history document",
				"caseId", caseID,
				"path", p,
				"error", err)
		}
	}
}

// normalizeLinks trims links, prefixes https:// where no scheme is given, rejects
// anything that is not a URL and drops repeats.
func (h *HistoryService) normalizeLinks(raw []string) ([]string, error) {
	seen := make(map[string]bool, len(raw))
	links := make([]string, 0, len(raw))
	for _, l := range raw {
		l = NormalizeLink(l)
		if l == "" || seen[l] {
			continue
		}
		if err := h.Validator.Var(l, "url"); err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid link", ErrInvalid, l)
		}
		if u, err := url.Parse(l); err != nil || u.Host == "" {
			return nil, fmt.Errorf("%w: %q is not a valid link", ErrInvalid, l)
		}
		seen[l] = true
		links = append(links, l)
	}
	return links, nil
}

// NormalizeLink trims l and adds https:// when it has no http(s) scheme
func NormalizeLink(l string) string {
	l = strings.TrimSpace(l)
	if l == "" {
		return ""
	}
	lower := strings.ToLower(l)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		l = "https://" + l
	}
	return l
}
