// Package cases owns the case records of each user: reading them through a per-user
// snapshot cache, writing them to mongo and recording the history a change produces.
package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/cache"
	"github.com/linesmerrill/case-diary-api/databases"
	"github.com/linesmerrill/case-diary-api/models"
	"github.com/linesmerrill/case-diary-api/validation"
)

// StatusChangedAction is the action of the history row written on a status change
const StatusChangedAction = "Status changed"

// Repository reads and writes the cases of one user at a time
type Repository struct {
	Cases     databases.CaseDatabase
	Events    databases.CaseEventDatabase
	History   databases.CaseHistoryDatabase
	Snapshots *cache.Snapshots
	Validator *validation.Validator

	now func() time.Time
}

// NewRepository returns a repository over the given collections. A nil snapshots
// disables caching.
func NewRepository(c databases.CaseDatabase, events databases.CaseEventDatabase, history databases.CaseHistoryDatabase, snapshots *cache.Snapshots, v *validation.Validator) *Repository {
	if snapshots == nil {
		snapshots = cache.NewSnapshots(nil, 0)
	}
	if v == nil {
		v = validation.New()
	}
	return &Repository{
		Cases:     c,
		Events:    events,
		History:   history,
		Snapshots: snapshots,
		Validator: v,
		now:       time.Now,
	}
}

// List returns every case owned by userID, oldest first
func (r *Repository) List(ctx context.Context, userID string) ([]models.CaseEntry, error) {
	if userID == "" {
		return nil, ErrNoSession
	}

	cached, ok, err := r.Snapshots.Load(ctx, userID)
	if err != nil {
		zap.S().Warnw("failed to read case snapshot, falling back to database",
			"userId", userID,
			"error", err)
	}
	if ok {
		return cached, nil
	}

	list, err := r.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	r.saveSnapshot(ctx, userID, list)
	return list, nil
}

// Get returns the case id if userID owns it
func (r *Repository) Get(ctx context.Context, userID, id string) (*models.CaseEntry, error) {
	if userID == "" {
		return nil, ErrNoSession
	}
	c, err := r.Cases.FindOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get case %s: %w", id, err)
	}
	return c, nil
}

// Create stores a new case owned by userID
func (r *Repository) Create(ctx context.Context, userID string, in models.CaseInput) (*models.CaseEntry, error) {
	if userID == "" {
		return nil, ErrNoSession
	}
	in, err := r.validate(in)
	if err != nil {
		return nil, err
	}

	now := r.timestamp()
	c := models.CaseEntry{
		ID:           uuid.New().String(),
		PreviousDate: storedTime(*in.PreviousDate),
		NextDate:     storedTime(*in.NextDate),
		Status:       in.Status,
		CaseDetails:  in.CaseDetails,
		UserID:       userID,
		TeamID:       in.TeamID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err = r.Cases.InsertOne(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to insert case: %w", err)
	}

	r.refreshSnapshot(ctx, userID)
	return &c, nil
}

// Update replaces every editable field of case id. Changed dates are recorded as case
// events and a changed status as a system history row; failing to record either does
// not undo the update.
func (r *Repository) Update(ctx context.Context, userID, id string, in models.CaseInput) (*models.CaseEntry, error) {
	if userID == "" {
		return nil, ErrNoSession
	}
	in, err := r.validate(in)
	if err != nil {
		return nil, err
	}

	old, err := r.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updated := *old
	updated.PreviousDate = storedTime(*in.PreviousDate)
	updated.NextDate = storedTime(*in.NextDate)
	updated.Status = in.Status
	updated.CaseDetails = in.CaseDetails
	updated.TeamID = in.TeamID
	updated.UpdatedAt = r.timestamp()

	matched, err := r.Cases.UpdateOne(ctx, bson.M{"_id": id, "userId": userID}, bson.M{"$set": bson.M{
		"previousDate": updated.PreviousDate,
		"nextDate":     updated.NextDate,
		"status":       updated.Status,
		"caseDetails":  updated.CaseDetails,
		"teamId":       updated.TeamID,
		"updatedAt":    updated.UpdatedAt,
	}})
	if err != nil {
		return nil, fmt.Errorf("failed to update case %s: %w", id, err)
	}
	if matched == 0 {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	r.recordChanges(ctx, userID, *old, updated)
	r.refreshSnapshot(ctx, userID)
	return &updated, nil
}

// Delete removes case id
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrNoSession
	}
	deleted, err := r.Cases.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete case %s: %w", id, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	r.refreshSnapshot(ctx, userID)
	return nil
}

func (r *Repository) recordChanges(ctx context.Context, userID string, old, updated models.CaseEntry) {
	changedAt := updated.UpdatedAt

	dates := []struct {
		field    models.EventField
		old, new time.Time
	}{
		{models.FieldPreviousDate, old.PreviousDate, updated.PreviousDate},
		{models.FieldNextDate, old.NextDate, updated.NextDate},
	}
	for _, d := range dates {
		if d.old.Equal(d.new) {
			continue
		}
		ev := models.CaseEvent{
			ID:        uuid.New().String(),
			CaseID:    updated.ID,
			Field:     d.field,
			OldDate:   d.old,
			NewDate:   d.new,
			ChangedAt: changedAt,
			ChangedBy: userID,
		}
		if _, err := r.Events.InsertOne(ctx, ev); err != nil {
			zap.S().Errorw("failed to record case date change",
				"caseId", updated.ID,
				"field", d.field,
				"error", err)
		}
	}

	if old.Status != updated.Status {
		row := models.CaseHistory{
			ID:          uuid.New().String(),
			CaseID:      updated.ID,
			Action:      StatusChangedAction,
			StageChange: fmt.Sprintf("%s → %s", old.Status, updated.Status),
			Source:      models.SourceSystem,
			CreatedBy:   userID,
			CreatedAt:   changedAt,
		}
		if _, err := r.History.InsertOne(ctx, row); err != nil {
			zap.S().Errorw("failed to record case status change",
				"caseId", updated.ID,
				"error", err)
		}
	}
}

func (r *Repository) validate(in models.CaseInput) (models.CaseInput, error) {
	in.CaseDetails = strings.TrimSpace(in.CaseDetails)
	if err := r.Validator.Struct(in); err != nil {
		return in, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return in, nil
}

func (r *Repository) load(ctx context.Context, userID string) ([]models.CaseEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	list, err := r.Cases.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	if list == nil {
		list = []models.CaseEntry{}
	}
	return list, nil
}

// refreshSnapshot re-reads the user's cases and overwrites the cached list
func (r *Repository) refreshSnapshot(ctx context.Context, userID string) {
	list, err := r.load(ctx, userID)
	if err != nil {
		zap.S().Warnw("failed to reload cases, dropping snapshot",
			"userId", userID,
			"error", err)
		if err = r.Snapshots.Invalidate(ctx, userID); err != nil {
			zap.S().Warnw("failed to drop case snapshot", "userId", userID, "error", err)
		}
		return
	}
	r.saveSnapshot(ctx, userID, list)
}

func (r *Repository) saveSnapshot(ctx context.Context, userID string, list []models.CaseEntry) {
	if err := r.Snapshots.Save(ctx, userID, list); err != nil {
		zap.S().Warnw("failed to write case snapshot",
			"userId", userID,
			"error", err)
	}
}

func (r *Repository) timestamp() time.Time {
	return storedTime(r.now())
}

// storedTime truncates t to the millisecond precision mongo keeps
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
