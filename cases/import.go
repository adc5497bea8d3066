package cases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/diary"
	"github.com/linesmerrill/case-diary-api/models"
)

// LocalRecord is a case as kept in a browser's local storage by the offline client
type LocalRecord struct {
	ID           string  `json:"id"`
	PreviousDate string  `json:"previousDate"`
	NextDate     string  `json:"nextDate"`
	Status       string  `json:"status"`
	CaseDetails  string  `json:"caseDetails"`
	TeamID       *string `json:"teamId"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

// ImportResult counts what an import did
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// DecodeLocalRecords parses the JSON array stored under the legalCases key
func DecodeLocalRecords(b []byte) ([]LocalRecord, error) {
	var records []LocalRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("failed to decode local cases: %w", err)
	}
	return records, nil
}

// Import stores local records as cases owned by userID. Statuses from older clients
// are migrated and bare dates are read as midnight in loc. Records that fail validation
// or are already stored are skipped and reported. The snapshot is rebuilt even when an
// insert fails partway through.
func (r *Repository) Import(ctx context.Context, userID string, records []LocalRecord, loc *time.Location) (ImportResult, error) {
	var result ImportResult
	if userID == "" {
		return result, ErrNoSession
	}
	defer r.refreshSnapshot(ctx, userID)

	for i, rec := range records {
		c, err := r.fromLocal(userID, rec, loc)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("record %d: %v", i, err))
			continue
		}
		if _, err = r.Cases.InsertOne(ctx, c); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				result.Skipped++
				result.Errors = append(result.Errors, fmt.Sprintf("record %d: case %s already exists", i, c.ID))
				continue
			}
			zap.S().Errorw("import aborted",
				"userId", userID,
				"imported", result.Imported,
				"error", err)
			return result, fmt.Errorf("failed to insert imported case %s: %w", c.ID, err)
		}
		result.Imported++
	}

	zap.S().Infow("imported local cases",
		"userId", userID,
		"imported", result.Imported,
		"skipped", result.Skipped)
	return result, nil
}

func (r *Repository) fromLocal(userID string, rec LocalRecord, loc *time.Location) (models.CaseEntry, error) {
	status, err := models.MigrateLegacyStatus(rec.Status)
	if err != nil {
		return models.CaseEntry{}, err
	}
	prev, err := parseLocalTime(rec.PreviousDate, loc)
	if err != nil {
		return models.CaseEntry{}, fmt.Errorf("previousDate: %w", err)
	}
	next, err := parseLocalTime(rec.NextDate, loc)
	if err != nil {
		return models.CaseEntry{}, fmt.Errorf("nextDate: %w", err)
	}

	in, err := r.validate(models.CaseInput{
		PreviousDate: &prev,
		NextDate:     &next,
		Status:       status,
		CaseDetails:  rec.CaseDetails,
		TeamID:       rec.TeamID,
	})
	if err != nil {
		return models.CaseEntry{}, err
	}

	now := r.timestamp()
	created, err := parseLocalTime(rec.CreatedAt, loc)
	if err != nil {
		created = now
	}
	updated, err := parseLocalTime(rec.UpdatedAt, loc)
	if err != nil {
		updated = created
	}

	id := strings.TrimSpace(rec.ID)
	if _, err = uuid.Parse(id); err != nil {
		id = uuid.New().String()
	}

	return models.CaseEntry{
		ID:           id,
		PreviousDate: storedTime(*in.PreviousDate),
		NextDate:     storedTime(*in.NextDate),
		Status:       in.Status,
		CaseDetails:  in.CaseDetails,
		UserID:       userID,
		TeamID:       in.TeamID,
		CreatedAt:    storedTime(created),
		UpdatedAt:    storedTime(updated),
	}, nil
}

// parseLocalTime accepts full timestamps, and minute or bare yyyy-mm-dd values read in loc
func parseLocalTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing date")
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", s, loc); err == nil {
		return t, nil
	}
	if d, err := diary.ParseDay(s); err == nil {
		return d.Start(loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
