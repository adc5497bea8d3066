package models

import (
	"fmt"
	"strings"
	"time"
)

// CaseStatus is one stage of a case lifecycle
type CaseStatus string

// The full set of case statuses. Anything else is rejected on write.
const (
	StatusSummons   CaseStatus = "summons"
	StatusHearing   CaseStatus = "hearing"
	StatusJudgment  CaseStatus = "judgment"
	StatusAppeal    CaseStatus = "appeal"
	StatusPending   CaseStatus = "pending"
	StatusActive    CaseStatus = "active"
	StatusCompleted CaseStatus = "completed"
	StatusUrgent    CaseStatus = "urgent"
	StatusDismissed CaseStatus = "dismissed"
	StatusSettled   CaseStatus = "settled"
)

// CaseStatuses lists every valid status in display order
var CaseStatuses = []CaseStatus{
	StatusSummons,
	StatusHearing,
	StatusJudgment,
	StatusAppeal,
	StatusPending,
	StatusActive,
	StatusCompleted,
	StatusUrgent,
	StatusDismissed,
	StatusSettled,
}

// legacyStatuses is the deprecated four-value set used by the first revision of the diary.
var legacyStatuses = map[string]CaseStatus{
	"pending":   StatusPending,
	"active":    StatusActive,
	"completed": StatusCompleted,
	"urgent":    StatusUrgent,
}

// Valid reports whether s is a member of the status enumeration
func (s CaseStatus) Valid() bool {
	for _, v := range CaseStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Legacy reports whether s belongs to the deprecated four-value subset
func (s CaseStatus) Legacy() bool {
	_, ok := legacyStatuses[string(s)]
	return ok
}

// ParseCaseStatus returns the status named by s. The match is exact.
func ParseCaseStatus(s string) (CaseStatus, error) {
	status := CaseStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown case status %q", s)
	}
	return status, nil
}

// MigrateLegacyStatus maps a status written by an older client onto the current
// enumeration. Legacy values may differ in case or carry surrounding whitespace.
func MigrateLegacyStatus(s string) (CaseStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if status, ok := legacyStatuses[normalized]; ok {
		return status, nil
	}
	return ParseCaseStatus(normalized)
}

// CaseEntry holds the structure for the cases collection in mongo
type CaseEntry struct {
	ID           string     `json:"id" bson:"_id"`
	PreviousDate time.Time  `json:"previousDate" bson:"previousDate"`
	NextDate     time.Time  `json:"nextDate" bson:"nextDate"`
	Status       CaseStatus `json:"status" bson:"status"`
	CaseDetails  string     `json:"caseDetails" bson:"caseDetails"`
	UserID       string     `json:"userId" bson:"userId"`
	TeamID       *string    `json:"teamId" bson:"teamId"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// CaseInput is the set of user editable fields, used for both create and full update
type CaseInput struct {
	PreviousDate *time.Time `json:"previousDate" validate:"required"`
	NextDate     *time.Time `json:"nextDate" validate:"required"`
	Status       CaseStatus `json:"status" validate:"required,casestatus"`
	CaseDetails  string     `json:"caseDetails" validate:"required,notblank"`
	TeamID       *string    `json:"teamId"`
}

// CaseStats is the dashboard summary of a case collection
type CaseStats struct {
	Total    int                `json:"total"`
	ByStatus map[CaseStatus]int `json:"byStatus"`
	Upcoming int                `json:"upcoming"`
	Today    int                `json:"today"`
}
