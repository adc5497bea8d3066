package models

import "time"

// HistorySource tags where a history item came from
type HistorySource string

const (
	// SourceManual is an entry typed in by the user
	SourceManual HistorySource = "manual"
	// SourceSystem is an entry written by the server when a case changes
	SourceSystem HistorySource = "system"
	// SourceEvent is a date change read from the legacy case_events collection
	SourceEvent HistorySource = "event"
)

// EventField names the date field a legacy case event records a change of
type EventField string

const (
	FieldPreviousDate EventField = "previous_date"
	FieldNextDate     EventField = "next_date"
)

// CaseHistory holds the structure for the case_history collection in mongo
type CaseHistory struct {
	ID            string        `json:"id" bson:"_id"`
	CaseID        string        `json:"caseId" bson:"caseId"`
	EventDate     *time.Time    `json:"eventDate" bson:"eventDate"`
	Action        string        `json:"action" bson:"action"`
	StageChange   string        `json:"stageChange,omitempty" bson:"stageChange,omitempty"`
	DocumentLinks []string      `json:"documentLinks,omitempty" bson:"documentLinks,omitempty"`
	DocumentFiles []string      `json:"documentFiles,omitempty" bson:"documentFiles,omitempty"`
	Notes         string        `json:"notes,omitempty" bson:"notes,omitempty"`
	Source        HistorySource `json:"source" bson:"source"`
	CreatedBy     string        `json:"createdBy" bson:"createdBy"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
}

// CaseEvent holds the structure for the legacy case_events collection in mongo
type CaseEvent struct {
	ID        string     `json:"id" bson:"_id"`
	CaseID    string     `json:"caseId" bson:"caseId"`
	Field     EventField `json:"field" bson:"field"`
	OldDate   time.Time  `json:"oldDate" bson:"oldDate"`
	NewDate   time.Time  `json:"newDate" bson:"newDate"`
	ChangedAt time.Time  `json:"changedAt" bson:"changedAt"`
	ChangedBy string     `json:"changedBy" bson:"changedBy"`
}

// HistoryItem is one normalized entry of a case's history feed
type HistoryItem struct {
	ID          string        `json:"id"`
	CreatedAt   time.Time     `json:"createdAt"`
	EventDate   *time.Time    `json:"eventDate"`
	Action      string        `json:"action"`
	StageChange string        `json:"stageChange,omitempty"`
	Notes       string        `json:"notes,omitempty"`
	Links       []string      `json:"documentLinks,omitempty"`
	Files       []string      `json:"documentFiles,omitempty"`
	Source      HistorySource `json:"source"`
}
