package diary

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/case-diary-api/models"
)

// Entry is one record feeding a case's history. The set of implementations is closed:
// ManualEntry, SystemEntry and LegacyEvent.
type Entry interface {
	Item() models.HistoryItem
	entry()
}

// ManualEntry is a history row written by a user
type ManualEntry struct {
	Row models.CaseHistory
}

// SystemEntry is a history row written by the server on a status change
type SystemEntry struct {
	Row models.CaseHistory
}

// LegacyEvent is a date change recorded in the case_events collection
type LegacyEvent struct {
	Event models.CaseEvent
}

func (ManualEntry) entry() {}
func (SystemEntry) entry() {}
func (LegacyEvent) entry() {}

// Item normalizes the row. A row without a source is manual; any other declared
// source is kept.
func (e ManualEntry) Item() models.HistoryItem {
	source := e.Row.Source
	if source == "" {
		source = models.SourceManual
	}
	return rowItem(e.Row, source)
}

// Item normalizes the row
func (e SystemEntry) Item() models.HistoryItem {
	return rowItem(e.Row, models.SourceSystem)
}

// Item synthesizes an action from the changed field. The new date becomes the event date.
func (e LegacyEvent) Item() models.HistoryItem {
	newDate := e.Event.NewDate
	return models.HistoryItem{
		ID:        e.Event.ID,
		CreatedAt: e.Event.ChangedAt,
		EventDate: &newDate,
		Action:    LegacyAction(e.Event.Field),
		Source:    models.SourceEvent,
	}
}

// LegacyAction names the change recorded by a legacy event
func LegacyAction(field models.EventField) string {
	if field == models.FieldPreviousDate {
		return "Previous date updated"
	}
	return "Next date updated"
}

// EntryFromRow wraps a case_history row in the Entry matching its source.
// Rows without a source are manual. Rows with an unknown source are logged and
// read as manual entries keeping the source they declare.
func EntryFromRow(row models.CaseHistory) Entry {
	switch row.Source {
	case models.SourceSystem:
		return SystemEntry{Row: row}
	case models.SourceManual, "":
		return ManualEntry{Row: row}
	}
	zap.S().Warnw("unexpected history row source",
		"historyId", row.ID,
		"caseId", row.CaseID,
		"source", row.Source)
	return ManualEntry{Row: row}
}

func rowItem(row models.CaseHistory, source models.HistorySource) models.HistoryItem {
	item := models.HistoryItem{
		ID:          row.ID,
		CreatedAt:   row.CreatedAt,
		Action:      row.Action,
		StageChange: row.StageChange,
		Notes:       row.Notes,
		Source:      source,
	}
	if row.EventDate != nil {
		d := *row.EventDate
		item.EventDate = &d
	}
	if len(row.DocumentLinks) > 0 {
		item.Links = append([]string(nil), row.DocumentLinks...)
	}
	if len(row.DocumentFiles) > 0 {
		item.Files = append([]string(nil), row.DocumentFiles...)
	}
	return item
}

// Merge combines history rows and legacy events into one feed, newest first. Items with
// equal timestamps keep rows ahead of events, each in input order.
func Merge(rows []models.CaseHistory, events []models.CaseEvent) []models.HistoryItem {
	entries := make([]Entry, 0, len(rows)+len(events))
	for _, r := range rows {
		entries = append(entries, EntryFromRow(r))
	}
	for _, ev := range events {
		entries = append(entries, LegacyEvent{Event: ev})
	}
	return MergeEntries(entries)
}

// MergeEntries normalizes entries and orders them newest first
func MergeEntries(entries []Entry) []models.HistoryItem {
	items := make([]models.HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.Item())
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items
}

// HistoryFilter narrows a history feed. Zero fields let everything through.
type HistoryFilter struct {
	Start    *Day
	End      *Day
	Action   string
	Keywords string
}

// ParseHistoryFilter builds a HistoryFilter from raw query values
func ParseHistoryFilter(start, end, action, keywords string) (HistoryFilter, error) {
	f := HistoryFilter{Action: action, Keywords: keywords}
	if start != "" {
		d, err := ParseDay(start)
		if err != nil {
			return HistoryFilter{}, err
		}
		f.Start = &d
	}
	if end != "" {
		d, err := ParseDay(end)
		if err != nil {
			return HistoryFilter{}, err
		}
		f.End = &d
	}
	return f, nil
}

// Match reports whether item passes the filter. The item is dated by its event date,
// or by its creation time when it has none.
func (f HistoryFilter) Match(item models.HistoryItem, loc *time.Location) bool {
	if f.Start != nil || f.End != nil {
		at := item.CreatedAt
		if item.EventDate != nil {
			at = *item.EventDate
		}
		day := DayOf(at, loc)
		if f.Start != nil && day.Before(*f.Start) {
			return false
		}
		if f.End != nil && day.After(*f.End) {
			return false
		}
	}

	if f.Action != "" && !strings.Contains(strings.ToLower(item.Action), strings.ToLower(f.Action)) {
		return false
	}

	if kw := strings.TrimSpace(f.Keywords); kw != "" {
		if !strings.Contains(strings.ToLower(item.Notes), strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

// FilterHistory returns the items passing f, keeping their order
func FilterHistory(items []models.HistoryItem, f HistoryFilter, loc *time.Location) []models.HistoryItem {
	filtered := make([]models.HistoryItem, 0, len(items))
	for _, item := range items {
		if f.Match(item, loc) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
