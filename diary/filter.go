package diary

import (
	"fmt"
	"strings"
	"time"

	"github.com/linesmerrill/case-diary-api/models"
)

// DateBucket classifies a case's next date relative to now
type DateBucket string

const (
	BucketAll      DateBucket = "all"
	BucketUpcoming DateBucket = "upcoming"
	BucketPast     DateBucket = "past"
)

// StatusAll disables the status predicate
const StatusAll models.CaseStatus = "all"

// Filter is the list selector state: free text, status and date bucket
type Filter struct {
	Query  string
	Status models.CaseStatus
	Bucket DateBucket
}

// ParseFilter builds a Filter from raw selector values. Empty values mean "all".
func ParseFilter(query, status, bucket string) (Filter, error) {
	f := Filter{Query: query, Status: StatusAll, Bucket: BucketAll}

	if status != "" && status != string(StatusAll) {
		s, err := models.ParseCaseStatus(status)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		f.Status = s
	}

	switch DateBucket(bucket) {
	case "", BucketAll:
	case BucketUpcoming, BucketPast:
		f.Bucket = DateBucket(bucket)
	default:
		return Filter{}, fmt.Errorf("%w: unknown date bucket %q", ErrInvalidFilter, bucket)
	}

	return f, nil
}

// Clear returns the filter that lets every case through
func (f Filter) Clear() Filter {
	return Filter{Status: StatusAll, Bucket: BucketAll}
}

// Active reports whether any selector narrows the list
func (f Filter) Active() bool {
	return strings.TrimSpace(f.Query) != "" ||
		(f.Status != "" && f.Status != StatusAll) ||
		(f.Bucket != "" && f.Bucket != BucketAll)
}

// Match reports whether entry passes every predicate of the filter
func (f Filter) Match(entry models.CaseEntry, now time.Time) bool {
	if q := strings.TrimSpace(f.Query); q != "" {
		if !strings.Contains(strings.ToLower(entry.CaseDetails), strings.ToLower(f.Query)) {
			return false
		}
	}

	if f.Status != "" && f.Status != StatusAll && entry.Status != f.Status {
		return false
	}

	switch f.Bucket {
	case BucketUpcoming:
		return !entry.NextDate.Before(now)
	case BucketPast:
		return entry.NextDate.Before(now)
	}
	return true
}

// Compose returns the cases that match f, keeping their input order
func Compose(cases []models.CaseEntry, f Filter, now time.Time) []models.CaseEntry {
	filtered := make([]models.CaseEntry, 0, len(cases))
	for _, c := range cases {
		if f.Match(c, now) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
