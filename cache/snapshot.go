package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linesmerrill/case-diary-api/models"
)

// SnapshotKeyPrefix prefixes the key holding a user's serialized case list
const SnapshotKeyPrefix = "legalCases:"

// SnapshotKey returns the cache key of userID's case list
func SnapshotKey(userID string) string {
	return SnapshotKeyPrefix + userID
}

// Snapshots stores each user's whole case list as one JSON array
type Snapshots struct {
	cache Cache
	ttl   time.Duration
}

// NewSnapshots returns a snapshot store over c. A nil c stores nothing.
func NewSnapshots(c Cache, ttl time.Duration) *Snapshots {
	if c == nil {
		c = NewNoop()
	}
	return &Snapshots{cache: c, ttl: ttl}
}

// Load returns the cached list for userID. The bool is false on a miss.
func (s *Snapshots) Load(ctx context.Context, userID string) ([]models.CaseEntry, bool, error) {
	b, ok, err := s.cache.Get(ctx, SnapshotKey(userID))
	if err != nil || !ok {
		return nil, false, err
	}
	cases, err := DecodeSnapshot(b)
	if err != nil {
		return nil, false, err
	}
	return cases, true, nil
}

// Save overwrites the cached list for userID
func (s *Snapshots) Save(ctx context.Context, userID string, cases []models.CaseEntry) error {
	if cases == nil {
		cases = []models.CaseEntry{}
	}
	b, err := json.Marshal(cases)
	if err != nil {
		return fmt.Errorf("failed to encode case snapshot: %w", err)
	}
	return s.cache.Set(ctx, SnapshotKey(userID), b, s.ttl)
}

// Invalidate drops the cached list for userID
func (s *Snapshots) Invalidate(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, SnapshotKey(userID))
}

// DecodeSnapshot parses a serialized case list
func DecodeSnapshot(b []byte) ([]models.CaseEntry, error) {
	var cases []models.CaseEntry
	if err := json.Unmarshal(b, &cases); err != nil {
		return nil, fmt.Errorf("failed to decode case snapshot: %w", err)
	}
	return cases, nil
}
