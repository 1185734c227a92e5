package eventsync

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/venuekit/venuekit/svc/provider"
)

// SyncStatus is the aggregate status of the last sync run. It reflects
// pipeline completion, not per-provider success; per-provider outcomes live
// in SyncData.
type SyncStatus string

const (
	SyncStatusSyncing SyncStatus = "SYNCING"
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusFailed  SyncStatus = "FAILED"
)

// Direction selects the sync direction. Only export carries full logic;
// import is a stub returning empty results.
type Direction string

const (
	DirectionExport Direction = "export"
	DirectionImport Direction = "import"
)

// SyncEntry is one provider's outcome from the last sync run.
type SyncEntry struct {
	ExternalID string    `json:"external_id,omitempty"`
	URL        string    `json:"url,omitempty"`
	Error      string    `json:"error,omitempty"`
	SyncedAt   time.Time `json:"synced_at"`
}

// EventSync tracks the export state of one event across providers.
type EventSync struct {
	ID             uuid.UUID
	BusinessID     string
	Details        provider.EventDetails
	LastSyncStatus SyncStatus
	LastSyncError  string
	ExternalIDs    []string
	SyncData       map[provider.Provider]SyncEntry
	LastSyncedAt   *time.Time
	UpdatedAt      time.Time
}

// Store reads and updates event sync records.
type Store interface {
	GetEventSync(ctx context.Context, id uuid.UUID) (EventSync, error)
	UpdateEventSync(ctx context.Context, record EventSync) error
}

// MemoryStore is an in-memory Store for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]EventSync
}

func NewMemoryStore(records ...EventSync) *MemoryStore {
	m := make(map[uuid.UUID]EventSync, len(records))
	for _, r := range records {
		m[r.ID] = r
	}
	return &MemoryStore{records: m}
}

func (s *MemoryStore) GetEventSync(ctx context.Context, id uuid.UUID) (EventSync, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return EventSync{}, ErrEventSyncNotFound
	}
	r.SyncData = maps.Clone(r.SyncData)
	return r, nil
}

func (s *MemoryStore) UpdateEventSync(ctx context.Context, record EventSync) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.ID]; !ok {
		return ErrEventSyncNotFound
	}
	record.SyncData = maps.Clone(record.SyncData)
	record.UpdatedAt = time.Now()
	s.records[record.ID] = record
	return nil
}
