package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"inntektlager/internal/income/models"
	"inntektlager/pkg/domain"
	"inntektlager/pkg/platform/sentinel"
)

type mapping struct {
	id        uuid.UUID
	key       models.LookupKey
	recordID  domain.RecordID
	createdAt time.Time
}

// InMemoryStore keeps records and mappings in maps behind one mutex. It
// mirrors PostgresStore semantics, including the newest-mapping-wins lookup
// and the absence of a uniqueness guarantee on the key.
type InMemoryStore struct {
	mu       sync.RWMutex
	records  map[domain.RecordID]*models.IncomeRecord
	mappings []mapping
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[domain.RecordID]*models.IncomeRecord)}
}

func (s *InMemoryStore) LookupLatest(_ context.Context, key models.LookupKey) (*models.IncomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *mapping
	for i := range s.mappings {
		m := &s.mappings[i]
		if !keyMatches(m.key, key) {
			continue
		}
		if best == nil || m.createdAt.After(best.createdAt) {
			best = m
		}
	}
	if best == nil {
		return nil, sentinel.ErrNotFound
	}
	record, ok := s.records[best.recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func keyMatches(stored, requested models.LookupKey) bool {
	if stored.ActorID != requested.ActorID ||
		stored.ContextID != requested.ContextID ||
		stored.ContextType != requested.ContextType ||
		!stored.CalculationDate.Equal(requested.CalculationDate) {
		return false
	}
	// A requested national id also matches mappings stored without one; a
	// request without one wildcards the stored value.
	if requested.NationalID.IsZero() || stored.NationalID.IsZero() {
		return true
	}
	return stored.NationalID == requested.NationalID
}

func (s *InMemoryStore) GetByID(_ context.Context, id domain.RecordID) (*models.IncomeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *InMemoryStore) Insert(_ context.Context, key models.LookupKey, record *models.IncomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records[record.ID] = &copied
	s.mappings = append(s.mappings, mapping{
		id:        uuid.New(),
		key:       key,
		recordID:  record.ID,
		createdAt: record.CreatedAt,
	})
	return nil
}

func (s *InMemoryStore) MarkUsed(_ context.Context, id domain.RecordID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if record.Used {
		return false, nil
	}
	record.Used = true
	return true, nil
}

func (s *InMemoryStore) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if record.Used || record.ManuallyEdited || !record.CreatedAt.Before(cutoff) {
			continue
		}
		delete(s.records, id)
		deleted++
	}
	if deleted > 0 {
		kept := s.mappings[:0]
		for _, m := range s.mappings {
			if _, ok := s.records[m.recordID]; ok {
				kept = append(kept, m)
			}
		}
		s.mappings = kept
	}
	return deleted, nil
}
