package directory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// MemoryStore is an in-memory Store used by tests and single-process
// setups. It mirrors the PostgresStore semantics, including optimistic
// versioning and the schema name uniqueness rule for non-deleted rows.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]tenant.Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]tenant.Record),
		now:     time.Now,
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.now = now
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (tenant.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return tenant.Record{}, tenant.ErrTenantNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Create(ctx context.Context, rec tenant.Record) (tenant.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return tenant.Record{}, fmt.Errorf("directory: tenant %q already exists", rec.ID)
	}
	for _, existing := range s.records {
		if existing.SchemaName == rec.SchemaName && existing.Status != tenant.StatusDeleted {
			return tenant.Record{}, fmt.Errorf("directory: schema %q already in use", rec.SchemaName)
		}
	}

	now := s.now()
	rec.Version = 1
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.records[rec.ID] = rec
	return rec, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, target tenant.Status, expectedVersion int64) (tenant.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return tenant.Record{}, tenant.ErrTenantNotFound
	}
	if rec.Version != expectedVersion {
		return tenant.Record{}, ErrVersionConflict
	}

	rec.Status = target
	rec.Version++
	rec.UpdatedAt = s.now()
	s.records[id] = rec
	return rec, nil
}

func (s *MemoryStore) UpdateName(ctx context.Context, id, name string) (tenant.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return tenant.Record{}, tenant.ErrTenantNotFound
	}
	rec.Name = name
	rec.UpdatedAt = s.now()
	s.records[id] = rec
	return rec, nil
}

func (s *MemoryStore) List(ctx context.Context, f ListFilter) ([]tenant.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := make([]tenant.Record, 0, len(s.records))
	for _, rec := range s.records {
		if f.Status != nil && rec.Status != *f.Status {
			continue
		}
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].CreatedAt.Before(recs[j].CreatedAt)
	})

	if f.Offset > 0 {
		if f.Offset >= len(recs) {
			return []tenant.Record{}, nil
		}
		recs = recs[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(recs) {
		recs = recs[:f.Limit]
	}
	return recs, nil
}

func (s *MemoryStore) Exists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok, nil
}
