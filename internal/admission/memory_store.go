package admission

import (
	"context"
	"sync"

	"github.com/vnmchuo/inference-hub/internal/tenant"
)

// MemoryStore is an in-memory admission store for development and tests.
// A single mutex is enough here: the store only ever guards counter math.
type MemoryStore struct {
	mu      sync.Mutex
	tenants map[string]*counters
}

type counters struct {
	quota int
	used  int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: make(map[string]*counters)}
}

// SetQuota registers a tenant's counters with the store.
func (s *MemoryStore) SetQuota(tenantID string, monthlyQuota, requestsUsed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tenants[tenantID] = &counters{quota: monthlyQuota, used: requestsUsed}
}

func (s *MemoryStore) Reserve(_ context.Context, tenantID string) (Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.tenants[tenantID]
	if !ok {
		return Reservation{}, tenant.ErrTenantNotFound
	}

	if c.used >= c.quota {
		return Reservation{}, ErrQuotaExceeded
	}

	c.used++
	return Reservation{TenantID: tenantID, Used: c.used, Remaining: c.quota - c.used}, nil
}

func (s *MemoryStore) Release(_ context.Context, res Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.tenants[res.TenantID]
	if !ok {
		return nil
	}

	if c.used > 0 {
		c.used--
	}
	return nil
}
