package admission

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnmchuo/inference-hub/internal/tenant"
)

func TestReserve_ConsumesLastUnit(t *testing.T) {
	s := NewMemoryStore()
	s.SetQuota("t1", 1000, 999)

	res, err := s.Reserve(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Used)
	assert.Equal(t, 0, res.Remaining)

	// The quota is now exhausted; nothing further mutates.
	_, err = s.Reserve(context.Background(), "t1")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	_, err = s.Reserve(context.Background(), "t1")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestReserve_UnknownTenant(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Reserve(context.Background(), "nobody")
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
}

func TestRelease_RefundsUnit(t *testing.T) {
	s := NewMemoryStore()
	s.SetQuota("t1", 1000, 999)

	res, err := s.Reserve(context.Background(), "t1")
	require.NoError(t, err)

	_, err = s.Reserve(context.Background(), "t1")
	require.ErrorIs(t, err, ErrQuotaExceeded)

	require.NoError(t, s.Release(context.Background(), res))

	res, err = s.Reserve(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Used)
}

func TestRelease_FloorsAtZero(t *testing.T) {
	s := NewMemoryStore()
	s.SetQuota("t1", 10, 0)

	require.NoError(t, s.Release(context.Background(), Reservation{TenantID: "t1"}))

	res, err := s.Reserve(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Used)
}

func TestRelease_UnknownTenantIsNoop(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Release(context.Background(), Reservation{TenantID: "nobody"}))
}

// With N concurrent attempts racing on one tenant, exactly
// min(N, quota-used) admissions succeed and used never exceeds quota.
func TestReserve_ConcurrentInvariant(t *testing.T) {
	const (
		quota    = 100
		attempts = 500
	)

	s := NewMemoryStore()
	s.SetQuota("t1", quota, 0)

	var admitted, rejected atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Reserve(context.Background(), "t1")
			switch {
			case err == nil:
				admitted.Add(1)
			case err == ErrQuotaExceeded:
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(quota), admitted.Load())
	assert.Equal(t, int64(attempts-quota), rejected.Load())

	// Counter sits exactly at the quota: one more attempt must fail.
	_, err := s.Reserve(context.Background(), "t1")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}
