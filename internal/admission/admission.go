// Package admission decides whether a resolved tenant may make another
// request this billing period and consumes the quota unit at admission time,
// before generation runs. Incrementing first means a tenant can never exceed
// its monthly quota, even with concurrent requests racing on the same row.
package admission

import (
	"context"
	"errors"
)

var ErrQuotaExceeded = errors.New("monthly quota exceeded")

// Reservation is one quota unit consumed at admission. Used and Remaining
// reflect the tenant's counters immediately after the increment.
type Reservation struct {
	TenantID  string
	Used      int
	Remaining int
}

// Store serializes check-and-reserve per tenant. Implementations must make
// the check and the increment a single atomic step for a given tenant;
// tenants never contend with each other.
type Store interface {
	// Reserve consumes one request unit. It fails with ErrQuotaExceeded
	// before any mutation when nothing remains, and with
	// tenant.ErrTenantNotFound for unknown ids.
	Reserve(ctx context.Context, tenantID string) (Reservation, error)

	// Release refunds a reservation whose request produced no usable
	// output (provider failure after admission).
	Release(ctx context.Context, res Reservation) error
}
