package admission

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vnmchuo/inference-hub/internal/tenant"
)

type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore reserves quota with a single conditional UPDATE, so the
// check and the increment serialize at the row level without any
// application-side locking.
type PostgresStore struct {
	db DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Reserve(ctx context.Context, tenantID string) (Reservation, error) {
	query := `
		UPDATE tenants
		SET requests_used = requests_used + 1
		WHERE id = $1 AND requests_used < monthly_quota
		RETURNING requests_used, monthly_quota
	`

	var used, quota int
	err := s.db.QueryRow(ctx, query, tenantID).Scan(&used, &quota)

	if errors.Is(err, pgx.ErrNoRows) {
		// Either the tenant is unknown or the quota is exhausted.
		var exists bool
		err = s.db.QueryRow(ctx, `SELECT true FROM tenants WHERE id = $1`, tenantID).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return Reservation{}, tenant.ErrTenantNotFound
		}
		if err != nil {
			return Reservation{}, fmt.Errorf("failed to check tenant: %w", err)
		}
		return Reservation{}, ErrQuotaExceeded
	}
	if err != nil {
		return Reservation{}, fmt.Errorf("failed to reserve quota: %w", err)
	}

	return Reservation{TenantID: tenantID, Used: used, Remaining: quota - used}, nil
}

func (s *PostgresStore) Release(ctx context.Context, res Reservation) error {
	query := `
		UPDATE tenants
		SET requests_used = requests_used - 1
		WHERE id = $1 AND requests_used > 0
	`

	if _, err := s.db.Exec(ctx, query, res.TenantID); err != nil {
		return fmt.Errorf("failed to release reservation: %w", err)
	}
	return nil
}
