package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	db DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tenants table if it doesn't exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	q := `
		CREATE TABLE IF NOT EXISTS tenants (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			business_name TEXT NOT NULL,
			email TEXT NOT NULL,
			key_hash TEXT NOT NULL,
			business_type TEXT NOT NULL DEFAULT 'general',
			plan TEXT NOT NULL DEFAULT 'free',
			monthly_quota INTEGER NOT NULL DEFAULT 1000,
			requests_used INTEGER NOT NULL DEFAULT 0 CHECK (requests_used >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			CONSTRAINT tenants_email_key UNIQUE (email),
			CONSTRAINT tenants_key_hash_key UNIQUE (key_hash)
		);
	`
	if _, err := s.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("failed to ensure tenants schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByKey(ctx context.Context, key string) (*Tenant, error) {
	query := `
		SELECT id, business_name, email, key_hash, business_type, plan, monthly_quota, requests_used, created_at
		FROM tenants
		WHERE key_hash = $1
	`

	var t Tenant
	err := s.db.QueryRow(ctx, query, HashKey(key)).Scan(
		&t.ID, &t.BusinessName, &t.Email, &t.KeyHash, &t.Category,
		&t.Plan, &t.MonthlyQuota, &t.RequestsUsed, &t.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by key: %w", err)
	}

	return &t, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Tenant, error) {
	query := `
		SELECT id, business_name, email, key_hash, business_type, plan, monthly_quota, requests_used, created_at
		FROM tenants
		WHERE id = $1
	`

	var t Tenant
	err := s.db.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.BusinessName, &t.Email, &t.KeyHash, &t.Category,
		&t.Plan, &t.MonthlyQuota, &t.RequestsUsed, &t.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant by id: %w", err)
	}

	return &t, nil
}

func (s *PostgresStore) Create(ctx context.Context, t *Tenant) error {
	if t.KeyHash == "" {
		return fmt.Errorf("key_hash is required")
	}

	query := `
		INSERT INTO tenants (business_name, email, key_hash, business_type, plan, monthly_quota, requests_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := s.db.QueryRow(ctx, query,
		t.BusinessName, t.Email, t.KeyHash, t.Category, t.Plan, t.MonthlyQuota, t.RequestsUsed,
	).Scan(&t.ID, &t.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "tenants_email_key" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	return nil
}

// List returns all tenants for administrative use. Key material stays out of
// the result: KeyHash carries a json:"-" tag and is not selected here.
func (s *PostgresStore) List(ctx context.Context) ([]*Tenant, error) {
	query := `
		SELECT id, business_name, email, business_type, plan, monthly_quota, requests_used, created_at
		FROM tenants
		ORDER BY created_at
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*Tenant
	for rows.Next() {
		var t Tenant
		err := rows.Scan(
			&t.ID, &t.BusinessName, &t.Email, &t.Category,
			&t.Plan, &t.MonthlyQuota, &t.RequestsUsed, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenants: %w", err)
	}

	return tenants, nil
}
