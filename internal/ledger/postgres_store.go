package ledger

import (
	"context"
	"fmt"
	"time"

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

// EnsureSchema creates the usage_logs table if it doesn't exist. The tenants
// table must exist first for the foreign key.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	q := `
		CREATE TABLE IF NOT EXISTS usage_logs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			tenant_id UUID NOT NULL REFERENCES tenants(id),
			request_id TEXT NOT NULL,
			prompt_excerpt TEXT,
			tokens_used INTEGER NOT NULL DEFAULT 0,
			model TEXT,
			cost_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
			response_time_ms BIGINT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS usage_logs_tenant_created_idx
			ON usage_logs (tenant_id, created_at);
	`
	if _, err := s.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("failed to ensure usage_logs schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO usage_logs (tenant_id, request_id, prompt_excerpt, tokens_used, model, cost_usd, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := s.db.QueryRow(ctx, query,
		e.TenantID, e.RequestID, e.PromptExcerpt, e.TokensUsed, e.Model, e.CostUSD, e.ResponseTimeMs,
	).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append usage entry: %w", err)
	}

	return nil
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID string, from, to time.Time) ([]*Entry, error) {
	query := `
		SELECT id, tenant_id, request_id, prompt_excerpt, tokens_used, model, cost_usd, response_time_ms, created_at
		FROM usage_logs
		WHERE tenant_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ID, &e.TenantID, &e.RequestID, &e.PromptExcerpt,
			&e.TokensUsed, &e.Model, &e.CostUSD, &e.ResponseTimeMs, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage entry: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating usage entries: %w", err)
	}

	return entries, nil
}

func (s *PostgresStore) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	query := `SELECT COUNT(*) FROM usage_logs WHERE tenant_id = $1`

	var count int
	if err := s.db.QueryRow(ctx, query, tenantID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count usage entries: %w", err)
	}

	return count, nil
}
