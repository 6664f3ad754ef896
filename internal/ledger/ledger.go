// Package ledger is the append-only record of completed requests, used for
// billing and audit. Entries are never mutated or deleted.
package ledger

import (
	"context"
	"time"
)

// ExcerptLimit bounds how many runes of the prompt are kept per entry.
const ExcerptLimit = 500

type Entry struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	RequestID      string    `json:"request_id"`
	PromptExcerpt  string    `json:"prompt_excerpt"`
	TokensUsed     int       `json:"tokens_used"`
	Model          string    `json:"model"`
	CostUSD        float64   `json:"cost_usd"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

type Store interface {
	Append(ctx context.Context, e *Entry) error
	ListByTenant(ctx context.Context, tenantID string, from, to time.Time) ([]*Entry, error)
	// CountByTenant supports reconciliation against the tenant's
	// requests_used counter.
	CountByTenant(ctx context.Context, tenantID string) (int, error)
}

// Truncate keeps at most limit runes of s.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
