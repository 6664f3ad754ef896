package ledger

import (
	"context"

	"github.com/vnmchuo/inference-hub/internal/invoke"
)

// Recorder derives cost from provider-reported token totals and appends
// usage entries.
type Recorder struct {
	store    Store
	unitRate float64 // USD per token
}

func NewRecorder(store Store, unitRate float64) *Recorder {
	return &Recorder{store: store, unitRate: unitRate}
}

// Record appends exactly one entry for a completed generation.
func (r *Recorder) Record(ctx context.Context, tenantID, requestID, prompt string, res *invoke.Result) (*Entry, error) {
	e := &Entry{
		TenantID:       tenantID,
		RequestID:      requestID,
		PromptExcerpt:  Truncate(prompt, ExcerptLimit),
		TokensUsed:     res.TokensUsed,
		Model:          res.Model,
		CostUSD:        float64(res.TokensUsed) * r.unitRate,
		ResponseTimeMs: res.LatencyMs,
	}

	if err := r.store.Append(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}
