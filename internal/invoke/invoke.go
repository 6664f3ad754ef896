// Package invoke wraps the downstream generation provider with wall-clock
// timing, a bounded per-call timeout, and a circuit breaker. It never
// retries; every failure is terminal for the request that hit it.
package invoke

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vnmchuo/inference-hub/internal/provider"
)

// ProviderError carries the underlying message of any downstream failure,
// including timeouts and an open breaker.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

type Result struct {
	Text       string
	TokensUsed int
	Model      string
	LatencyMs  int64
}

type Invoker struct {
	provider  provider.Provider
	model     string
	maxTokens int
	timeout   time.Duration
	breaker   *gobreaker.CircuitBreaker
}

func New(p provider.Provider, model string, maxTokens int, timeout time.Duration) *Invoker {
	settings := gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: 3,
		Interval:    5 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
	return &Invoker{
		provider:  p,
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
		breaker:   gobreaker.NewCircuitBreaker(settings),
	}
}

// Invoke runs one generation call with the configured model and output
// ceiling, measuring its duration. No quota state is held across the call;
// the caller's reservation is already committed.
func (i *Invoker) Invoke(ctx context.Context, systemPrompt, userPrompt string) (*Result, error) {
	callCtx := ctx
	if i.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := i.breaker.Execute(func() (interface{}, error) {
		return i.provider.Complete(callCtx, &provider.Request{
			Model:        i.model,
			SystemPrompt: systemPrompt,
			UserPrompt:   userPrompt,
			MaxTokens:    i.maxTokens,
		})
	})
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return nil, &ProviderError{Provider: i.provider.Name(), Err: err}
	}

	resp := out.(*provider.Response)
	return &Result{
		Text:       resp.Content,
		TokensUsed: resp.TotalTokens,
		Model:      resp.Model,
		LatencyMs:  latency,
	}, nil
}
