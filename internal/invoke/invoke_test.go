package invoke

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vnmchuo/inference-hub/internal/provider"
)

type mockProvider struct {
	resp   *provider.Response
	err    error
	delay  time.Duration
	gotReq *provider.Request
}

func (m *mockProvider) Complete(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	m.gotReq = req
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func (m *mockProvider) Name() string { return "mock" }

func TestInvoke_Success(t *testing.T) {
	p := &mockProvider{
		resp: &provider.Response{Content: "hello", TotalTokens: 30, Model: "llama-3.1-8b-instant"},
	}
	inv := New(p, "llama-3.1-8b-instant", 1024, time.Second)

	res, err := inv.Invoke(context.Background(), "be helpful", "hi")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if res.Text != "hello" {
		t.Errorf("Expected 'hello', got %q", res.Text)
	}
	if res.TokensUsed != 30 {
		t.Errorf("Expected 30 tokens, got %d", res.TokensUsed)
	}
	if res.LatencyMs < 0 {
		t.Errorf("Negative latency: %d", res.LatencyMs)
	}

	// The invoker pins model and output ceiling; the caller only supplies prompts.
	if p.gotReq.Model != "llama-3.1-8b-instant" {
		t.Errorf("Expected fixed model, got %s", p.gotReq.Model)
	}
	if p.gotReq.MaxTokens != 1024 {
		t.Errorf("Expected max tokens 1024, got %d", p.gotReq.MaxTokens)
	}
	if p.gotReq.SystemPrompt != "be helpful" || p.gotReq.UserPrompt != "hi" {
		t.Errorf("Prompts not forwarded: %+v", p.gotReq)
	}
}

func TestInvoke_ProviderErrorTranslated(t *testing.T) {
	wantErr := errors.New("upstream 500")
	inv := New(&mockProvider{err: wantErr}, "m", 1024, time.Second)

	_, err := inv.Invoke(context.Background(), "", "hi")
	if err == nil {
		t.Fatal("Expected error")
	}

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ProviderError, got %T", err)
	}
	if perr.Provider != "mock" {
		t.Errorf("Expected provider 'mock', got %s", perr.Provider)
	}
	if !errors.Is(err, wantErr) {
		t.Error("Underlying error not preserved")
	}
}

func TestInvoke_Timeout(t *testing.T) {
	inv := New(&mockProvider{delay: time.Second}, "m", 1024, 10*time.Millisecond)

	_, err := inv.Invoke(context.Background(), "", "hi")
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ProviderError on timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", perr.Err)
	}
}

func TestInvoke_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	p := &mockProvider{err: errors.New("down")}
	inv := New(p, "m", 1024, time.Second)

	for i := 0; i < 3; i++ {
		if _, err := inv.Invoke(context.Background(), "", "hi"); err == nil {
			t.Fatal("Expected failure")
		}
	}

	// Breaker is now open; the provider is no longer called.
	p.gotReq = nil
	_, err := inv.Invoke(context.Background(), "", "hi")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Expected open breaker, got %v", err)
	}
	if p.gotReq != nil {
		t.Error("Provider was called while the breaker was open")
	}
}
