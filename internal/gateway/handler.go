package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vnmchuo/inference-hub/internal/admission"
	"github.com/vnmchuo/inference-hub/internal/auth"
	"github.com/vnmchuo/inference-hub/internal/invoke"
	"github.com/vnmchuo/inference-hub/internal/ledger"
	"github.com/vnmchuo/inference-hub/internal/policy"
	"github.com/vnmchuo/inference-hub/internal/tenant"
)

type Handler struct {
	tenants   tenant.Store
	provision *tenant.Service
	admission admission.Store
	invoker   *invoke.Invoker
	recorder  *ledger.Recorder
	entries   ledger.Store
	tracer    trace.Tracer
}

func NewHandler(
	tenants tenant.Store,
	provision *tenant.Service,
	adm admission.Store,
	invoker *invoke.Invoker,
	recorder *ledger.Recorder,
	entries ledger.Store,
	tracer trace.Tracer,
) *Handler {
	return &Handler{
		tenants:   tenants,
		provision: provision,
		admission: adm,
		invoker:   invoker,
		recorder:  recorder,
		entries:   entries,
		tracer:    tracer,
	}
}

type signupRequest struct {
	BusinessName string `json:"business_name"`
	Email        string `json:"email"`
	BusinessType string `json:"business_type"`
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body"})
		return
	}

	if req.BusinessName == "" || req.Email == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "business_name and email are required"})
		return
	}

	t, apiKey, err := h.provision.Provision(r.Context(), req.BusinessName, req.Email, req.BusinessType)
	if err != nil {
		if errors.Is(err, tenant.ErrDuplicateEmail) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "email already registered"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to create tenant"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "Welcome to InferenceHub, " + t.BusinessName + "!",
		"tenant_id":     t.ID,
		"api_key":       apiKey,
		"plan":          t.Plan,
		"monthly_quota": t.MonthlyQuota,
		"warning":       "Save this API key! You won't see it again.",
	})
}

type inferenceRequest struct {
	Prompt string `json:"prompt"`
}

// HandleInference runs the full pipeline: resolve (done by the auth
// middleware) -> reserve quota -> select policy -> generate -> record usage.
// The quota unit is consumed before generation and refunded if the provider
// fails, so a failed request never shows up on the bill.
func (h *Handler) HandleInference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t := auth.GetTenant(ctx)
	if t == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
		return
	}

	requestID := auth.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	var req inferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Prompt == "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid request body: prompt is required"})
		return
	}

	_, span := h.tracer.Start(ctx, "gateway.inference")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant_id", t.ID),
		attribute.String("request_id", requestID),
		attribute.String("business_type", string(t.Category)),
	)

	res, err := h.admission.Reserve(ctx, t.ID)
	if err != nil {
		if errors.Is(err, admission.ErrQuotaExceeded) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{"error": "quota exceeded, please upgrade your plan"})
			return
		}
		if errors.Is(err, tenant.ErrTenantNotFound) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to check quota"})
		return
	}

	pol := policy.Select(t.Category)

	result, err := h.invoker.Invoke(ctx, pol.SystemPrompt, req.Prompt)
	if err != nil {
		// The request produced nothing billable; hand the unit back.
		// Release uses a fresh context so a cancelled request can't leak
		// a consumed unit.
		if rerr := h.admission.Release(context.WithoutCancel(ctx), res); rerr != nil {
			log.Printf("gateway: failed to release reservation for tenant %s: %v", t.ID, rerr)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	if _, err := h.recorder.Record(ctx, t.ID, requestID, req.Prompt, result); err != nil {
		log.Printf("gateway: failed to record usage for tenant %s: %v", t.ID, err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to record usage"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"response":           result.Text,
		"tenant":             t.BusinessName,
		"business_type":      t.Category,
		"model":              result.Model,
		"tokens_used":        result.TokensUsed,
		"response_time_ms":   result.LatencyMs,
		"requests_remaining": res.Remaining,
	})
}

func (h *Handler) HandleUsage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t := auth.GetTenant(ctx)
	if t == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
		return
	}

	// The cached tenant's counters may be stale; re-read the row.
	fresh, err := h.tenants.GetByID(ctx, t.ID)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to load tenant"})
		return
	}

	// Parse query parameters
	now := time.Now()
	fromStr := r.URL.Query().Get("from")
	toStr := r.URL.Query().Get("to")

	from := now.AddDate(0, 0, -30) // Default: last 30 days
	to := now

	if fromStr != "" {
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid 'from' date format (use RFC3339)"})
			return
		}
	}

	if toStr != "" {
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid 'to' date format (use RFC3339)"})
			return
		}
	}

	entries, err := h.entries.ListByTenant(ctx, fresh.ID, from, to)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"tenant":         fresh.BusinessName,
		"plan":           fresh.Plan,
		"usage":          ledger.StatsFor(fresh.MonthlyQuota, fresh.RequestsUsed),
		"billing_period": "monthly",
		"member_since":   fresh.CreatedAt,
		"logs":           entries,
		"from":           from,
		"to":             to,
	})
}

// HandleTenants lists all tenants for diagnostics. API keys never appear in
// the output; only their hashes exist, and those are excluded from both the
// query and serialization.
func (h *Handler) HandleTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.tenants.List(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"total":   len(tenants),
		"tenants": tenants,
	})
}
