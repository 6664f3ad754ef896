package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/vnmchuo/inference-hub/config"
	"github.com/vnmchuo/inference-hub/internal/admission"
	"github.com/vnmchuo/inference-hub/internal/auth"
	"github.com/vnmchuo/inference-hub/internal/gateway"
	"github.com/vnmchuo/inference-hub/internal/invoke"
	"github.com/vnmchuo/inference-hub/internal/ledger"
	"github.com/vnmchuo/inference-hub/internal/provider/groq"
	"github.com/vnmchuo/inference-hub/internal/seeder"
	"github.com/vnmchuo/inference-hub/internal/telemetry"
	"github.com/vnmchuo/inference-hub/internal/tenant"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Init telemetry
	shutdownTracer, err := telemetry.InitTracer("inference-hub", cfg)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}
	defer shutdownTracer()

	// 3. Connect PostgreSQL
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("failed to connect postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("failed to ping postgres: %v", err)
	}
	log.Println("PostgreSQL connected")

	// 4. Connect Redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to ping redis: %v", err)
	}
	log.Println("Redis connected")

	// 5. Init stores (tenants first, usage_logs references it)
	tenantStore := tenant.NewPostgresStore(pool)
	if err := tenantStore.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to ensure tenants schema: %v", err)
	}
	ledgerStore := ledger.NewPostgresStore(pool)
	if err := ledgerStore.EnsureSchema(ctx); err != nil {
		log.Fatalf("failed to ensure usage_logs schema: %v", err)
	}
	admissionStore := admission.NewPostgresStore(pool)

	// 6. Init services
	provisioning := tenant.NewService(tenantStore, cfg.DefaultMonthlyQuota)
	recorder := ledger.NewRecorder(ledgerStore, cfg.UnitRateUSD)
	invoker := invoke.New(groq.New(cfg.GroqAPIKey), cfg.Model, cfg.MaxOutputTokens, cfg.GenerationTimeout)
	authMiddleware := auth.NewMiddleware(tenantStore, rdb)

	// 7. Init handler
	tracer := otel.GetTracerProvider().Tracer("inference-hub")
	handler := gateway.NewHandler(tenantStore, provisioning, admissionStore, invoker, recorder, ledgerStore, tracer)

	// 8. Seed demo tenant if RUN_SEED=true
	if os.Getenv("RUN_SEED") == "true" {
		seeder.SeedDemoTenant(ctx, provisioning)
	}

	// 9. Init Chi router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"inference-hub"}`))
	})
	r.Post("/signup", handler.HandleSignup)
	r.Get("/tenants", handler.HandleTenants)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/v1/inference", handler.HandleInference)
		r.Get("/v1/usage", handler.HandleUsage)
	})

	// 10. Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("InferenceHub starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
