package seeder

import (
	"context"
	"log"

	"github.com/vnmchuo/inference-hub/internal/tenant"
)

const (
	DemoBusinessName = "Demo Business"
	DemoEmail        = "demo@inferencehub.local"
)

// SeedDemoTenant provisions a demo tenant and prints its one-time API key.
func SeedDemoTenant(ctx context.Context, svc *tenant.Service) {
	t, apiKey, err := svc.Provision(ctx, DemoBusinessName, DemoEmail, string(tenant.CategoryGeneral))
	if err != nil {
		log.Printf("[Seeder] Demo tenant may already exist, skipping: %v", err)
		return
	}
	log.Printf("[Seeder] Demo tenant created successfully")
	log.Printf("[Seeder] TenantID: %s", t.ID)
	log.Printf("[Seeder] API key: %s", apiKey)
}
