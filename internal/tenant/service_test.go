package tenant

import (
	"context"
	"strings"
	"testing"
	"time"
)

// fakeStore keeps tenants keyed by email, enforcing the unique constraint
// the way the postgres store does.
type fakeStore struct {
	byEmail map[string]*Tenant
}

func newFakeStore() *fakeStore {
	return &fakeStore{byEmail: make(map[string]*Tenant)}
}

func (s *fakeStore) Create(_ context.Context, t *Tenant) error {
	if _, ok := s.byEmail[t.Email]; ok {
		return ErrDuplicateEmail
	}
	t.ID = "tenant-" + t.Email
	t.CreatedAt = time.Now()
	copied := *t
	s.byEmail[t.Email] = &copied
	return nil
}

func (s *fakeStore) GetByKey(_ context.Context, key string) (*Tenant, error) {
	hash := HashKey(key)
	for _, t := range s.byEmail {
		if t.KeyHash == hash {
			return t, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*Tenant, error) {
	for _, t := range s.byEmail {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (s *fakeStore) List(_ context.Context) ([]*Tenant, error) {
	var out []*Tenant
	for _, t := range s.byEmail {
		out = append(out, t)
	}
	return out, nil
}

func TestProvision_Defaults(t *testing.T) {
	svc := NewService(newFakeStore(), 0)

	created, key, err := svc.Provision(context.Background(), "Acme Corp", "acme@example.com", "legal")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	if created.Plan != PlanFree {
		t.Errorf("Expected free plan, got %s", created.Plan)
	}
	if created.MonthlyQuota != DefaultMonthlyQuota {
		t.Errorf("Expected quota %d, got %d", DefaultMonthlyQuota, created.MonthlyQuota)
	}
	if created.RequestsUsed != 0 {
		t.Errorf("Expected zero requests used, got %d", created.RequestsUsed)
	}
	if created.Category != CategoryLegal {
		t.Errorf("Expected legal category, got %s", created.Category)
	}

	if !strings.HasPrefix(key, "sk_live_") {
		t.Errorf("Expected sk_live_ prefix, got %s", key)
	}
	// 128 bits of entropy as 32 hex chars
	if len(key) != len("sk_live_")+32 {
		t.Errorf("Unexpected key length %d", len(key))
	}
	if created.KeyHash != HashKey(key) {
		t.Error("Stored hash does not match the minted key")
	}
}

func TestProvision_UnknownCategoryFallsBack(t *testing.T) {
	svc := NewService(newFakeStore(), 1000)

	created, _, err := svc.Provision(context.Background(), "Acme Corp", "acme@example.com", "quantum_finance")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	if created.Category != CategoryGeneral {
		t.Errorf("Expected general category, got %s", created.Category)
	}
}

func TestProvision_DuplicateEmail(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 1000)

	if _, _, err := svc.Provision(context.Background(), "First", "a@x.com", "general"); err != nil {
		t.Fatalf("First provision failed: %v", err)
	}

	_, _, err := svc.Provision(context.Background(), "Second", "a@x.com", "general")
	if err != ErrDuplicateEmail {
		t.Fatalf("Expected ErrDuplicateEmail, got %v", err)
	}

	// Exactly one record for that email, and it's the first one.
	if got := store.byEmail["a@x.com"].BusinessName; got != "First" {
		t.Errorf("Expected the original tenant to survive, got %s", got)
	}
	if len(store.byEmail) != 1 {
		t.Errorf("Expected exactly one tenant, got %d", len(store.byEmail))
	}
}

func TestProvision_KeysAreUnique(t *testing.T) {
	svc := NewService(newFakeStore(), 1000)

	_, key1, err := svc.Provision(context.Background(), "One", "one@x.com", "general")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}
	_, key2, err := svc.Provision(context.Background(), "Two", "two@x.com", "general")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	if key1 == key2 {
		t.Error("Two provisioned tenants received the same API key")
	}
}

func TestGetByKey_Idempotent(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 1000)

	_, key, err := svc.Provision(context.Background(), "Acme", "acme@example.com", "medical")
	if err != nil {
		t.Fatalf("Provision failed: %v", err)
	}

	first, err := store.GetByKey(context.Background(), key)
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	second, err := store.GetByKey(context.Background(), key)
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}

	if *first != *second {
		t.Error("Repeated resolution returned different tenant state")
	}
}

func TestNormalizeCategory(t *testing.T) {
	cases := map[string]Category{
		"legal":     CategoryLegal,
		"medical":   CategoryMedical,
		"ecommerce": CategoryEcommerce,
		"education": CategoryEducation,
		"general":   CategoryGeneral,
		"":          CategoryGeneral,
		"banking":   CategoryGeneral,
	}

	for in, want := range cases {
		if got := NormalizeCategory(in); got != want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", in, got, want)
		}
	}
}
