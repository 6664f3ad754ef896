package tenant

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const keyPrefix = "sk_live_"

// Service provisions new tenants on top of a Store.
type Service struct {
	store        Store
	monthlyQuota int
}

func NewService(store Store, monthlyQuota int) *Service {
	if monthlyQuota <= 0 {
		monthlyQuota = DefaultMonthlyQuota
	}
	return &Service{store: store, monthlyQuota: monthlyQuota}
}

// Provision registers a new tenant on the free plan and mints its API key.
// The plain key is returned exactly once; only its hash is stored.
func (s *Service) Provision(ctx context.Context, businessName, email, businessType string) (*Tenant, string, error) {
	key, err := mintKey()
	if err != nil {
		return nil, "", fmt.Errorf("failed to mint api key: %w", err)
	}

	t := &Tenant{
		BusinessName: businessName,
		Email:        email,
		KeyHash:      HashKey(key),
		Category:     NormalizeCategory(businessType),
		Plan:         PlanFree,
		MonthlyQuota: s.monthlyQuota,
		RequestsUsed: 0,
	}

	if err := s.store.Create(ctx, t); err != nil {
		return nil, "", err
	}

	return t, key, nil
}

// mintKey produces a recognizable bearer key with 128 bits of entropy.
func mintKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return keyPrefix + hex.EncodeToString(buf), nil
}
