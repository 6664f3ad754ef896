package tenant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// Category is a tenant's business type. It selects the system prompt used
// for generation.
type Category string

const (
	CategoryLegal     Category = "legal"
	CategoryMedical   Category = "medical"
	CategoryEcommerce Category = "ecommerce"
	CategoryEducation Category = "education"
	CategoryGeneral   Category = "general"
)

// NormalizeCategory maps empty or unrecognized business types to general.
func NormalizeCategory(s string) Category {
	switch c := Category(s); c {
	case CategoryLegal, CategoryMedical, CategoryEcommerce, CategoryEducation, CategoryGeneral:
		return c
	default:
		return CategoryGeneral
	}
}

type Plan string

const (
	PlanFree Plan = "free"
	PlanPaid Plan = "paid"
)

const DefaultMonthlyQuota = 1000

// Tenant is a registered business account. Email and the API key are
// immutable after creation; RequestsUsed is mutated only by the admission
// store.
type Tenant struct {
	ID           string    `json:"id"`
	BusinessName string    `json:"business_name"`
	Email        string    `json:"email"`
	KeyHash      string    `json:"-"` // sha256 of the bearer key, never serialized
	Category     Category  `json:"business_type"`
	Plan         Plan      `json:"plan"`
	MonthlyQuota int       `json:"monthly_quota"`
	RequestsUsed int       `json:"requests_used"`
	CreatedAt    time.Time `json:"created_at"`
}

// MarshalBinary implements encoding.BinaryMarshaler for Redis
func (t *Tenant) MarshalBinary() ([]byte, error) {
	return json.Marshal(t)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for Redis
func (t *Tenant) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, t)
}

// HashKey returns the hex sha256 of a plain API key. Only the hash is ever
// stored or used for lookup.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

type Store interface {
	// GetByKey resolves a plain API key to its tenant by exact hash match.
	GetByKey(ctx context.Context, key string) (*Tenant, error)
	GetByID(ctx context.Context, id string) (*Tenant, error)
	// Create persists a new tenant. Fails with ErrDuplicateEmail if the
	// email is already registered; no partial row is left behind.
	Create(ctx context.Context, t *Tenant) error
	List(ctx context.Context) ([]*Tenant, error)
}
