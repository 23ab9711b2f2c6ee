// Package tenant carries tenant identity through request contexts. Permission
// resolution happens upstream; by the time a request reaches the editor the
// tenant is already authenticated.
package tenant

import (
	"context"
	"errors"
)

// Tenant represents one customer of the site builder.
type Tenant struct {
	ID       string
	Name     string
	Plan     string // free, pro, enterprise
	Status   string // active, suspended, inactive
	Metadata map[string]string
}

// Context key for storing tenant in request context
type contextKey string

const tenantContextKey contextKey = "tenant"

// ErrNoTenant is returned when no tenant is found in context
var ErrNoTenant = errors.New("no tenant in context")

// ErrInvalidTenant is returned when tenant ID is invalid
var ErrInvalidTenant = errors.New("invalid tenant ID")

// WithTenant stores a tenant in the context
func WithTenant(ctx context.Context, tenant *Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenant)
}

// FromContext retrieves a tenant from the context
func FromContext(ctx context.Context) (*Tenant, error) {
	tenant, ok := ctx.Value(tenantContextKey).(*Tenant)
	if !ok {
		return nil, ErrNoTenant
	}
	return tenant, nil
}

// Store interface for resolving tenants
type Store interface {
	GetTenant(id string) (*Tenant, error)
}

// StaticStore is a simple in-memory tenant store. Deployments without a
// tenant directory resolve every ID to an active tenant of the same name.
type StaticStore struct {
	tenants    map[string]*Tenant
	resolveAll bool
}

// NewStaticStore creates a tenant store over a fixed set of tenants.
func NewStaticStore(tenants ...*Tenant) *StaticStore {
	s := &StaticStore{tenants: make(map[string]*Tenant, len(tenants))}
	for _, t := range tenants {
		s.tenants[t.ID] = t
	}
	return s
}

// NewOpenStore creates a store that accepts any non-empty tenant ID.
func NewOpenStore() *StaticStore {
	return &StaticStore{tenants: map[string]*Tenant{}, resolveAll: true}
}

// GetTenant retrieves a tenant by ID.
func (m *StaticStore) GetTenant(id string) (*Tenant, error) {
	if id == "" {
		return nil, ErrInvalidTenant
	}
	if t, ok := m.tenants[id]; ok {
		return t, nil
	}
	if m.resolveAll {
		return &Tenant{ID: id, Name: id, Status: "active"}, nil
	}
	return nil, ErrNoTenant
}
