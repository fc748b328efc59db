package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/halcyonweb/mediakit/internal/cache"
	"github.com/halcyonweb/mediakit/pkg/types"
)

// serviceListKey is the single key under which the active-services list is
// cached
const serviceListKey = "active"

// ServiceSource loads and mutates the services catalog in the backing store
type ServiceSource interface {
	ActiveServices(ctx context.Context) ([]types.SiteService, error)
	CreateService(ctx context.Context, svc *types.SiteService) error
	UpdateService(ctx context.Context, svc *types.SiteService) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	ReorderServices(ctx context.Context, orderedIDs []uuid.UUID) error
	SetServiceActive(ctx context.Context, id uuid.UUID, active bool) error
}

// Services caches the full active-services list. Every mutating operation
// invalidates the whole list.
type Services struct {
	source ServiceSource
	cache  *cache.Cache[string, []types.SiteService]
}

// NewServices creates the services cache with the given TTL
func NewServices(source ServiceSource, ttl time.Duration, opts ...cache.Option[string, []types.SiteService]) *Services {
	return &Services{
		source: source,
		cache:  cache.New(ttl, opts...),
	}
}

// List returns the active services, from cache when fresh
func (s *Services) List(ctx context.Context) ([]types.SiteService, error) {
	if services, ok := s.cache.Get(serviceListKey); ok {
		return services, nil
	}

	services, err := s.source.ActiveServices(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(serviceListKey, services)
	return services, nil
}

// Invalidate drops the cached list so the next List refetches
func (s *Services) Invalidate() {
	s.cache.Delete(serviceListKey)
}

// Create adds a service and invalidates the list
func (s *Services) Create(ctx context.Context, svc *types.SiteService) error {
	if err := s.source.CreateService(ctx, svc); err != nil {
		return err
	}
	s.Invalidate()
	log.Debug().Str("service", svc.Slug).Msg("services cache invalidated after create")
	return nil
}

// Update modifies a service and invalidates the list
func (s *Services) Update(ctx context.Context, svc *types.SiteService) error {
	if err := s.source.UpdateService(ctx, svc); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// Delete removes a service and invalidates the list
func (s *Services) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.source.DeleteService(ctx, id); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// Reorder rewrites display order to match orderedIDs and invalidates the list
func (s *Services) Reorder(ctx context.Context, orderedIDs []uuid.UUID) error {
	if err := s.source.ReorderServices(ctx, orderedIDs); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}

// SetActive toggles a service's visibility and invalidates the list
func (s *Services) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if err := s.source.SetServiceActive(ctx, id, active); err != nil {
		return err
	}
	s.Invalidate()
	return nil
}
