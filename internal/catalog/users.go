// Package catalog provides the read-through TTL caches the site renders
// from: users by id, the active services list, and per-project image
// galleries. Write paths invalidate their cache so the next read is fresh.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/halcyonweb/mediakit/internal/cache"
	"github.com/halcyonweb/mediakit/pkg/types"
)

// UserSource loads and mutates user records in the backing store
type UserSource interface {
	UserByID(ctx context.Context, id uuid.UUID) (*types.User, error)
	UpdateUser(ctx context.Context, user *types.User) error
}

// Users caches users by id in front of a UserSource
type Users struct {
	source UserSource
	cache  *cache.Cache[uuid.UUID, *types.User]
}

// NewUsers creates the user cache with the given TTL
func NewUsers(source UserSource, ttl time.Duration, opts ...cache.Option[uuid.UUID, *types.User]) *Users {
	return &Users{
		source: source,
		cache:  cache.New(ttl, opts...),
	}
}

// Get returns the user, from cache when fresh. A user deleted from the
// backing store is also dropped from the cache so a stale "exists" answer is
// never served.
func (u *Users) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	if user, ok := u.cache.Get(id); ok {
		return user, nil
	}

	user, err := u.source.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			u.cache.Delete(id)
		}
		return nil, err
	}

	u.cache.Set(id, user)
	return user, nil
}

// Update writes the user to the backing store and invalidates its cache entry
func (u *Users) Update(ctx context.Context, user *types.User) error {
	if err := u.source.UpdateUser(ctx, user); err != nil {
		return err
	}
	u.cache.Delete(user.ID)
	log.Debug().Str("user_id", user.ID.String()).Msg("user cache invalidated after update")
	return nil
}

// Invalidate drops a user's cache entry; called by any external write path
// that mutates the user's row
func (u *Users) Invalidate(id uuid.UUID) {
	u.cache.Delete(id)
}
