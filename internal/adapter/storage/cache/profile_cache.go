package cache

import (
	"context"
	"time"

	"refund-service/internal/core/domain"
	"refund-service/internal/core/ports"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ProfileCache decorates a ports.ProfileDirectory with an in-process TTL cache.
// Misses are not cached, so a profile created later shows up on the next lookup.
type ProfileCache struct {
	next  ports.ProfileDirectory
	names *gocache.Cache
	conts *gocache.Cache
}

// NewProfileCache wraps next with a cache whose entries live for ttl.
func NewProfileCache(next ports.ProfileDirectory, ttl time.Duration) *ProfileCache {
	return &ProfileCache{
		next:  next,
		names: gocache.New(ttl, 2*ttl),
		conts: gocache.New(ttl, 2*ttl),
	}
}

// DisplayNames serves cached names and fetches only the missing ids.
func (c *ProfileCache) DisplayNames(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(userIDs))
	var missing []uuid.UUID
	for _, id := range userIDs {
		if x, found := c.names.Get(id.String()); found {
			names[id] = x.(string)
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return names, nil
	}

	fetched, err := c.next.DisplayNames(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, name := range fetched {
		c.names.Set(id.String(), name, gocache.DefaultExpiration)
		names[id] = name
	}
	return names, nil
}

// ContactOf serves a cached contact or loads it from the wrapped directory.
func (c *ProfileCache) ContactOf(ctx context.Context, userID uuid.UUID) (*domain.Contact, error) {
	if x, found := c.conts.Get(userID.String()); found {
		contact := x.(domain.Contact)
		return &contact, nil
	}

	contact, err := c.next.ContactOf(ctx, userID)
	if err != nil || contact == nil {
		return contact, err
	}
	c.conts.Set(userID.String(), *contact, gocache.DefaultExpiration)
	return contact, nil
}
