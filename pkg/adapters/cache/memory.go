package cache

import (
	"context"
	"strings"
	"time"

	"github.com/jaaberaziz-code/gitolink-sub001/pkg/core/domain"
	"github.com/jaaberaziz-code/gitolink-sub001/pkg/ports"
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps analytics projections inside the process. It is used
// when no Redis address is configured. Entries are copied on the way in and
// out, so callers may modify what they get.
type MemoryCache struct {
	store *gocache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(ttl, 2*ttl)}
}

func (c *MemoryCache) Generation(_ context.Context, userID string) (int64, error) {
	v, ok := c.store.Get(generationKey(userID))
	if !ok {
		return 0, nil
	}
	gen, _ := v.(int64)
	return gen, nil
}

func (c *MemoryCache) Get(_ context.Context, userID, key string) (*domain.AnalyticsData, bool, error) {
	v, ok := c.store.Get(entryKey(userID, key))
	if !ok {
		return nil, false, nil
	}
	data, ok := v.(*domain.AnalyticsData)
	if !ok {
		return nil, false, nil
	}
	return data.Clone(), true, nil
}

func (c *MemoryCache) Set(_ context.Context, userID, key string, data *domain.AnalyticsData) error {
	c.store.SetDefault(entryKey(userID, key), data.Clone())
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, userID string) error {
	gk := generationKey(userID)
	if err := c.store.Add(gk, int64(1), gocache.NoExpiration); err != nil {
		if _, err := c.store.IncrementInt64(gk, 1); err != nil {
			return err
		}
	}

	prefix := entryKey(userID, "")
	for k := range c.store.Items() {
		if strings.HasPrefix(k, prefix) {
			c.store.Delete(k)
		}
	}
	return nil
}

func entryKey(userID, key string) string {
	return "analytics:" + userID + ":" + key
}

func generationKey(userID string) string {
	return "analytics-gen:" + userID
}

var _ ports.AnalyticsCache = (*MemoryCache)(nil)
