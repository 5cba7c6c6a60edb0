package utils

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// CacheInvalidator drops cached GET responses after a write. Keys follow
// the layout produced by middlewares.CacheKeyFrom: cache:<resource>:<list|item>:<sha1>.
type CacheInvalidator struct{ rdb *redis.Client }

func NewCacheInvalidator(rdb *redis.Client) *CacheInvalidator { return &CacheInvalidator{rdb} }

func (ci *CacheInvalidator) purge(ctx context.Context, pattern string) {
	iter := ci.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		_ = ci.rdb.Del(ctx, iter.Val()).Err()
	}
}

// PurgeResource removes both list and item entries of one resource.
func (ci *CacheInvalidator) PurgeResource(ctx context.Context, resource string) {
	if ci == nil {
		return
	}
	ci.purge(ctx, "cache:"+resource+":*")
}

// PurgeResources is PurgeResource for several resources, e.g. a location
// write also stales every cached event that embeds it.
func (ci *CacheInvalidator) PurgeResources(ctx context.Context, resources ...string) {
	for _, r := range resources {
		ci.PurgeResource(ctx, r)
	}
}
