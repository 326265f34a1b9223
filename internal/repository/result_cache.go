package repository

import (
	"time"

	"github.com/fscqa/fsc-qa/internal/entity"
	"github.com/patrickmn/go-cache"
)

// ResultCache keeps delivered results in memory so they can be downloaded
// later. It is never consulted to answer a question.
type ResultCache struct {
	cache *cache.Cache
}

func NewResultCache(ttl, cleanupInterval time.Duration) *ResultCache {
	return &ResultCache{
		cache: cache.New(ttl, cleanupInterval),
	}
}

func (c *ResultCache) Save(result *entity.QueryResult) {
	c.cache.Set(result.ID, result, cache.DefaultExpiration)
}

func (c *ResultCache) Get(id string) (*entity.QueryResult, bool) {
	v, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	result, ok := v.(*entity.QueryResult)
	return result, ok
}

func (c *ResultCache) Len() int {
	return c.cache.ItemCount()
}
