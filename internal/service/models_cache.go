package service

import (
	"slices"
	"sync"
	"time"

	"github.com/set-night/geminichat/internal/domain"
)

// ModelsCache keeps the last model listing for ttl. Callers get a copy.
type ModelsCache struct {
	mu       sync.RWMutex
	models   []domain.AIModel
	cachedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewModelsCache(ttl time.Duration) *ModelsCache {
	return &ModelsCache{ttl: ttl, now: time.Now}
}

func (c *ModelsCache) Get() []domain.AIModel {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.models == nil || c.now().Sub(c.cachedAt) > c.ttl {
		return nil
	}
	return slices.Clone(c.models)
}

func (c *ModelsCache) Set(models []domain.AIModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if models == nil {
		models = []domain.AIModel{}
	}
	c.models = slices.Clone(models)
	c.cachedAt = c.now()
}

// Invalidate drops the cached listing.
func (c *ModelsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = nil
}
