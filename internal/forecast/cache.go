package forecast

import (
	"sync"
	"time"

	"github.com/Gosu20/temp-insight-reservoir/internal/model"
	"go.uber.org/zap"
)

type cacheItem struct {
	result    model.PredictionResult
	expiresAt time.Time
}

// resultCache memoizes prediction results per snapshot, horizon and
// evaluation day, with TTL expiry and max-size eviction.
type resultCache struct {
	mu              sync.RWMutex
	items           map[string]cacheItem
	logger          *zap.Logger
	defaultDuration time.Duration
	maxSize         int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

func newResultCache(defaultDuration time.Duration, maxSize int, logger *zap.Logger) *resultCache {
	c := &resultCache{
		items:           make(map[string]cacheItem),
		logger:          logger,
		defaultDuration: defaultDuration,
		maxSize:         maxSize,
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go c.startCleanup()

	return c
}

func (c *resultCache) Set(key string, result model.PredictionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) >= c.maxSize {
		c.evictOldest()
	}

	c.items[key] = cacheItem{
		result:    result,
		expiresAt: time.Now().Add(c.defaultDuration),
	}

	c.logger.Debug("Prediction cached",
		zap.String("key", key),
		zap.Time("expires_at", time.Now().Add(c.defaultDuration)))
}

func (c *resultCache) Get(key string) (model.PredictionResult, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return model.PredictionResult{}, false
	}

	if time.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return model.PredictionResult{}, false
	}

	return item.result, true
}

func (c *resultCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.expiresAt
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
		c.logger.Debug("Evicted oldest prediction from cache",
			zap.String("key", oldestKey))
	}
}

func (c *resultCache) startCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *resultCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.Debug("Cleaned expired cache items",
			zap.Int("count", expiredCount))
	}
}

// Sweep runs one cleanup pass immediately.
func (c *resultCache) Sweep() {
	c.cleanup()
}

func (c *resultCache) Stop() {
	close(c.stopCleanup)
}

func (c *resultCache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"items":            len(c.items),
		"max_size":         c.maxSize,
		"default_duration": c.defaultDuration.String(),
	}
}
