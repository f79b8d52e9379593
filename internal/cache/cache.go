package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/adhish9899/stat-arb/internal/models"
)

// Cache provides fast in-memory caching for retrieved price series, so
// that symbols shared between pairs or repeated commands are fetched once
type Cache struct {
	intraday *gocache.Cache
	daily    *gocache.Cache
	ttl      time.Duration
}

// NewCache creates a new cache instance
func NewCache(ttl time.Duration) *Cache {
	// Use go-cache with default expiration and cleanup interval
	return &Cache{
		intraday: gocache.New(ttl, ttl*2),
		daily:    gocache.New(ttl, ttl*2),
		ttl:      ttl,
	}
}

// GetIntraday retrieves a cached intraday close series
func (c *Cache) GetIntraday(symbol string) ([]models.PricePoint, bool) {
	if val, found := c.intraday.Get(symbol); found {
		if series, ok := val.([]models.PricePoint); ok {
			return series, true
		}
	}
	return nil, false
}

// SetIntraday caches an intraday close series
func (c *Cache) SetIntraday(symbol string, series []models.PricePoint) {
	c.intraday.Set(symbol, series, c.ttl)
}

// GetDaily retrieves a cached end-of-day close series
func (c *Cache) GetDaily(symbol string) ([]models.PricePoint, bool) {
	if val, found := c.daily.Get(symbol); found {
		if series, ok := val.([]models.PricePoint); ok {
			return series, true
		}
	}
	return nil, false
}

// SetDaily caches an end-of-day close series
func (c *Cache) SetDaily(symbol string, series []models.PricePoint) {
	c.daily.Set(symbol, series, c.ttl)
}

// Clear removes all cached data
func (c *Cache) Clear() {
	c.intraday.Flush()
	c.daily.Flush()
}

// Stats returns cache statistics
type Stats struct {
	IntradayCount int
	DailyCount    int
}

// GetStats returns current cache statistics
func (c *Cache) GetStats() Stats {
	return Stats{
		IntradayCount: c.intraday.ItemCount(),
		DailyCount:    c.daily.ItemCount(),
	}
}
