package marketdata

import (
	"context"

	"github.com/adhish9899/stat-arb/internal/cache"
	"github.com/adhish9899/stat-arb/internal/models"
)

// Provider supplies time-ordered close series for a symbol. The
// backtester performs its own alignment and session filtering, so
// implementations only need to return whatever observations they have,
// sorted ascending by timestamp.
type Provider interface {
	// IntradayCloses returns minute-granularity closes.
	IntradayCloses(ctx context.Context, symbol string) ([]models.PricePoint, error)

	// DailyCloses returns one end-of-day close per trading date.
	DailyCloses(ctx context.Context, symbol string) ([]models.PricePoint, error)
}

// CachedProvider wraps a Provider with an in-memory series cache, so a
// symbol shared across pairs or commands is only fetched once per TTL.
type CachedProvider struct {
	inner Provider
	cache *cache.Cache
}

// NewCachedProvider wraps the given provider
func NewCachedProvider(inner Provider, c *cache.Cache) *CachedProvider {
	return &CachedProvider{inner: inner, cache: c}
}

// IntradayCloses implements Provider
func (p *CachedProvider) IntradayCloses(ctx context.Context, symbol string) ([]models.PricePoint, error) {
	if series, found := p.cache.GetIntraday(symbol); found {
		return series, nil
	}
	series, err := p.inner.IntradayCloses(ctx, symbol)
	if err != nil {
		return nil, err
	}
	p.cache.SetIntraday(symbol, series)
	return series, nil
}

// DailyCloses implements Provider
func (p *CachedProvider) DailyCloses(ctx context.Context, symbol string) ([]models.PricePoint, error) {
	if series, found := p.cache.GetDaily(symbol); found {
		return series, nil
	}
	series, err := p.inner.DailyCloses(ctx, symbol)
	if err != nil {
		return nil, err
	}
	p.cache.SetDaily(symbol, series)
	return series, nil
}
