package salon

import (
	"context"
	"strings"

	"stylegen/internal/cache"
)

const cacheStage = "salon_data"

// CachedSource memoizes another Source through the cache gateway.
type CachedSource struct {
	next    Source
	gateway *cache.Gateway
}

// NewCachedSource wraps next. A nil gateway disables caching.
func NewCachedSource(next Source, gateway *cache.Gateway) *CachedSource {
	return &CachedSource{next: next, gateway: gateway}
}

func (s *CachedSource) FetchAll(ctx context.Context, salonURL string) (Data, error) {
	key := cache.Key(cache.Fingerprint([]byte(strings.TrimRight(strings.TrimSpace(salonURL), "/"))), cacheStage)
	var data Data
	if s.gateway.Get(ctx, key, &data) {
		return data, nil
	}
	data, err := s.next.FetchAll(ctx, salonURL)
	if err != nil {
		return Data{}, err
	}
	s.gateway.Put(ctx, key, data)
	return data, nil
}
