package redis

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
)

// GeocodeCache caches resolved address coordinates in Redis.
type GeocodeCache struct {
	client *redis.Client
}

// NewGeocodeCache creates a new GeocodeCache.
func NewGeocodeCache(client *redis.Client) *GeocodeCache {
	return &GeocodeCache{client: client}
}

// GeocodeCacheTTL bounds how long a resolved address stays cached. Customer
// addresses rarely move, but a day keeps stale entries from living forever.
const GeocodeCacheTTL = 24 * time.Hour

const geocodeCachePrefix = "cache:geocode:"

// cachedCoordinates is the stored representation of a resolved address.
type cachedCoordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

func geocodeKey(address string) string {
	return geocodeCachePrefix + strings.ToLower(strings.TrimSpace(address))
}

// GetCoordinates retrieves cached coordinates for an address.
// Returns (nil, nil) on a cache miss.
func (s *GeocodeCache) GetCoordinates(ctx context.Context, address string) (*domain.Coordinates, error) {
	data, err := s.client.Get(ctx, geocodeKey(address)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var cached cachedCoordinates
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	return &domain.Coordinates{Latitude: cached.Latitude, Longitude: cached.Longitude}, nil
}

// SetCoordinates stores resolved coordinates for an address.
func (s *GeocodeCache) SetCoordinates(ctx context.Context, address string, coords domain.Coordinates) error {
	data, err := json.Marshal(cachedCoordinates{
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, geocodeKey(address), data, GeocodeCacheTTL).Err()
}

// InvalidateAddress removes a cached address.
func (s *GeocodeCache) InvalidateAddress(ctx context.Context, address string) error {
	return s.client.Del(ctx, geocodeKey(address)).Err()
}
