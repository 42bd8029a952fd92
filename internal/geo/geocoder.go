package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
)

var (
	// ErrGeocodeFailed is returned when every address variant has been
	// exhausted without a match.
	ErrGeocodeFailed = errors.New("address could not be geocoded")

	// ErrGeocodeTimeout marks a single geocoding attempt that exceeded its
	// deadline. It is never returned from Resolve; the next variant is tried.
	ErrGeocodeTimeout = errors.New("geocoding request timed out")
)

// DefaultGeoTimeout bounds each outbound geocoding/routing attempt.
const DefaultGeoTimeout = 10 * time.Second

// CoordinateCache caches resolved addresses so repeated quotes for the same
// customer skip the geocoder. Implemented by redis.GeocodeCache.
type CoordinateCache interface {
	GetCoordinates(ctx context.Context, address string) (*domain.Coordinates, error)
	SetCoordinates(ctx context.Context, address string, coords domain.Coordinates) error
}

// Geocoder resolves free-text addresses to coordinates through an external
// geocoding endpoint, trying several textual variants of the input.
type Geocoder struct {
	baseURL string
	country string
	timeout time.Duration
	client  *http.Client
	cache   CoordinateCache // optional
}

// NewGeocoder creates a Geocoder. cache may be nil.
func NewGeocoder(baseURL, country string, timeout time.Duration, cache CoordinateCache) *Geocoder {
	if timeout <= 0 {
		timeout = DefaultGeoTimeout
	}
	return &Geocoder{
		baseURL: baseURL,
		country: country,
		timeout: timeout,
		client:  &http.Client{},
		cache:   cache,
	}
}

// Resolve turns a free-text address into coordinates. Variants are tried in
// order; a non-2xx response, an empty result or a timeout on one variant is
// not fatal. ErrGeocodeFailed is returned only once every variant failed.
func (g *Geocoder) Resolve(ctx context.Context, address string) (domain.Coordinates, error) {
	variants := AddressVariants(address, g.country)
	if len(variants) == 0 {
		return domain.Coordinates{}, ErrGeocodeFailed
	}

	if g.cache != nil {
		if cached, err := g.cache.GetCoordinates(ctx, address); err == nil && cached != nil {
			return *cached, nil
		}
	}

	for _, variant := range variants {
		coords, err := g.lookup(ctx, variant)
		if err != nil {
			if errors.Is(err, ErrGeocodeTimeout) {
				log.Printf("geocode variant %q timed out, trying next", variant)
			}
			continue
		}

		if g.cache != nil {
			_ = g.cache.SetCoordinates(ctx, address, coords)
		}
		return coords, nil
	}

	return domain.Coordinates{}, ErrGeocodeFailed
}

// geocodeResponse is the subset of the provider payload we read. The provider
// reports positions as [longitude, latitude].
type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// lookup performs a single bounded geocoding attempt for one variant.
func (g *Geocoder) lookup(ctx context.Context, variant string) (domain.Coordinates, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/search?text=%s&boundary.country=%s",
		g.baseURL, url.QueryEscape(variant), url.QueryEscape(g.country))

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Coordinates{}, err
	}

	seg := startExternalSegment(ctx, req)
	resp, err := g.client.Do(req)
	endExternalSegment(seg, resp)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() == context.DeadlineExceeded {
			return domain.Coordinates{}, fmt.Errorf("%w: %s", ErrGeocodeTimeout, variant)
		}
		return domain.Coordinates{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Coordinates{}, fmt.Errorf("geocode returned status %d for %q", resp.StatusCode, variant)
	}

	var payload geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Coordinates{}, err
	}

	if len(payload.Features) == 0 || len(payload.Features[0].Geometry.Coordinates) < 2 {
		return domain.Coordinates{}, fmt.Errorf("no geocode match for %q", variant)
	}

	// Provider axis order is [lng, lat]; swap to our convention.
	position := payload.Features[0].Geometry.Coordinates
	return domain.Coordinates{
		Latitude:  position[1],
		Longitude: position[0],
	}, nil
}

// startExternalSegment opens a New Relic external segment when a transaction
// is present on the context.
func startExternalSegment(ctx context.Context, req *http.Request) *newrelic.ExternalSegment {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return nil
	}
	return newrelic.StartExternalSegment(txn, req)
}

func endExternalSegment(seg *newrelic.ExternalSegment, resp *http.Response) {
	if seg == nil {
		return
	}
	if resp != nil {
		seg.Response = resp
	}
	seg.End()
}
