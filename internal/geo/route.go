package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
)

// roadWindingFactor scales the great-circle distance to approximate actual
// road distance when the routing endpoint is unavailable.
const roadWindingFactor = 1.3

// RouteEstimator obtains a driving distance from a routing endpoint, falling
// back to a scaled great-circle estimate when the endpoint fails.
type RouteEstimator struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewRouteEstimator creates a RouteEstimator.
func NewRouteEstimator(baseURL string, timeout time.Duration) *RouteEstimator {
	if timeout <= 0 {
		timeout = DefaultGeoTimeout
	}
	return &RouteEstimator{
		baseURL: baseURL,
		timeout: timeout,
		client:  &http.Client{},
	}
}

// Estimate returns the road distance in kilometers between origin and
// destination. It never fails outward: any routing error is absorbed by the
// haversine fallback so pricing is not blocked by a third-party outage.
func (e *RouteEstimator) Estimate(ctx context.Context, origin, destination domain.Coordinates) float64 {
	km, err := e.routedDistance(ctx, origin, destination)
	if err != nil {
		log.Printf("routing unavailable, using great-circle estimate: %v", err)
		return Haversine(origin, destination) * roadWindingFactor
	}
	return km
}

// routeResponse is the subset of the routing payload we read. Route distance
// is reported in meters.
type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
	} `json:"routes"`
}

func (e *RouteEstimator) routedDistance(ctx context.Context, origin, destination domain.Coordinates) (float64, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		e.baseURL,
		origin.Longitude, origin.Latitude,
		destination.Longitude, destination.Latitude,
	)

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	seg := startExternalSegment(ctx, req)
	resp, err := e.client.Do(req)
	endExternalSegment(seg, resp)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("routing returned status %d", resp.StatusCode)
	}

	var payload routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}

	if payload.Code != "Ok" || len(payload.Routes) == 0 {
		return 0, fmt.Errorf("no route found (code=%s)", payload.Code)
	}

	return payload.Routes[0].Distance / 1000.0, nil
}
