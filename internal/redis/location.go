package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
)

const branchLocationKey = "branches:locations"

// Branch is a clinic branch position used as the travel origin for home
// visits. Label is the branch's textual address, kept for display/audit.
type Branch struct {
	Label       string
	Coordinates domain.Coordinates
}

// BranchStore holds clinic branch positions in a Redis geo set.
type BranchStore struct {
	client *redis.Client
}

// NewBranchStore creates a new BranchStore.
func NewBranchStore(client *redis.Client) *BranchStore {
	return &BranchStore{client: client}
}

// AddBranch stores a branch position using GEOADD. The branch address doubles
// as the member name so a lookup returns the label directly.
func (s *BranchStore) AddBranch(ctx context.Context, label string, coords domain.Coordinates) error {
	return s.client.GeoAdd(ctx, branchLocationKey, &redis.GeoLocation{
		Name:      label,
		Longitude: coords.Longitude,
		Latitude:  coords.Latitude,
	}).Err()
}

// NearestBranch returns the branch closest to the given point, or nil when no
// branch has been loaded.
func (s *BranchStore) NearestBranch(ctx context.Context, point domain.Coordinates) (*Branch, error) {
	results, err := s.client.GeoRadius(ctx, branchLocationKey, point.Longitude, point.Latitude, &redis.GeoRadiusQuery{
		Radius:    1000,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
		Count:     1,
	}).Result()
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return nil, nil
	}

	return &Branch{
		Label: results[0].Name,
		Coordinates: domain.Coordinates{
			Latitude:  results[0].Latitude,
			Longitude: results[0].Longitude,
		},
	}, nil
}

// RemoveBranch removes a branch from the geo index.
func (s *BranchStore) RemoveBranch(ctx context.Context, label string) error {
	return s.client.ZRem(ctx, branchLocationKey, label).Err()
}
