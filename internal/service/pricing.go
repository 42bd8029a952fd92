package service

import (
	"context"
	"log"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/domain"
	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/redis"
)

// AddressResolver turns a free-text address into coordinates.
// Implemented by geo.Geocoder.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) (domain.Coordinates, error)
}

// DistanceEstimator obtains a road distance between two points. It never
// fails; routing outages are absorbed internally. Implemented by
// geo.RouteEstimator.
type DistanceEstimator interface {
	Estimate(ctx context.Context, origin, destination domain.Coordinates) float64
}

// PricingService computes the payable amount for an appointment line item,
// consulting the geocoder and router for home-visit transport surcharges.
type PricingService struct {
	resolver  AddressResolver
	estimator DistanceEstimator
	branches  redis.BranchStoreInterface
}

// NewPricingService creates a new PricingService.
func NewPricingService(
	resolver AddressResolver,
	estimator DistanceEstimator,
	branches redis.BranchStoreInterface,
) *PricingService {
	return &PricingService{
		resolver:  resolver,
		estimator: estimator,
		branches:  branches,
	}
}

// QuoteResult bundles the price breakdown with the distance that produced the
// transport fee, when one was resolved.
type QuoteResult struct {
	Pricing  *domain.PricingResult
	Distance *domain.DistanceResult
}

// Quote resolves the travel distance for a home visit (best effort) and
// prices the line item.
func (s *PricingService) Quote(ctx context.Context, pctx domain.PricingContext) (*QuoteResult, error) {
	if err := validatePricingContext(pctx); err != nil {
		return nil, err
	}

	distance := s.resolveDistance(ctx, pctx)
	return &QuoteResult{
		Pricing:  Price(pctx, distance),
		Distance: distance,
	}, nil
}

// resolveDistance returns the travel distance from the nearest clinic branch
// to the customer, or nil when it cannot be determined. The transport
// surcharge is best-effort: failure here never blocks checkout.
func (s *PricingService) resolveDistance(ctx context.Context, pctx domain.PricingContext) *domain.DistanceResult {
	if !pctx.IsHomeVisit || pctx.HomeAddress == "" {
		return nil
	}

	customer, err := s.resolver.Resolve(ctx, pctx.HomeAddress)
	if err != nil {
		log.Printf("could not geocode %q, waiving transport fee: %v", pctx.HomeAddress, err)
		return nil
	}

	branch, err := s.branches.NearestBranch(ctx, customer)
	if err != nil || branch == nil {
		log.Printf("no branch origin available, waiving transport fee (err=%v)", err)
		return nil
	}

	km := s.estimator.Estimate(ctx, branch.Coordinates, customer)
	return &domain.DistanceResult{
		DistanceKm:  km,
		OriginLabel: branch.Label,
	}
}

// Price folds unit price, membership discount, voucher discount and transport
// fee into the final payable amount. The composition order is fixed:
// discounts apply to the subtotal only; the transport fee is never
// discounted; the result is clamped at zero.
func Price(pctx domain.PricingContext, distance *domain.DistanceResult) *domain.PricingResult {
	subtotal := pctx.UnitPrice * int64(pctx.Quantity)

	var transportFee int64
	if pctx.IsHomeVisit && distance != nil {
		transportFee = TransportFee(distance.DistanceKm)
	}

	memberDiscount := subtotal * pctx.MembershipTier.DiscountPercent() / 100

	var voucherDiscount int64
	if pctx.VoucherPercent != nil {
		voucherDiscount = subtotal * *pctx.VoucherPercent / 100
	}

	totalDiscount := memberDiscount + voucherDiscount

	finalAmount := subtotal + transportFee - totalDiscount
	if finalAmount < 0 {
		finalAmount = 0
	}

	return &domain.PricingResult{
		Subtotal:        subtotal,
		TransportFee:    transportFee,
		MemberDiscount:  memberDiscount,
		VoucherDiscount: voucherDiscount,
		TotalDiscount:   totalDiscount,
		FinalAmount:     finalAmount,
	}
}

func validatePricingContext(pctx domain.PricingContext) error {
	if pctx.UnitPrice < 0 {
		return ErrInvalidUnitPrice
	}
	if pctx.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if pctx.VoucherPercent != nil && (*pctx.VoucherPercent < 0 || *pctx.VoucherPercent > 100) {
		return ErrInvalidVoucherPercent
	}
	return nil
}
