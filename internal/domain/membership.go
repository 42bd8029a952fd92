package domain

// MembershipTier represents a customer's membership level.
type MembershipTier string

const (
	TierNone   MembershipTier = "NONE"
	TierBronze MembershipTier = "BRONZE"
	TierSilver MembershipTier = "SILVER"
	TierGold   MembershipTier = "GOLD"
)

// DiscountPercent returns the percentage discount granted by the tier.
// The mapping is fixed; unknown tiers get no discount.
func (t MembershipTier) DiscountPercent() int64 {
	switch t {
	case TierSilver:
		return 10
	case TierGold:
		return 20
	default:
		return 0
	}
}
