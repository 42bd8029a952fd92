package domain

// PricingContext is the read-only input bundle for pricing a line item.
// Amounts are in VND.
type PricingContext struct {
	UnitPrice      int64
	Quantity       int
	MembershipTier MembershipTier
	VoucherPercent *int64 // nil when no voucher is applied
	IsHomeVisit    bool
	HomeAddress    string
}

// PricingResult is the computed price breakdown for a line item.
//
// Invariants: TotalDiscount = MemberDiscount + VoucherDiscount and
// FinalAmount = max(0, Subtotal + TransportFee - TotalDiscount).
type PricingResult struct {
	Subtotal        int64
	TransportFee    int64
	MemberDiscount  int64
	VoucherDiscount int64
	TotalDiscount   int64
	FinalAmount     int64
}
