package service

// Transport fee bands in VND. Upper bounds are inclusive: a 5 km trip falls
// in the first band, not the second.
const (
	feeUpTo5Km  = 50000
	feeUpTo10Km = 80000
	feeUpTo20Km = 120000
	feeBeyond20 = 200000
)

// TransportFee maps a home-visit travel distance to a tiered flat fee.
func TransportFee(distanceKm float64) int64 {
	switch {
	case distanceKm <= 5:
		return feeUpTo5Km
	case distanceKm <= 10:
		return feeUpTo10Km
	case distanceKm <= 20:
		return feeUpTo20Km
	default:
		return feeBeyond20
	}
}
