package domain

// Coordinates is a geographic point. Produced by the geocoder; immutable.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// DistanceResult is a resolved travel distance for a home visit.
type DistanceResult struct {
	DistanceKm  float64
	OriginLabel string // the branch address the distance was measured from
}
