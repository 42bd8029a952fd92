package tests

import (
	"testing"

	"github.com/davidnguyen27/sep490-PVSM-sub003/internal/service"
)

// ──────────────────────────────────────────────
// TRANSPORT FEE BANDS
// ──────────────────────────────────────────────

func TestTransportFee_BandBoundaries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		distanceKm float64
		want       int64
	}{
		{0, 50000},
		{3.2, 50000},
		{5, 50000}, // upper bound inclusive
		{5.0001, 80000},
		{10, 80000},
		{10.0001, 120000},
		{20, 120000},
		{20.0001, 200000},
		{150, 200000},
	}

	for _, tc := range cases {
		if got := service.TransportFee(tc.distanceKm); got != tc.want {
			t.Errorf("TransportFee(%v) = %d, want %d", tc.distanceKm, got, tc.want)
		}
	}
}

func TestTransportFee_Monotonic(t *testing.T) {
	t.Parallel()

	distances := []float64{0, 1, 2.5, 5, 5.5, 8, 10, 12, 20, 21, 50, 100}

	prev := int64(0)
	for _, d := range distances {
		fee := service.TransportFee(d)
		if fee < prev {
			t.Errorf("fee decreased at %v km: %d < %d", d, fee, prev)
		}
		prev = fee
	}
}
