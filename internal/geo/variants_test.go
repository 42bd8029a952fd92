package geo

import (
	"reflect"
	"testing"
)

func TestAddressVariants_AppendsCountryWhenAbsent(t *testing.T) {
	t.Parallel()

	variants := AddressVariants("12 Nguyen Trai, Da Nang", "Vietnam")

	want := []string{
		"12 Nguyen Trai, Da Nang",
		"12 Nguyen Trai, Da Nang, Vietnam",
	}
	if !reflect.DeepEqual(variants, want) {
		t.Errorf("expected %v, got %v", want, variants)
	}
}

func TestAddressVariants_KeepsCountryWhenPresent(t *testing.T) {
	t.Parallel()

	variants := AddressVariants("12 Nguyen Trai, Da Nang, Vietnam", "Vietnam")

	if len(variants) != 1 {
		t.Fatalf("expected 1 variant, got %d: %v", len(variants), variants)
	}
	if variants[0] != "12 Nguyen Trai, Da Nang, Vietnam" {
		t.Errorf("unexpected variant: %q", variants[0])
	}
}

func TestAddressVariants_RewritesDiacriticPlaceNames(t *testing.T) {
	t.Parallel()

	variants := AddressVariants("120 Hoàng Minh Thảo, Đà Nẵng, Việt Nam", "Vietnam")

	want := []string{
		"120 Hoàng Minh Thảo, Đà Nẵng, Việt Nam",
		"120 Hoàng Minh Thảo, Da Nang, Vietnam",
	}
	if !reflect.DeepEqual(variants, want) {
		t.Errorf("expected %v, got %v", want, variants)
	}
}

func TestAddressVariants_DeduplicatesPreservingOrder(t *testing.T) {
	t.Parallel()

	// No diacritics and country already present: every rewrite collapses
	// into the raw string.
	variants := AddressVariants("1 Tran Phu, Hue City, Vietnam", "Vietnam")

	if len(variants) != 1 {
		t.Errorf("expected duplicates removed, got %v", variants)
	}
}

func TestAddressVariants_EmptyAddress(t *testing.T) {
	t.Parallel()

	if variants := AddressVariants("   ", "Vietnam"); variants != nil {
		t.Errorf("expected nil for blank address, got %v", variants)
	}
}
