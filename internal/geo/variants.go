package geo

import "strings"

// placeRewrites maps Vietnamese diacritic-bearing place tokens to the English
// spellings the geocoding provider indexes more reliably.
var placeRewrites = []struct {
	from string
	to   string
}{
	{"Việt Nam", "Vietnam"},
	{"Thành phố Hồ Chí Minh", "Ho Chi Minh City"},
	{"TP. Hồ Chí Minh", "Ho Chi Minh City"},
	{"TP Hồ Chí Minh", "Ho Chi Minh City"},
	{"Hồ Chí Minh", "Ho Chi Minh City"},
	{"Hà Nội", "Hanoi"},
	{"Đà Nẵng", "Da Nang"},
	{"Cần Thơ", "Can Tho"},
	{"Huế", "Hue"},
}

// AddressVariants returns the ordered, deduplicated list of textual rewrites
// to try against the geocoder: the raw address, the address with the country
// appended when absent, and the address with Vietnamese place tokens replaced
// by their English equivalents.
func AddressVariants(address, country string) []string {
	raw := strings.TrimSpace(address)
	if raw == "" {
		return nil
	}

	candidates := []string{raw}

	lower := strings.ToLower(raw)
	if !strings.Contains(lower, strings.ToLower(country)) && !strings.Contains(lower, "việt nam") {
		candidates = append(candidates, raw+", "+country)
	}

	english := raw
	for _, r := range placeRewrites {
		english = strings.ReplaceAll(english, r.from, r.to)
	}
	if !strings.Contains(strings.ToLower(english), strings.ToLower(country)) {
		english = english + ", " + country
	}
	candidates = append(candidates, english)

	// Deduplicate while preserving order.
	seen := make(map[string]bool, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		variants = append(variants, c)
	}

	return variants
}
