package promo

import "testing"

func TestSplitQuantity(t *testing.T) {
	cases := []struct {
		qty, display, backup int
	}{
		{0, 0, 0},
		{-4, 0, 0},
		{1, 1, 0},
		{2, 1, 1},
		{10, 1, 9},
	}
	for _, tc := range cases {
		d, b := SplitQuantity(tc.qty)
		if d != tc.display || b != tc.backup {
			t.Errorf("SplitQuantity(%d) = (%d,%d), want (%d,%d)", tc.qty, d, b, tc.display, tc.backup)
		}
	}
}

func TestIsPortableSKU(t *testing.T) {
	enabled := PortableIncentive{
		Enabled:         true,
		DiscountPercent: dec("15"),
		SKUPrefixes:     []string{"24", "27", "PT-"},
	}

	cases := []struct {
		name string
		sku  string
		pi   PortableIncentive
		want bool
	}{
		{"prefix match", "24-100", enabled, true},
		{"second prefix", "27X", enabled, true},
		{"longer prefix", "PT-55", enabled, true},
		{"no match", "LM-24", enabled, false},
		{"case sensitive", "pt-55", enabled, false},
		{"disabled incentive", "24-100", PortableIncentive{SKUPrefixes: []string{"24"}}, false},
		{"empty prefix never matches", "anything", PortableIncentive{Enabled: true, SKUPrefixes: []string{""}}, false},
		{"no prefixes", "24-100", PortableIncentive{Enabled: true}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPortableSKU(tc.sku, tc.pi); got != tc.want {
				t.Errorf("IsPortableSKU(%q) = %v, want %v", tc.sku, got, tc.want)
			}
		})
	}
}
