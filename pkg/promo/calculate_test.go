package promo

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tier(id string, threshold, discount string) Tier {
	return Tier{ID: id, Threshold: dec(threshold), DiscountPercent: dec(discount)}
}

func item(sku string, displayQty, backupQty int, unitList string) LineItem {
	return LineItem{
		SKU:        sku,
		Name:       "Fixture " + sku,
		DisplayQty: displayQty,
		BackupQty:  backupQty,
		UnitList:   dec(unitList),
	}
}

// uniqueItems builds n distinct regular SKUs, each split from the given raw
// quantity at the given unit list price.
func uniqueItems(n, qty int, unitList string) []LineItem {
	items := make([]LineItem, 0, n)
	for i := 0; i < n; i++ {
		d, b := SplitQuantity(qty)
		items = append(items, item(fmt.Sprintf("LM-%03d", i), d, b, unitList))
	}
	return items
}

func skuTierPromo(tiers ...Tier) *Promotion {
	return &Promotion{ID: "promo-1", Name: "Annual Showroom", Vendor: "lumena", Active: true, SKUTiers: tiers}
}

func eq(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func TestCalculateNilAndEmpty(t *testing.T) {
	items := uniqueItems(3, 1, "100")

	if got := Calculate(nil, items); got != nil {
		t.Errorf("Calculate(nil promotion) = %+v, want nil", got)
	}
	if got := Calculate(skuTierPromo(tier("t1", "5", "20")), nil); got != nil {
		t.Errorf("Calculate(no items) = %+v, want nil", got)
	}
	if got := Calculate(skuTierPromo(tier("t1", "5", "20")), []LineItem{}); got != nil {
		t.Errorf("Calculate(empty items) = %+v, want nil", got)
	}
}

func TestScenarioA_SKUTierProgress(t *testing.T) {
	p := skuTierPromo(tier("t1", "5", "20"), tier("t2", "10", "30"))
	calc := Calculate(p, uniqueItems(7, 1, "100"))
	if calc == nil {
		t.Fatal("expected a calculation")
	}

	if calc.UniqueDisplaySKUs != 7 {
		t.Errorf("UniqueDisplaySKUs = %d, want 7", calc.UniqueDisplaySKUs)
	}
	eq(t, "BestTierDiscount", calc.BestTierDiscount, dec("20"))
	if calc.NextSKUTier == nil {
		t.Fatal("expected a next SKU tier")
	}
	if calc.NextSKUTier.SKUsNeeded != 3 {
		t.Errorf("NextSKUTier.SKUsNeeded = %d, want 3", calc.NextSKUTier.SKUsNeeded)
	}
	eq(t, "NextSKUTier threshold", calc.NextSKUTier.Tier.Threshold, dec("10"))
	if calc.AtMaxTier() {
		t.Error("AtMaxTier() = true at 7 of 10 SKUs")
	}
}

func TestScenarioB_BackupIndependentOfTier(t *testing.T) {
	p := skuTierPromo(tier("t1", "5", "20"), tier("t2", "10", "30"))
	p.Inventory = InventoryIncentive{Enabled: true, BackupDiscountPercent: dec("15")}

	calc := Calculate(p, uniqueItems(10, 3, "100"))
	if calc == nil {
		t.Fatal("expected a calculation")
	}

	eq(t, "BestTierDiscount", calc.BestTierDiscount, dec("30"))
	if !calc.AtMaxTier() {
		t.Error("expected max tier at 10 unique SKUs")
	}
	if len(calc.Items) != 10 {
		t.Fatalf("len(Items) = %d, want 10", len(calc.Items))
	}
	for _, line := range calc.Items {
		if line.DisplayQty != 1 || line.BackupQty != 2 {
			t.Fatalf("%s split = (%d,%d), want (1,2)", line.SKU, line.DisplayQty, line.BackupQty)
		}
		// Display unit at 30% off, backup pair at 15% off, no compounding.
		eq(t, line.SKU+" DisplayNetUnit", line.DisplayNetUnit, dec("70"))
		eq(t, line.SKU+" BackupNetUnit", line.BackupNetUnit, dec("85"))
		eq(t, line.SKU+" Extended", line.Extended, dec("240"))
		eq(t, line.SKU+" Savings", line.Savings, dec("60"))
	}
	eq(t, "TotalSavings", calc.TotalSavings, dec("600"))
	if calc.BackupFallbackApplied {
		t.Error("fallback flagged although incentive is configured")
	}
}

func TestScenarioC_PortableFlatDiscount(t *testing.T) {
	p := skuTierPromo(tier("t1", "5", "20"))
	p.Portable = PortableIncentive{
		Enabled:         true,
		DiscountPercent: dec("15"),
		SKUPrefixes:     []string{"24", "27"},
	}

	d, b := SplitQuantity(5)
	calc := Calculate(p, []LineItem{item("24-100", d, b, "100")})
	if calc == nil {
		t.Fatal("expected a calculation")
	}

	if calc.UniqueDisplaySKUs != 0 {
		t.Errorf("UniqueDisplaySKUs = %d, want 0 (portables excluded)", calc.UniqueDisplaySKUs)
	}
	eq(t, "DisplaySubtotal", calc.DisplaySubtotal, decimal.Zero)

	line := calc.Items[0]
	if !line.Portable {
		t.Fatal("item not classified portable")
	}
	if line.Quantity != 5 {
		t.Errorf("Quantity = %d, want 5", line.Quantity)
	}
	eq(t, "NetUnit", line.NetUnit, dec("85"))
	eq(t, "Extended", line.Extended, dec("425"))
	eq(t, "Savings", line.Savings, dec("75"))
}

func TestScenarioE_NonMonotonicTiers(t *testing.T) {
	// Highest threshold met wins, even when a lower threshold offers more.
	p := skuTierPromo(tier("t1", "3", "30"), tier("t2", "10", "20"))
	calc := Calculate(p, uniqueItems(10, 1, "50"))
	if calc == nil {
		t.Fatal("expected a calculation")
	}
	eq(t, "BestTierDiscount", calc.BestTierDiscount, dec("20"))
	if calc.BestTier == nil || calc.BestTier.ID != "t2" {
		t.Errorf("BestTier = %+v, want t2", calc.BestTier)
	}
	if !calc.AtMaxTier() {
		t.Error("expected max tier")
	}
}

func TestDollarTiers(t *testing.T) {
	p := &Promotion{
		ID: "promo-d", Vendor: "lumena", Active: true,
		DollarTiers: []Tier{tier("d1", "1000", "10"), tier("d2", "2500", "20")},
	}

	t.Run("between tiers", func(t *testing.T) {
		calc := Calculate(p, uniqueItems(4, 1, "300")) // display subtotal 1200
		eq(t, "DisplaySubtotal", calc.DisplaySubtotal, dec("1200"))
		eq(t, "BestTierDiscount", calc.BestTierDiscount, dec("10"))
		if calc.TierFamily != TierFamilyDollar {
			t.Errorf("TierFamily = %q, want dollar", calc.TierFamily)
		}
		if calc.NextDollarTier == nil {
			t.Fatal("expected a next dollar tier")
		}
		eq(t, "AmountNeeded", calc.NextDollarTier.AmountNeeded, dec("1300"))
		if calc.NextSKUTier != nil {
			t.Error("NextSKUTier set for a dollar-tier promotion")
		}
	})

	t.Run("below all tiers", func(t *testing.T) {
		calc := Calculate(p, uniqueItems(2, 1, "100"))
		eq(t, "BestTierDiscount", calc.BestTierDiscount, decimal.Zero)
		if calc.BestTier != nil {
			t.Errorf("BestTier = %+v, want nil", calc.BestTier)
		}
		eq(t, "AmountNeeded", calc.NextDollarTier.AmountNeeded, dec("800"))
	})
}

func TestSKUTiersTakePrecedenceOverDollarTiers(t *testing.T) {
	p := skuTierPromo(tier("t1", "2", "20"))
	p.DollarTiers = []Tier{tier("d1", "1", "99")}

	calc := Calculate(p, uniqueItems(3, 1, "100"))
	if calc.TierFamily != TierFamilySKU {
		t.Fatalf("TierFamily = %q, want sku", calc.TierFamily)
	}
	eq(t, "BestTierDiscount", calc.BestTierDiscount, dec("20"))
	if calc.NextDollarTier != nil {
		t.Error("dollar tiers evaluated although SKU tiers are present")
	}
}

func TestNoTiersConfigured(t *testing.T) {
	p := &Promotion{ID: "promo-n", Vendor: "lumena", Active: true}
	calc := Calculate(p, uniqueItems(3, 2, "100"))
	if calc.TierFamily != TierFamilyNone {
		t.Errorf("TierFamily = %q, want none", calc.TierFamily)
	}
	eq(t, "BestTierDiscount", calc.BestTierDiscount, decimal.Zero)
	if calc.NextSKUTier != nil || calc.NextDollarTier != nil {
		t.Error("next tier reported without tiers")
	}
	if !calc.AtMaxTier() {
		t.Error("AtMaxTier() = false without tiers")
	}
	// No tier discount and no incentive: backups stay at list.
	for _, line := range calc.Items {
		eq(t, line.SKU+" BackupNetUnit", line.BackupNetUnit, dec("100"))
		eq(t, line.SKU+" Savings", line.Savings, decimal.Zero)
	}
}

func TestBackupFallbackFifteenPercent(t *testing.T) {
	// Incentive disabled but a tier discount is unlocked: backups get the
	// documented 15% fallback and the result says so.
	p := skuTierPromo(tier("t1", "2", "25"))
	calc := Calculate(p, uniqueItems(3, 4, "200"))

	if !calc.BackupFallbackApplied {
		t.Fatal("BackupFallbackApplied = false, want true")
	}
	eq(t, "BackupDiscountApplied", calc.BackupDiscountApplied, dec("15"))
	for _, line := range calc.Items {
		eq(t, line.SKU+" BackupNetUnit", line.BackupNetUnit, dec("170"))
	}

	// No tier unlocked: no fallback either.
	calc = Calculate(p, uniqueItems(1, 4, "200"))
	if calc.BackupFallbackApplied {
		t.Error("fallback applied without an unlocked tier")
	}
	eq(t, "BackupDiscountApplied", calc.BackupDiscountApplied, decimal.Zero)
}

func TestNoStackingInvariant(t *testing.T) {
	// Backup net price must track only the backup rate while the tier
	// discount varies, and vice versa.
	for _, backupPct := range []string{"0", "5", "15", "40"} {
		for _, tierPct := range []string{"10", "30"} {
			p := skuTierPromo(tier("t1", "1", tierPct))
			p.Inventory = InventoryIncentive{Enabled: true, BackupDiscountPercent: dec(backupPct)}

			calc := Calculate(p, []LineItem{item("LM-001", 1, 2, "100")})
			line := calc.Items[0]
			eq(t, "DisplayNetUnit", line.DisplayNetUnit, discountedUnit(dec("100"), dec(tierPct)))
			eq(t, "BackupNetUnit", line.BackupNetUnit, discountedUnit(dec("100"), dec(backupPct)))
		}
	}
}

func TestPortableExclusivity(t *testing.T) {
	p := skuTierPromo(tier("t1", "2", "20"))
	p.Portable = PortableIncentive{Enabled: true, DiscountPercent: dec("10"), SKUPrefixes: []string{"PT-"}}

	items := []LineItem{
		item("PT-900", 1, 99, "500"), // large portable pool
		item("LM-001", 1, 0, "100"),
	}
	calc := Calculate(p, items)
	if calc.UniqueDisplaySKUs != 1 {
		t.Errorf("UniqueDisplaySKUs = %d, want 1", calc.UniqueDisplaySKUs)
	}
	eq(t, "DisplaySubtotal", calc.DisplaySubtotal, dec("100"))
}

func TestMonotonicityOfTierDiscount(t *testing.T) {
	p := skuTierPromo(tier("t1", "3", "10"), tier("t2", "6", "20"), tier("t3", "9", "30"))

	prev := decimal.Zero
	for n := 1; n <= 12; n++ {
		calc := Calculate(p, uniqueItems(n, 1, "100"))
		if calc.BestTierDiscount.LessThan(prev) {
			t.Fatalf("discount decreased at %d SKUs: %s < %s", n, calc.BestTierDiscount, prev)
		}
		prev = calc.BestTierDiscount
	}
}

func TestSavingsConservation(t *testing.T) {
	p := skuTierPromo(tier("t1", "2", "20"), tier("t2", "5", "35"))
	p.Inventory = InventoryIncentive{Enabled: true, BackupDiscountPercent: dec("12.5")}
	p.Portable = PortableIncentive{Enabled: true, DiscountPercent: dec("15"), SKUPrefixes: []string{"24"}}

	items := []LineItem{
		item("LM-001", 1, 3, "149.95"),
		item("LM-002", 1, 0, "89.50"),
		item("LM-003", 1, 1, "410"),
		item("24-771", 2, 3, "66.20"),
		item("LM-004", 0, 0, "250"), // zero-quantity row
	}
	calc := Calculate(p, items)

	total := decimal.Zero
	for _, line := range calc.Items {
		gross := line.UnitList.Mul(decimal.NewFromInt(int64(line.Quantity)))
		total = total.Add(gross.Sub(line.Extended))
	}
	eq(t, "TotalSavings", calc.TotalSavings, total)
}

func TestIdempotence(t *testing.T) {
	p := skuTierPromo(tier("t1", "2", "20"), tier("t2", "5", "30"))
	p.Inventory = InventoryIncentive{Enabled: true, BackupDiscountPercent: dec("15")}
	items := uniqueItems(4, 3, "99.99")

	a := Calculate(p, items)
	b := Calculate(p, items)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different calculations")
	}
}

func TestInventoryQualification(t *testing.T) {
	qty := func(n int) *int { return &n }
	dollars := func(s string) *decimal.Decimal { d := dec(s); return &d }

	cases := []struct {
		name string
		inc  InventoryIncentive
		want bool
	}{
		{"disabled", InventoryIncentive{Enabled: false, DisplayQtyThreshold: qty(1)}, false},
		{"no thresholds auto-qualifies", InventoryIncentive{Enabled: true}, true},
		{"qty threshold met", InventoryIncentive{Enabled: true, DisplayQtyThreshold: qty(3)}, true},
		{"qty threshold unmet", InventoryIncentive{Enabled: true, DisplayQtyThreshold: qty(5)}, false},
		{"dollar threshold met", InventoryIncentive{Enabled: true, DollarThreshold: dollars("300")}, true},
		{"dollar threshold unmet", InventoryIncentive{Enabled: true, DollarThreshold: dollars("500")}, false},
		{"both set, either qualifies", InventoryIncentive{Enabled: true, DisplayQtyThreshold: qty(99), DollarThreshold: dollars("300")}, true},
		{"both set, neither met", InventoryIncentive{Enabled: true, DisplayQtyThreshold: qty(99), DollarThreshold: dollars("9999")}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := skuTierPromo(tier("t1", "2", "20"))
			p.Inventory = tc.inc
			// 3 unique display SKUs, display subtotal 300.
			calc := Calculate(p, uniqueItems(3, 2, "100"))
			if calc.InventoryIncentiveQualified != tc.want {
				t.Errorf("InventoryIncentiveQualified = %v, want %v", calc.InventoryIncentiveQualified, tc.want)
			}
		})
	}
}

func TestDisplayQtyCappedAtOne(t *testing.T) {
	p := skuTierPromo(tier("t1", "1", "20"))
	calc := Calculate(p, []LineItem{item("LM-001", 4, 1, "100")})

	line := calc.Items[0]
	if line.DisplayQty != 1 || line.BackupQty != 4 {
		t.Errorf("split = (%d,%d), want (1,4): excess display rolls to backup", line.DisplayQty, line.BackupQty)
	}
	eq(t, "DisplaySubtotal", calc.DisplaySubtotal, dec("100"))
}

func TestZeroPriceAndZeroQuantity(t *testing.T) {
	p := skuTierPromo(tier("t1", "1", "20"))
	calc := Calculate(p, []LineItem{
		item("LM-FREE", 1, 2, "0"),
		item("LM-GHOST", 0, 0, "120"),
	})

	if calc.UniqueDisplaySKUs != 1 {
		t.Errorf("UniqueDisplaySKUs = %d, want 1", calc.UniqueDisplaySKUs)
	}
	if len(calc.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2 (zero rows still listed)", len(calc.Items))
	}
	for _, line := range calc.Items {
		eq(t, line.SKU+" Extended", line.Extended, decimal.Zero)
		eq(t, line.SKU+" Savings", line.Savings, decimal.Zero)
	}
}

func TestNegativeInputsClampedAndFlagged(t *testing.T) {
	p := skuTierPromo(tier("t1", "1", "20"))
	calc := Calculate(p, []LineItem{
		{SKU: "LM-BAD", DisplayQty: -3, BackupQty: -1, UnitList: dec("-50")},
		item("LM-OK", 1, 0, "100"),
	})

	if len(calc.Flags) != 3 {
		t.Errorf("len(Flags) = %d, want 3: %v", len(calc.Flags), calc.Flags)
	}
	if calc.TotalSavings.IsNegative() {
		t.Errorf("TotalSavings = %s, negative savings propagated", calc.TotalSavings)
	}
	eq(t, "DisplaySubtotal", calc.DisplaySubtotal, dec("100"))
}

func TestMalformedTiersAreUnreachable(t *testing.T) {
	p := skuTierPromo(
		tier("bad1", "0", "50"),    // threshold <= 0
		tier("bad2", "-2", "10"),   // negative threshold
		tier("bad3", "4", "150"),   // discount > 100
		tier("ok", "2", "20"),
	)
	calc := Calculate(p, uniqueItems(5, 1, "100"))

	eq(t, "BestTierDiscount", calc.BestTierDiscount, dec("20"))
	if calc.BestTier == nil || calc.BestTier.ID != "ok" {
		t.Errorf("BestTier = %+v, want the one valid tier", calc.BestTier)
	}
	if !calc.AtMaxTier() {
		t.Error("invalid tiers reported as a next tier")
	}
}

func TestDuplicateSKUCountedOnce(t *testing.T) {
	p := skuTierPromo(tier("t1", "2", "20"))
	calc := Calculate(p, []LineItem{
		item("LM-001", 1, 0, "100"),
		item("LM-001", 1, 0, "100"),
		item("LM-002", 1, 0, "100"),
	})
	if calc.UniqueDisplaySKUs != 2 {
		t.Errorf("UniqueDisplaySKUs = %d, want 2 (distinct SKUs)", calc.UniqueDisplaySKUs)
	}
	// Dollar metric still accumulates per row.
	eq(t, "DisplaySubtotal", calc.DisplaySubtotal, dec("300"))
}

func TestDisplayTotalNetOfTierDiscount(t *testing.T) {
	p := skuTierPromo(tier("t1", "2", "25"))
	calc := Calculate(p, uniqueItems(4, 1, "100"))
	eq(t, "DisplaySubtotal", calc.DisplaySubtotal, dec("400"))
	eq(t, "DisplayTotal", calc.DisplayTotal, dec("300"))
}
