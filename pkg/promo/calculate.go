package promo

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// fallbackBackupPercent is the backup discount applied when no inventory
// incentive is configured but a tier discount is unlocked. Observed legacy
// behavior carried over as an explicit constant; results flag its use via
// Calculation.BackupFallbackApplied.
var fallbackBackupPercent = decimal.NewFromInt(15)

var hundred = decimal.NewFromInt(100)

// Calculate prices a selection's line items under the given promotion.
// It returns nil when the promotion is nil or no items are provided:
// "no promotion active" is a valid, common state, not an error.
//
// Invalid tiers (threshold <= 0 or discount outside [0,100]) are treated as
// unreachable rather than fatal, since stale configurations may already be
// persisted. Negative quantities and prices are clamped to zero and recorded
// on the result's Flags.
func Calculate(p *Promotion, items []LineItem) *Calculation {
	if p == nil || len(items) == 0 {
		return nil
	}

	calc := &Calculation{
		DisplaySubtotal: decimal.Zero,
		DisplayTotal:    decimal.Zero,
		TotalSavings:    decimal.Zero,
	}

	portables, regulars := partition(p, items, calc)

	// Display metrics come from regular items only. Display quantity is
	// capped at one unit per SKU; the remainder is backup inventory.
	seen := make(map[string]bool, len(regulars))
	totalDisplayQty := 0
	for i := range regulars {
		it := &regulars[i]
		if it.DisplayQty > 1 {
			it.BackupQty += it.DisplayQty - 1
			it.DisplayQty = 1
		}
		if it.DisplayQty > 0 {
			if !seen[it.SKU] {
				seen[it.SKU] = true
				calc.UniqueDisplaySKUs++
			}
			totalDisplayQty += it.DisplayQty
			calc.DisplaySubtotal = calc.DisplaySubtotal.Add(
				it.UnitList.Mul(decimal.NewFromInt(int64(it.DisplayQty))))
		}
	}

	resolveTiers(p, calc)

	backupRate, fallback := backupDiscountRate(p, calc.BestTierDiscount)
	calc.BackupDiscountApplied = backupRate
	calc.BackupFallbackApplied = fallback
	calc.InventoryIncentiveQualified = inventoryQualified(p, totalDisplayQty, calc.DisplaySubtotal)

	for _, it := range regulars {
		calc.Items = append(calc.Items, priceRegular(it, calc.BestTierDiscount, backupRate))
	}
	for _, it := range portables {
		calc.Items = append(calc.Items, pricePortable(it, p.Portable.DiscountPercent))
	}

	for _, line := range calc.Items {
		calc.TotalSavings = calc.TotalSavings.Add(line.Savings)
	}
	calc.DisplayTotal = calc.DisplaySubtotal.Sub(
		calc.DisplaySubtotal.Mul(calc.BestTierDiscount).Div(hundred))

	return calc
}

// partition splits items into portable and regular sets, clamping negative
// quantities and prices to zero along the way.
func partition(p *Promotion, items []LineItem, calc *Calculation) (portables, regulars []LineItem) {
	for _, it := range items {
		if it.DisplayQty < 0 {
			calc.Flags = append(calc.Flags, fmt.Sprintf("%s: negative displayQty clamped to 0", it.SKU))
			it.DisplayQty = 0
		}
		if it.BackupQty < 0 {
			calc.Flags = append(calc.Flags, fmt.Sprintf("%s: negative backupQty clamped to 0", it.SKU))
			it.BackupQty = 0
		}
		if it.UnitList.IsNegative() {
			calc.Flags = append(calc.Flags, fmt.Sprintf("%s: negative unitList clamped to 0", it.SKU))
			it.UnitList = decimal.Zero
		}
		if IsPortableSKU(it.SKU, p.Portable) {
			portables = append(portables, it)
		} else {
			regulars = append(regulars, it)
		}
	}
	return portables, regulars
}

// validTier reports whether a tier is usable at calculation time. Malformed
// tiers are skipped, never a crash.
func validTier(t Tier) bool {
	return t.Threshold.IsPositive() &&
		!t.DiscountPercent.IsNegative() &&
		t.DiscountPercent.LessThanOrEqual(hundred)
}

// resolveTiers picks the governing tier family, the best met tier, and the
// next unmet tier. SKU tiers take precedence when both families are present.
// Tiers are evaluated in ascending threshold order and the highest met
// threshold wins, even when a lower threshold carries a larger discount.
func resolveTiers(p *Promotion, calc *Calculation) {
	calc.BestTierDiscount = decimal.Zero
	switch {
	case len(p.SKUTiers) > 0:
		calc.TierFamily = TierFamilySKU
		metric := decimal.NewFromInt(int64(calc.UniqueDisplaySKUs))
		best, next := searchTiers(p.SKUTiers, metric)
		calc.BestTier = best
		if best != nil {
			calc.BestTierDiscount = best.DiscountPercent
		}
		if next != nil {
			shortfall := next.Tier.Threshold.Sub(metric)
			if shortfall.IsNegative() {
				shortfall = decimal.Zero
			}
			next.SKUsNeeded = int(shortfall.Ceil().IntPart())
			next.AmountNeeded = decimal.Zero
			calc.NextSKUTier = next
		}
	case len(p.DollarTiers) > 0:
		calc.TierFamily = TierFamilyDollar
		best, next := searchTiers(p.DollarTiers, calc.DisplaySubtotal)
		calc.BestTier = best
		if best != nil {
			calc.BestTierDiscount = best.DiscountPercent
		}
		if next != nil {
			shortfall := next.Tier.Threshold.Sub(calc.DisplaySubtotal)
			if shortfall.IsNegative() {
				shortfall = decimal.Zero
			}
			next.AmountNeeded = shortfall
			calc.NextDollarTier = next
		}
	default:
		calc.TierFamily = TierFamilyNone
	}
}

// searchTiers returns the highest-threshold tier met by metric and the
// lowest-threshold tier not yet met. Invalid tiers are unreachable.
func searchTiers(tiers []Tier, metric decimal.Decimal) (best *Tier, next *NextTier) {
	ordered := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		if validTier(t) {
			ordered = append(ordered, t)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Threshold.LessThan(ordered[j].Threshold)
	})

	for i := range ordered {
		t := ordered[i]
		if metric.GreaterThanOrEqual(t.Threshold) {
			best = &ordered[i]
		} else if next == nil {
			next = &NextTier{Tier: t}
		}
	}
	return best, next
}

// backupDiscountRate resolves the rate applied to backup units. The
// inventory incentive rate is independent of the tier discount and never
// stacks with it.
func backupDiscountRate(p *Promotion, tierDiscount decimal.Decimal) (rate decimal.Decimal, fallback bool) {
	if p.Inventory.Enabled {
		r := p.Inventory.BackupDiscountPercent
		if r.IsNegative() || r.GreaterThan(hundred) {
			return decimal.Zero, false
		}
		return r, false
	}
	if tierDiscount.IsPositive() {
		return fallbackBackupPercent, true
	}
	return decimal.Zero, false
}

// inventoryQualified checks the selection against the incentive thresholds.
// An unset threshold is not required. When both thresholds are configured,
// meeting either one qualifies.
func inventoryQualified(p *Promotion, totalDisplayQty int, displaySubtotal decimal.Decimal) bool {
	inc := p.Inventory
	if !inc.Enabled {
		return false
	}
	qtyMet := inc.DisplayQtyThreshold != nil && totalDisplayQty >= *inc.DisplayQtyThreshold
	dollarMet := inc.DollarThreshold != nil && displaySubtotal.GreaterThanOrEqual(*inc.DollarThreshold)

	switch {
	case inc.DisplayQtyThreshold != nil && inc.DollarThreshold != nil:
		return qtyMet || dollarMet
	case inc.DisplayQtyThreshold != nil:
		return qtyMet
	case inc.DollarThreshold != nil:
		return dollarMet
	default:
		return true
	}
}

// priceRegular prices a non-portable item: the display slice at the tier
// discount, the backup slice at the backup rate. The two slices are never
// stacked.
func priceRegular(it LineItem, tierDiscount, backupRate decimal.Decimal) ItemPricing {
	displayQty := decimal.NewFromInt(int64(it.DisplayQty))
	backupQty := decimal.NewFromInt(int64(it.BackupQty))

	displayNet := discountedUnit(it.UnitList, tierDiscount)
	backupNet := discountedUnit(it.UnitList, backupRate)

	extended := displayNet.Mul(displayQty).Add(backupNet.Mul(backupQty))
	gross := it.UnitList.Mul(displayQty.Add(backupQty))

	return ItemPricing{
		SKU:            it.SKU,
		Name:           it.Name,
		Portable:       false,
		Quantity:       it.DisplayQty + it.BackupQty,
		DisplayQty:     it.DisplayQty,
		BackupQty:      it.BackupQty,
		UnitList:       it.UnitList,
		NetUnit:        displayNet,
		DisplayNetUnit: displayNet,
		BackupNetUnit:  backupNet,
		Extended:       extended,
		Savings:        gross.Sub(extended),
	}
}

// pricePortable prices a portable item: flat discount on the full quantity
// pool, no display/backup split, no stacking with tier or inventory rates.
func pricePortable(it LineItem, flatDiscount decimal.Decimal) ItemPricing {
	if flatDiscount.IsNegative() || flatDiscount.GreaterThan(hundred) {
		flatDiscount = decimal.Zero
	}
	qty := it.DisplayQty + it.BackupQty
	qtyDec := decimal.NewFromInt(int64(qty))

	net := discountedUnit(it.UnitList, flatDiscount)
	extended := net.Mul(qtyDec)
	gross := it.UnitList.Mul(qtyDec)

	return ItemPricing{
		SKU:            it.SKU,
		Name:           it.Name,
		Portable:       true,
		Quantity:       qty,
		UnitList:       it.UnitList,
		NetUnit:        net,
		DisplayNetUnit: net,
		BackupNetUnit:  net,
		Extended:       extended,
		Savings:        gross.Sub(extended),
	}
}

func discountedUnit(unitList, percent decimal.Decimal) decimal.Decimal {
	return unitList.Sub(unitList.Mul(percent).Div(hundred))
}
