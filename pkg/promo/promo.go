// Package promo implements the promotion pricing engine for curated vendor
// selections: tier resolution, the display/backup quantity split, portable
// SKU pricing, and savings aggregation. Everything in this package is a pure
// computation over in-memory inputs; persistence and transport live elsewhere.
package promo

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TierFamily identifies which tier set governed a calculation.
type TierFamily string

const (
	// TierFamilySKU means tiers are keyed by unique display SKU count.
	TierFamilySKU TierFamily = "sku"
	// TierFamilyDollar means tiers are keyed by display dollar subtotal.
	TierFamilyDollar TierFamily = "dollar"
	// TierFamilyNone means the promotion defines no tiers.
	TierFamilyNone TierFamily = "none"
)

// Tier is a threshold/discount pair. For SKU tiers the threshold is a unique
// SKU count; for dollar tiers it is a display subtotal amount.
type Tier struct {
	ID              string          `json:"id"`
	Threshold       decimal.Decimal `json:"threshold"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// InventoryIncentive configures the backup (non-display) unit discount.
// A nil threshold is treated as not required.
type InventoryIncentive struct {
	Enabled               bool             `json:"enabled"`
	DisplayQtyThreshold   *int             `json:"displayQtyThreshold,omitempty"`
	DollarThreshold       *decimal.Decimal `json:"dollarThreshold,omitempty"`
	BackupDiscountPercent decimal.Decimal  `json:"backupDiscountPercent"`
}

// PortableIncentive configures the flat discount for portable SKUs, matched
// by prefix. Portables are priced on their full quantity with no
// display/backup split and never count toward tier thresholds.
type PortableIncentive struct {
	Enabled         bool            `json:"enabled"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	SKUPrefixes     []string        `json:"skuPrefixes"`
}

// Promotion is a vendor-scoped discount program. SKU tiers and dollar tiers
// are mutually exclusive in practice; when both are populated, SKU tiers
// take precedence during calculation.
type Promotion struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Vendor    string     `json:"vendor"`
	Active    bool       `json:"active"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`

	SKUTiers    []Tier `json:"skuTiers,omitempty"`
	DollarTiers []Tier `json:"dollarTiers,omitempty"`

	Inventory InventoryIncentive `json:"inventoryIncentive"`
	Portable  PortableIncentive  `json:"portableIncentive"`
}

// LineItem is one SKU row of a working selection, as fed to the calculator.
// UnitList is the undiscounted per-unit dealer cost.
type LineItem struct {
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Collection string          `json:"collection,omitempty"`
	Year       int             `json:"year,omitempty"`
	DisplayQty int             `json:"displayQty"`
	BackupQty  int             `json:"backupQty"`
	UnitList   decimal.Decimal `json:"unitList"`
	Notes      string          `json:"notes,omitempty"`
}

// SplitQuantity converts a raw selection quantity into the display/backup
// split: one display unit per SKU, the remainder is backup inventory.
func SplitQuantity(qty int) (displayQty, backupQty int) {
	if qty <= 0 {
		return 0, 0
	}
	if qty == 1 {
		return 1, 0
	}
	return 1, qty - 1
}

// IsPortableSKU reports whether sku qualifies as portable under the given
// incentive: the incentive is enabled and the SKU starts with any configured
// prefix. Matching is case-sensitive with no normalization.
func IsPortableSKU(sku string, pi PortableIncentive) bool {
	if !pi.Enabled {
		return false
	}
	for _, prefix := range pi.SKUPrefixes {
		if prefix != "" && strings.HasPrefix(sku, prefix) {
			return true
		}
	}
	return false
}

// NextTier describes the lowest tier not yet met, with the shortfall
// expressed in the tier family's own metric.
type NextTier struct {
	Tier         Tier            `json:"tier"`
	SKUsNeeded   int             `json:"skusNeeded,omitempty"`
	AmountNeeded decimal.Decimal `json:"amountNeeded"`
}

// ItemPricing is the priced projection of one line item. Regular items carry
// independent display and backup slices; portable items are priced as a
// single pool at the flat portable rate.
type ItemPricing struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Portable   bool   `json:"portable"`
	Quantity   int    `json:"quantity"`
	DisplayQty int    `json:"displayQty"`
	BackupQty  int    `json:"backupQty"`

	UnitList decimal.Decimal `json:"unitList"`
	// NetUnit is the flat discounted unit price for portables. For regular
	// items it mirrors DisplayNetUnit, the headline per-unit price.
	NetUnit        decimal.Decimal `json:"netUnit"`
	DisplayNetUnit decimal.Decimal `json:"displayNetUnit"`
	BackupNetUnit  decimal.Decimal `json:"backupNetUnit"`

	Extended decimal.Decimal `json:"extended"`
	Savings  decimal.Decimal `json:"savings"`
}

// Calculation is the pure, stateless projection produced for a
// (promotion, line items) pair. It is recomputed on every call and never
// persisted as an entity of its own.
type Calculation struct {
	UniqueDisplaySKUs int             `json:"uniqueDisplaySkus"`
	DisplaySubtotal   decimal.Decimal `json:"displaySubtotal"`
	DisplayTotal      decimal.Decimal `json:"displayTotal"`

	TierFamily       TierFamily      `json:"tierFamily"`
	BestTier         *Tier           `json:"bestTier,omitempty"`
	BestTierDiscount decimal.Decimal `json:"bestTierDiscount"`
	NextSKUTier      *NextTier       `json:"nextSkuTier,omitempty"`
	NextDollarTier   *NextTier       `json:"nextDollarTier,omitempty"`

	InventoryIncentiveQualified bool            `json:"inventoryIncentiveQualified"`
	BackupDiscountApplied       decimal.Decimal `json:"backupDiscountApplied"`
	BackupFallbackApplied       bool            `json:"backupFallbackApplied"`

	Items        []ItemPricing   `json:"items"`
	TotalSavings decimal.Decimal `json:"totalSavings"`

	// Flags records defensive clamps applied to inconsistent inputs
	// (negative quantities or prices). Callers should log these.
	Flags []string `json:"flags,omitempty"`
}

// AtMaxTier reports whether the selection has unlocked the highest tier of
// the governing family (or the promotion defines no tiers at all).
func (c *Calculation) AtMaxTier() bool {
	switch c.TierFamily {
	case TierFamilySKU:
		return c.NextSKUTier == nil
	case TierFamilyDollar:
		return c.NextDollarTier == nil
	default:
		return true
	}
}
