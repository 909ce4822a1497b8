package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/lumengrid/lumen_api/pkg/promo"
)

// TierList stores a promotion's tier set as a JSONB column.
type TierList []promo.Tier

// Value implements driver.Valuer for JSONB storage.
func (t TierList) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB retrieval.
func (t *TierList) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = nil
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("cannot scan %T into TierList", src)
	}
}

// Promotion is the persisted form of a vendor discount program. Tier sets
// live in JSONB columns; incentive configuration is flattened into scalar
// columns. Use ToPromo to obtain the calculation-ready shape.
type Promotion struct {
	ID        int        `db:"id" json:"id"`
	Vendor    string     `db:"vendor" json:"vendor"`
	Name      string     `db:"name" json:"name"`
	Active    bool       `db:"active" json:"active"`
	StartDate *time.Time `db:"start_date" json:"startDate,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"endDate,omitempty"`

	SKUTiers    TierList `db:"sku_tiers" json:"skuTiers"`
	DollarTiers TierList `db:"dollar_tiers" json:"dollarTiers"`

	InventoryEnabled        bool             `db:"inventory_enabled" json:"inventoryEnabled"`
	InventoryQtyThreshold   *int             `db:"inventory_qty_threshold" json:"inventoryQtyThreshold,omitempty"`
	InventoryDollarThresh   *decimal.Decimal `db:"inventory_dollar_threshold" json:"inventoryDollarThreshold,omitempty"`
	InventoryBackupDiscount decimal.Decimal  `db:"inventory_backup_discount" json:"inventoryBackupDiscount"`

	PortableEnabled     bool            `db:"portable_enabled" json:"portableEnabled"`
	PortableDiscount    decimal.Decimal `db:"portable_discount" json:"portableDiscount"`
	PortableSKUPrefixes pq.StringArray  `db:"portable_sku_prefixes" json:"portableSkuPrefixes"`

	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ToPromo converts the persisted row into the engine's promotion shape.
func (p *Promotion) ToPromo() *promo.Promotion {
	return &promo.Promotion{
		ID:          fmt.Sprintf("%d", p.ID),
		Name:        p.Name,
		Vendor:      p.Vendor,
		Active:      p.Active,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		SKUTiers:    p.SKUTiers,
		DollarTiers: p.DollarTiers,
		Inventory: promo.InventoryIncentive{
			Enabled:               p.InventoryEnabled,
			DisplayQtyThreshold:   p.InventoryQtyThreshold,
			DollarThreshold:       p.InventoryDollarThresh,
			BackupDiscountPercent: p.InventoryBackupDiscount,
		},
		Portable: promo.PortableIncentive{
			Enabled:         p.PortableEnabled,
			DiscountPercent: p.PortableDiscount,
			SKUPrefixes:     p.PortableSKUPrefixes,
		},
	}
}

// InWindow reports whether the promotion window contains ts. Nil bounds are
// open; both bounds are inclusive.
func (p *Promotion) InWindow(ts time.Time) bool {
	if p.StartDate != nil && ts.Before(*p.StartDate) {
		return false
	}
	if p.EndDate != nil && ts.After(*p.EndDate) {
		return false
	}
	return true
}
