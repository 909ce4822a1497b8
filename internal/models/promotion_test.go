package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumengrid/lumen_api/pkg/promo"
)

func TestTierListScanValue(t *testing.T) {
	tiers := TierList{
		{ID: "t1", Threshold: decimal.NewFromInt(5), DiscountPercent: decimal.NewFromInt(20)},
		{ID: "t2", Threshold: decimal.NewFromInt(10), DiscountPercent: decimal.NewFromInt(30)},
	}

	raw, err := tiers.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}

	var got TierList
	if err := got.Scan(raw); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d tiers, want 2", len(got))
	}
	if got[0].ID != "t1" || !got[0].Threshold.Equal(decimal.NewFromInt(5)) {
		t.Errorf("first tier mangled: %+v", got[0])
	}

	var nilList TierList
	raw, err = nilList.Value()
	if err != nil {
		t.Fatalf("Value on nil returned error: %v", err)
	}
	if string(raw.([]byte)) != "[]" {
		t.Errorf("nil list stored as %q, want []", raw)
	}
}

func TestInWindow(t *testing.T) {
	day := func(d int) *time.Time {
		ts := time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
		return &ts
	}
	at := func(d int) time.Time {
		return time.Date(2026, 3, d, 12, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		ts    time.Time
		want  bool
	}{
		{"open both sides", nil, nil, at(15), true},
		{"inside window", day(1), day(31), at(15), true},
		{"before start", day(10), nil, at(5), false},
		{"after end", nil, day(10), at(15), false},
		{"on start boundary", day(15), nil, *day(15), true},
		{"on end boundary", nil, day(15), *day(15), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Promotion{StartDate: tt.start, EndDate: tt.end}
			if got := p.InWindow(tt.ts); got != tt.want {
				t.Errorf("InWindow = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToPromoCarriesIncentives(t *testing.T) {
	qty := 3
	dollar := decimal.NewFromInt(5000)
	p := &Promotion{
		ID:     7,
		Vendor: "lumengrid",
		Name:   "Spring Display Program",
		Active: true,
		SKUTiers: TierList{
			{ID: "t1", Threshold: decimal.NewFromInt(5), DiscountPercent: decimal.NewFromInt(20)},
		},
		InventoryEnabled:        true,
		InventoryQtyThreshold:   &qty,
		InventoryDollarThresh:   &dollar,
		InventoryBackupDiscount: decimal.NewFromInt(25),
		PortableEnabled:         true,
		PortableDiscount:        decimal.NewFromInt(15),
		PortableSKUPrefixes:     []string{"24-"},
	}

	out := p.ToPromo()
	if out.ID != "7" || out.Vendor != "lumengrid" {
		t.Errorf("identity not carried: %+v", out)
	}
	if len(out.SKUTiers) != 1 {
		t.Fatalf("got %d sku tiers, want 1", len(out.SKUTiers))
	}
	if !out.Inventory.Enabled || *out.Inventory.DisplayQtyThreshold != 3 {
		t.Errorf("inventory incentive not carried: %+v", out.Inventory)
	}
	if !out.Inventory.BackupDiscountPercent.Equal(decimal.NewFromInt(25)) {
		t.Errorf("backup discount = %s, want 25", out.Inventory.BackupDiscountPercent)
	}
	if !promo.IsPortableSKU("24-1001", out.Portable) {
		t.Error("portable prefixes not carried through")
	}
}
