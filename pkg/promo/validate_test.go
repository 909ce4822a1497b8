package promo

import (
	"errors"
	"testing"
)

func TestValidateNil(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatal("Validate(nil) = nil, want error")
	}
}

func TestValidateWellFormed(t *testing.T) {
	qty := 3
	p := skuTierPromo(tier("t1", "5", "20"), tier("t2", "10", "30"))
	p.Inventory = InventoryIncentive{Enabled: true, DisplayQtyThreshold: &qty, BackupDiscountPercent: dec("15")}
	p.Portable = PortableIncentive{Enabled: true, DiscountPercent: dec("15"), SKUPrefixes: []string{"24"}}

	if err := Validate(p); err != nil {
		t.Fatalf("Validate = %v, want nil", err)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	p := skuTierPromo(
		tier("t1", "0", "20"),   // bad threshold
		tier("t2", "5", "120"),  // bad discount
		tier("t3", "5", "30"),   // duplicate threshold
	)
	p.Portable = PortableIncentive{Enabled: true, DiscountPercent: dec("-1"), SKUPrefixes: []string{""}}
	p.Inventory = InventoryIncentive{Enabled: true, BackupDiscountPercent: dec("101")}

	err := Validate(p)
	if err == nil {
		t.Fatal("Validate = nil, want errors")
	}
	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("error type = %T, want ValidationErrors", err)
	}
	if len(errs) != 6 {
		t.Errorf("len(errs) = %d, want 6: %v", len(errs), errs)
	}
}

func TestValidateDisabledIncentivesSkipChecks(t *testing.T) {
	p := skuTierPromo(tier("t1", "5", "20"))
	p.Portable = PortableIncentive{Enabled: false, DiscountPercent: dec("500")}
	p.Inventory = InventoryIncentive{Enabled: false, BackupDiscountPercent: dec("-20")}

	if err := Validate(p); err != nil {
		t.Fatalf("Validate = %v, want nil for disabled incentives", err)
	}
}
