package service

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lumengrid/lumen_api/internal/models"
	"github.com/lumengrid/lumen_api/internal/utils"
	"github.com/lumengrid/lumen_api/pkg/promo"
)

func testPricedSelection() *PricedSelection {
	sel := &models.Selection{
		ID:     42,
		Vendor: "lumengrid",
		Status: models.SelectionStatusDraft,
		Items: []models.SelectionItem{
			{SKU: "LG-1001", Name: "Arc Pendant", Collection: "Arc", Year: 2026,
				DisplayQty: 1, BackupQty: 2, UnitList: decimal.NewFromInt(100), Notes: "front wall"},
		},
	}
	calc := &promo.Calculation{
		UniqueDisplaySKUs: 1,
		DisplaySubtotal:   decimal.NewFromInt(100),
		DisplayTotal:      decimal.NewFromInt(80),
		BestTierDiscount:  decimal.NewFromInt(20),
		Items: []promo.ItemPricing{
			{SKU: "LG-1001", Name: "Arc Pendant", DisplayQty: 1, BackupQty: 2,
				UnitList:       decimal.NewFromInt(100),
				NetUnit:        decimal.NewFromInt(80),
				DisplayNetUnit: decimal.NewFromInt(80),
				BackupNetUnit:  decimal.NewFromInt(85),
				Extended:       decimal.NewFromInt(250),
				Savings:        decimal.NewFromInt(50)},
		},
		TotalSavings: decimal.NewFromInt(50),
	}
	return &PricedSelection{
		Selection:   sel,
		Promotion:   &models.Promotion{ID: 7, Name: "Spring Display Program", Vendor: "lumengrid"},
		Calculation: calc,
	}
}

func TestRenderCSVItemRows(t *testing.T) {
	data, err := RenderCSV(testPricedSelection())
	if err != nil {
		t.Fatalf("RenderCSV returned error: %v", err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("exported CSV does not parse: %v", err)
	}

	if got := rows[0][0]; got != "sku" {
		t.Errorf("header first column = %q, want sku", got)
	}

	item := rows[1]
	if item[0] != "LG-1001" {
		t.Errorf("item sku = %q", item[0])
	}
	if item[2] != "Arc" || item[3] != "2026" {
		t.Errorf("selection metadata not joined in: collection=%q year=%q", item[2], item[3])
	}
	if item[7] != "80.00" || item[8] != "85.00" {
		t.Errorf("net units = %q / %q, want 80.00 / 85.00", item[7], item[8])
	}
	if item[12] != "front wall" {
		t.Errorf("notes = %q", item[12])
	}
}

func TestRenderCSVSummaryBlock(t *testing.T) {
	data, err := RenderCSV(testPricedSelection())
	if err != nil {
		t.Fatalf("RenderCSV returned error: %v", err)
	}

	out := string(data)
	for _, want := range []string{
		"selection_id,42",
		"vendor,lumengrid",
		"promotion,Spring Display Program",
		"tier_discount_percent,20.00",
		"total_savings,50.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestRenderCSVNoPromotion(t *testing.T) {
	priced := testPricedSelection()
	priced.Promotion = nil
	priced.Calculation = nil

	data, err := RenderCSV(priced)
	if err != nil {
		t.Fatalf("RenderCSV returned error: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, "LG-1001") {
		t.Error("raw item row missing")
	}
	if !strings.Contains(out, "300.00") {
		t.Error("list-price extended (3 x 100.00) missing")
	}
	if strings.Contains(out, "promotion,") {
		t.Error("summary should not mention a promotion")
	}
}

func TestExportSignatureVerifies(t *testing.T) {
	data, err := RenderCSV(testPricedSelection())
	if err != nil {
		t.Fatalf("RenderCSV returned error: %v", err)
	}

	sig := utils.GenerateSignature(data, "secret-key")
	if !utils.VerifySignature(data, sig, "secret-key") {
		t.Error("signature does not verify with correct secret")
	}
	if utils.VerifySignature(data, sig, "other-key") {
		t.Error("signature verifies with wrong secret")
	}
}
