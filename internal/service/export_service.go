package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lumengrid/lumen_api/internal/models"
	"github.com/lumengrid/lumen_api/internal/utils"
)

// Export is a rendered selection export ready to be served.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
	// Signature is the hex HMAC-SHA256 of Data under the client's secret,
	// empty when no secret was provided.
	Signature string
}

// ExportService renders priced selections as CSV order sheets.
type ExportService struct {
	selectionService *SelectionService
}

func NewExportService(selectionService *SelectionService) *ExportService {
	return &ExportService{selectionService: selectionService}
}

// ExportCSV prices a selection and renders it as a CSV order sheet. When
// secret is non-empty the payload is signed so the consumer can verify
// integrity.
func (s *ExportService) ExportCSV(ctx context.Context, selectionID int, secret string) (*Export, error) {
	priced, err := s.selectionService.Price(ctx, selectionID)
	if err != nil {
		return nil, err
	}

	data, err := RenderCSV(priced)
	if err != nil {
		return nil, err
	}

	exp := &Export{
		Filename:    exportFilename(priced.Selection),
		ContentType: "text/csv",
		Data:        data,
	}
	if secret != "" {
		exp.Signature = utils.GenerateSignature(data, secret)
	}

	log.Info().Int("selection_id", selectionID).Int("bytes", len(data)).
		Msg("Selection exported")
	return exp, nil
}

// RenderCSV writes a priced selection as CSV. One row per line item with the
// priced breakdown, followed by a summary block. Items carry selection
// metadata (collection, year, notes) joined back in by SKU.
func RenderCSV(priced *PricedSelection) ([]byte, error) {
	sel := priced.Selection
	calc := priced.Calculation

	meta := make(map[string]models.SelectionItem, len(sel.Items))
	for _, it := range sel.Items {
		meta[it.SKU] = it
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"sku", "name", "collection", "year", "display_qty", "backup_qty",
		"unit_list", "display_net_unit", "backup_net_unit", "extended", "savings", "portable", "notes",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	if calc != nil {
		for _, item := range calc.Items {
			m := meta[item.SKU]
			year := ""
			if m.Year > 0 {
				year = strconv.Itoa(m.Year)
			}
			row := []string{
				item.SKU,
				item.Name,
				m.Collection,
				year,
				strconv.Itoa(item.DisplayQty),
				strconv.Itoa(item.BackupQty),
				item.UnitList.StringFixed(2),
				item.DisplayNetUnit.StringFixed(2),
				item.BackupNetUnit.StringFixed(2),
				item.Extended.StringFixed(2),
				item.Savings.StringFixed(2),
				strconv.FormatBool(item.Portable),
				m.Notes,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	} else {
		// No promotion in effect: export the raw rows at list price.
		for _, it := range sel.Items {
			year := ""
			if it.Year > 0 {
				year = strconv.Itoa(it.Year)
			}
			extended := it.UnitList.Mul(decimal.NewFromInt(int64(it.DisplayQty + it.BackupQty)))
			row := []string{
				it.SKU,
				it.Name,
				it.Collection,
				year,
				strconv.Itoa(it.DisplayQty),
				strconv.Itoa(it.BackupQty),
				it.UnitList.StringFixed(2),
				it.UnitList.StringFixed(2),
				it.UnitList.StringFixed(2),
				extended.StringFixed(2),
				"0.00",
				"false",
				it.Notes,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	// Summary block, one key/value pair per row.
	if err := w.Write([]string{}); err != nil {
		return nil, err
	}
	summary := [][]string{
		{"selection_id", strconv.Itoa(sel.ID)},
		{"vendor", sel.Vendor},
		{"status", string(sel.Status)},
		{"exported_at", time.Now().UTC().Format(time.RFC3339)},
	}
	if priced.Promotion != nil {
		summary = append(summary, []string{"promotion", priced.Promotion.Name})
	}
	if calc != nil {
		summary = append(summary,
			[]string{"unique_display_skus", strconv.Itoa(calc.UniqueDisplaySKUs)},
			[]string{"display_subtotal", calc.DisplaySubtotal.StringFixed(2)},
			[]string{"display_total", calc.DisplayTotal.StringFixed(2)},
			[]string{"tier_discount_percent", calc.BestTierDiscount.StringFixed(2)},
			[]string{"backup_discount_percent", calc.BackupDiscountApplied.StringFixed(2)},
			[]string{"total_savings", calc.TotalSavings.StringFixed(2)},
		)
	}
	for _, row := range summary {
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportFilename(sel *models.Selection) string {
	return fmt.Sprintf("selection_%d_%s_%s.csv", sel.ID, sel.Vendor, time.Now().UTC().Format("20060102"))
}
