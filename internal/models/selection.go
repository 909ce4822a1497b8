package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumengrid/lumen_api/pkg/promo"
)

// SelectionStatus enumerates the lifecycle states of a working selection.
type SelectionStatus string

const (
	SelectionStatusDraft     SelectionStatus = "draft"
	SelectionStatusSubmitted SelectionStatus = "submitted"
	SelectionStatusArchived  SelectionStatus = "archived"
)

// Selection is a customer's working selection of SKUs for one vendor.
type Selection struct {
	ID         int             `db:"id" json:"id"`
	CustomerID int             `db:"customer_id" json:"customerId"`
	Vendor     string          `db:"vendor" json:"vendor"`
	Status     SelectionStatus `db:"status" json:"status"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updatedAt"`

	// Items is populated by the repository on detail reads.
	Items []SelectionItem `db:"-" json:"items,omitempty"`
}

// SelectionItem is one SKU row inside a selection. UnitList is the
// undiscounted per-unit dealer cost at the time the item was added.
type SelectionItem struct {
	ID          int             `db:"id" json:"id"`
	SelectionID int             `db:"selection_id" json:"selectionId"`
	SKU         string          `db:"sku" json:"sku"`
	Name        string          `db:"name" json:"name"`
	Collection  string          `db:"collection" json:"collection,omitempty"`
	Year        int             `db:"year" json:"year,omitempty"`
	DisplayQty  int             `db:"display_qty" json:"displayQty"`
	BackupQty   int             `db:"backup_qty" json:"backupQty"`
	UnitList    decimal.Decimal `db:"unit_list" json:"unitList"`
	Notes       string          `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"-"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

// LineItems converts the selection's rows into calculator inputs.
func (s *Selection) LineItems() []promo.LineItem {
	items := make([]promo.LineItem, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, promo.LineItem{
			SKU:        it.SKU,
			Name:       it.Name,
			Collection: it.Collection,
			Year:       it.Year,
			DisplayQty: it.DisplayQty,
			BackupQty:  it.BackupQty,
			UnitList:   it.UnitList,
			Notes:      it.Notes,
		})
	}
	return items
}
