package repository

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lumengrid/lumen_api/internal/models"
)

// SelectionRepository handles data access for selections and their items.
type SelectionRepository struct {
	db *sqlx.DB
}

// NewSelectionRepository creates a new SelectionRepository.
func NewSelectionRepository(db *sqlx.DB) *SelectionRepository {
	return &SelectionRepository{db: db}
}

// GetByID returns a selection with its items loaded.
func (r *SelectionRepository) GetByID(id int) (*models.Selection, error) {
	const q = `SELECT * FROM selections WHERE id = $1 LIMIT 1`
	var s models.Selection
	if err := r.db.Get(&s, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}

	items, err := r.GetItems(id)
	if err != nil {
		return nil, err
	}
	s.Items = items
	return &s, nil
}

// GetItems returns the item rows of a selection in insertion order.
func (r *SelectionRepository) GetItems(selectionID int) ([]models.SelectionItem, error) {
	const q = `SELECT * FROM selection_items WHERE selection_id = $1 ORDER BY id ASC`
	var items []models.SelectionItem
	if err := r.db.Select(&items, q, selectionID); err != nil {
		return nil, err
	}
	return items, nil
}

// Create creates a new selection.
func (r *SelectionRepository) Create(s *models.Selection) error {
	const q = `
        INSERT INTO selections (customer_id, vendor, status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(q, s.CustomerID, s.Vendor, s.Status).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// UpdateStatus moves a selection through its lifecycle.
func (r *SelectionRepository) UpdateStatus(id int, status models.SelectionStatus) error {
	const q = `UPDATE selections SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(q, id, status)
	return err
}

// Touch bumps a selection's updated_at after item mutations.
func (r *SelectionRepository) Touch(id int) error {
	const q = `UPDATE selections SET updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(q, id)
	return err
}

// UpsertItem inserts or updates an item row keyed by (selection_id, sku).
func (r *SelectionRepository) UpsertItem(item *models.SelectionItem) error {
	const q = `
        INSERT INTO selection_items (selection_id, sku, name, collection, year, display_qty, backup_qty, unit_list, notes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (selection_id, sku) DO UPDATE SET
            name = EXCLUDED.name,
            collection = EXCLUDED.collection,
            year = EXCLUDED.year,
            display_qty = EXCLUDED.display_qty,
            backup_qty = EXCLUDED.backup_qty,
            unit_list = EXCLUDED.unit_list,
            notes = EXCLUDED.notes,
            updated_at = NOW()
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowx(q,
		item.SelectionID,
		item.SKU,
		item.Name,
		item.Collection,
		item.Year,
		item.DisplayQty,
		item.BackupQty,
		item.UnitList,
		item.Notes,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

// RemoveItem deletes one SKU row from a selection. Returns sql.ErrNoRows
// when the SKU is not present.
func (r *SelectionRepository) RemoveItem(selectionID int, sku string) error {
	const q = `DELETE FROM selection_items WHERE selection_id = $1 AND sku = $2`
	res, err := r.db.Exec(q, selectionID, sku)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SelectionFilter holds filters for admin selection queries.
type SelectionFilter struct {
	CustomerID int
	Vendor     string
	Status     string
	Page       int
	Limit      int
}

// GetAllPaged returns selections with filters and pagination plus total count.
func (r *SelectionRepository) GetAllPaged(filter *SelectionFilter) ([]models.Selection, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	offset := (filter.Page - 1) * filter.Limit

	baseWhere := `WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.CustomerID > 0 {
		baseWhere += fmt.Sprintf(" AND customer_id = $%d", argIdx)
		args = append(args, filter.CustomerID)
		argIdx++
	}
	if filter.Vendor != "" {
		baseWhere += fmt.Sprintf(" AND vendor = $%d", argIdx)
		args = append(args, filter.Vendor)
		argIdx++
	}
	if filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}

	countQuery := `SELECT COUNT(1) FROM selections ` + baseWhere
	var total int
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`SELECT * FROM selections `+baseWhere+`
        ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	var selections []models.Selection
	if err := r.db.Select(&selections, listQuery, args...); err != nil {
		return nil, 0, err
	}
	return selections, total, nil
}
