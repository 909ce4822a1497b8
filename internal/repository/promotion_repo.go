package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/lumengrid/lumen_api/internal/models"
)

// PromotionRepository handles data access for promotions.
type PromotionRepository struct {
	db *sqlx.DB
}

// NewPromotionRepository creates a new PromotionRepository.
func NewPromotionRepository(db *sqlx.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

// GetActiveByVendor returns the active promotion for a vendor whose date
// window (inclusive, nil bounds open) contains now. At most one promotion
// per vendor is active at a time; if several overlap, the most recently
// updated wins.
func (r *PromotionRepository) GetActiveByVendor(vendor string, now time.Time) (*models.Promotion, error) {
	const q = `
        SELECT * FROM promotions
        WHERE vendor = $1
          AND active = true
          AND (start_date IS NULL OR start_date <= $2)
          AND (end_date IS NULL OR end_date >= $2)
        ORDER BY updated_at DESC
        LIMIT 1`

	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var p models.Promotion
	if err := stmt.Get(&p, vendor, now); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &p, nil
}

// GetByID returns a single promotion by id.
func (r *PromotionRepository) GetByID(id int) (*models.Promotion, error) {
	const q = `SELECT * FROM promotions WHERE id = $1 LIMIT 1`
	stmt, err := r.db.Preparex(q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var p models.Promotion
	if err := stmt.Get(&p, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &p, nil
}

// Create creates a new promotion.
func (r *PromotionRepository) Create(p *models.Promotion) error {
	const q = `
        INSERT INTO promotions (vendor, name, active, start_date, end_date,
            sku_tiers, dollar_tiers,
            inventory_enabled, inventory_qty_threshold, inventory_dollar_threshold, inventory_backup_discount,
            portable_enabled, portable_discount, portable_sku_prefixes)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowx(q,
		p.Vendor,
		p.Name,
		p.Active,
		p.StartDate,
		p.EndDate,
		p.SKUTiers,
		p.DollarTiers,
		p.InventoryEnabled,
		p.InventoryQtyThreshold,
		p.InventoryDollarThresh,
		p.InventoryBackupDiscount,
		p.PortableEnabled,
		p.PortableDiscount,
		p.PortableSKUPrefixes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// Update updates an existing promotion.
func (r *PromotionRepository) Update(p *models.Promotion) error {
	const q = `
        UPDATE promotions
        SET vendor = $1, name = $2, active = $3, start_date = $4, end_date = $5,
            sku_tiers = $6, dollar_tiers = $7,
            inventory_enabled = $8, inventory_qty_threshold = $9,
            inventory_dollar_threshold = $10, inventory_backup_discount = $11,
            portable_enabled = $12, portable_discount = $13, portable_sku_prefixes = $14,
            updated_at = NOW()
        WHERE id = $15
        RETURNING updated_at`

	return r.db.QueryRowx(q,
		p.Vendor,
		p.Name,
		p.Active,
		p.StartDate,
		p.EndDate,
		p.SKUTiers,
		p.DollarTiers,
		p.InventoryEnabled,
		p.InventoryQtyThreshold,
		p.InventoryDollarThresh,
		p.InventoryBackupDiscount,
		p.PortableEnabled,
		p.PortableDiscount,
		p.PortableSKUPrefixes,
		p.ID,
	).Scan(&p.UpdatedAt)
}

// UpdateStatus sets the active flag of a promotion.
func (r *PromotionRepository) UpdateStatus(id int, active bool) error {
	const q = `UPDATE promotions SET active = $2, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(q, id, active)
	return err
}

// Delete deletes a promotion by ID.
func (r *PromotionRepository) Delete(id int) error {
	const q = `DELETE FROM promotions WHERE id = $1`
	_, err := r.db.Exec(q, id)
	return err
}

// DeactivateExpired flips off promotions whose end date has passed and
// returns how many rows changed. Run periodically by the window worker.
func (r *PromotionRepository) DeactivateExpired(now time.Time) (int64, error) {
	const q = `
        UPDATE promotions SET active = false, updated_at = NOW()
        WHERE active = true AND end_date IS NOT NULL AND end_date < $1`
	res, err := r.db.Exec(q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PromotionFilter holds filters for admin promotion queries.
type PromotionFilter struct {
	Vendor string
	Active *bool
	Page   int
	Limit  int
}

// GetAllPaged returns promotions for admin with filters and pagination,
// including inactive ones, plus the total count.
func (r *PromotionRepository) GetAllPaged(filter *PromotionFilter) ([]models.Promotion, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	offset := (filter.Page - 1) * filter.Limit

	baseWhere := `WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.Vendor != "" {
		baseWhere += fmt.Sprintf(" AND vendor = $%d", argIdx)
		args = append(args, filter.Vendor)
		argIdx++
	}
	if filter.Active != nil {
		baseWhere += fmt.Sprintf(" AND active = $%d", argIdx)
		args = append(args, *filter.Active)
		argIdx++
	}

	countQuery := `SELECT COUNT(1) FROM promotions ` + baseWhere
	var total int
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`SELECT * FROM promotions `+baseWhere+`
        ORDER BY vendor, updated_at DESC LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	var promotions []models.Promotion
	if err := r.db.Select(&promotions, listQuery, args...); err != nil {
		return nil, 0, err
	}
	return promotions, total, nil
}
