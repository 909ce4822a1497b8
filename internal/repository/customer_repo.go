package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/lumengrid/lumen_api/internal/models"
)

// CustomerRepository handles data access for customers.
type CustomerRepository struct {
	db *sqlx.DB
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetByID returns a single customer by id.
func (r *CustomerRepository) GetByID(id int) (*models.Customer, error) {
	const q = `SELECT * FROM customers WHERE id = $1 LIMIT 1`
	var c models.Customer
	if err := r.db.Get(&c, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &c, nil
}

// GetByAccountCode returns a customer by its dealer account code.
func (r *CustomerRepository) GetByAccountCode(code string) (*models.Customer, error) {
	const q = `SELECT * FROM customers WHERE account_code = $1 LIMIT 1`
	var c models.Customer
	if err := r.db.Get(&c, q, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &c, nil
}

// Create creates a new customer.
func (r *CustomerRepository) Create(c *models.Customer) error {
	const q = `
        INSERT INTO customers (name, account_code, email, rep_id, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRowx(q, c.Name, c.AccountCode, c.Email, c.RepID, c.IsActive).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// GetAllPaged returns active customers with optional rep filter and pagination.
func (r *CustomerRepository) GetAllPaged(repID, page, limit int) ([]models.Customer, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	offset := (page - 1) * limit

	const baseWhere = `WHERE ($1 = 0 OR rep_id = $1) AND is_active = true`

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(1) FROM customers `+baseWhere, repID); err != nil {
		return nil, 0, err
	}

	var customers []models.Customer
	const listQuery = `SELECT * FROM customers ` + baseWhere + `
        ORDER BY name LIMIT $2 OFFSET $3`
	if err := r.db.Select(&customers, listQuery, repID, limit, offset); err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}
