package models

import "time"

// Customer is a dealer account a sales rep curates selections for.
type Customer struct {
	ID          int       `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	AccountCode string    `db:"account_code" json:"accountCode"`
	Email       string    `db:"email" json:"email,omitempty"`
	RepID       *int      `db:"rep_id" json:"repId,omitempty"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}
