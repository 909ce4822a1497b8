package service

import (
	"database/sql"

	"github.com/lumengrid/lumen_api/internal/models"
	"github.com/lumengrid/lumen_api/internal/repository"
	"github.com/lumengrid/lumen_api/internal/utils"
)

// CustomerService manages dealer accounts.
type CustomerService struct {
	customerRepo *repository.CustomerRepository
}

func NewCustomerService(customerRepo *repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// GetByID returns a customer by id.
func (s *CustomerService) GetByID(id int) (*models.Customer, error) {
	c, err := s.customerRepo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrCustomerNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetByAccountCode returns a customer by its dealer account code.
func (s *CustomerService) GetByAccountCode(code string) (*models.Customer, error) {
	c, err := s.customerRepo.GetByAccountCode(code)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrCustomerNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create persists a new customer.
func (s *CustomerService) Create(c *models.Customer) error {
	return s.customerRepo.Create(c)
}

// List returns active customers, optionally filtered by rep, with pagination.
func (s *CustomerService) List(repID, page, limit int) ([]models.Customer, int, error) {
	return s.customerRepo.GetAllPaged(repID, page, limit)
}
