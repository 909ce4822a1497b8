package service

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lumengrid/lumen_api/internal/models"
	"github.com/lumengrid/lumen_api/internal/repository"
	"github.com/lumengrid/lumen_api/internal/utils"
	"github.com/lumengrid/lumen_api/pkg/promo"
)

// PromotionService manages vendor promotion programs.
type PromotionService struct {
	promoRepo *repository.PromotionRepository
}

func NewPromotionService(promoRepo *repository.PromotionRepository) *PromotionService {
	return &PromotionService{promoRepo: promoRepo}
}

// ActiveForVendor returns the promotion currently in effect for a vendor.
func (s *PromotionService) ActiveForVendor(vendor string) (*models.Promotion, error) {
	p, err := s.promoRepo.GetActiveByVendor(vendor, time.Now())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrNoActivePromotion
		}
		return nil, err
	}
	return p, nil
}

// GetByID returns a promotion by id.
func (s *PromotionService) GetByID(id int) (*models.Promotion, error) {
	p, err := s.promoRepo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrPromotionNotFound
		}
		return nil, err
	}
	return p, nil
}

// Create validates and persists a new promotion.
func (s *PromotionService) Create(p *models.Promotion) error {
	if err := promo.Validate(p.ToPromo()); err != nil {
		return err
	}
	if err := s.promoRepo.Create(p); err != nil {
		return err
	}
	log.Info().Int("promotion_id", p.ID).Str("vendor", p.Vendor).Msg("Promotion created")
	return nil
}

// Update validates and persists changes to an existing promotion.
func (s *PromotionService) Update(p *models.Promotion) error {
	if _, err := s.GetByID(p.ID); err != nil {
		return err
	}
	if err := promo.Validate(p.ToPromo()); err != nil {
		return err
	}
	if err := s.promoRepo.Update(p); err != nil {
		return err
	}
	log.Info().Int("promotion_id", p.ID).Str("vendor", p.Vendor).Msg("Promotion updated")
	return nil
}

// SetActive toggles a promotion's active flag.
func (s *PromotionService) SetActive(id int, active bool) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.promoRepo.UpdateStatus(id, active)
}

// Delete removes a promotion.
func (s *PromotionService) Delete(id int) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	return s.promoRepo.Delete(id)
}

// List returns promotions matching the filter plus the total count.
func (s *PromotionService) List(filter *repository.PromotionFilter) ([]models.Promotion, int, error) {
	return s.promoRepo.GetAllPaged(filter)
}

// CheckConfig runs validation without persisting. A nil return means the
// configuration is calculation-ready.
func (s *PromotionService) CheckConfig(p *models.Promotion) error {
	return promo.Validate(p.ToPromo())
}
