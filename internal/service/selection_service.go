package service

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lumengrid/lumen_api/internal/cache"
	"github.com/lumengrid/lumen_api/internal/models"
	"github.com/lumengrid/lumen_api/internal/repository"
	"github.com/lumengrid/lumen_api/internal/sse"
	"github.com/lumengrid/lumen_api/internal/utils"
	"github.com/lumengrid/lumen_api/pkg/promo"
)

// ItemInput carries one SKU row from the API. Quantity may arrive either as
// a single raw count (split into display/backup server-side) or as explicit
// display and backup quantities.
type ItemInput struct {
	SKU        string          `json:"sku" binding:"required"`
	Name       string          `json:"name"`
	Collection string          `json:"collection"`
	Year       int             `json:"year"`
	Qty        *int            `json:"qty"`
	DisplayQty *int            `json:"displayQty"`
	BackupQty  *int            `json:"backupQty"`
	UnitList   decimal.Decimal `json:"unitList"`
	Notes      string          `json:"notes"`
}

// PricedSelection bundles a selection with the promotion and calculation
// applied to it. Promotion and Calculation are nil when no promotion is in
// effect for the selection's vendor.
type PricedSelection struct {
	Selection   *models.Selection  `json:"selection"`
	Promotion   *models.Promotion  `json:"promotion,omitempty"`
	Calculation *promo.Calculation `json:"calculation,omitempty"`
	FromCache   bool               `json:"-"`
}

// SelectionService manages customer selections and their pricing.
type SelectionService struct {
	selectionRepo *repository.SelectionRepository
	customerRepo  *repository.CustomerRepository
	promoService  *PromotionService
	calcCache     *cache.CalculationCache
	notifier      sse.SelectionNotifier
}

func NewSelectionService(
	selectionRepo *repository.SelectionRepository,
	customerRepo *repository.CustomerRepository,
	promoService *PromotionService,
	calcCache *cache.CalculationCache,
	notifier sse.SelectionNotifier,
) *SelectionService {
	return &SelectionService{
		selectionRepo: selectionRepo,
		customerRepo:  customerRepo,
		promoService:  promoService,
		calcCache:     calcCache,
		notifier:      notifier,
	}
}

// Create opens a new draft selection for a customer and vendor.
func (s *SelectionService) Create(customerID int, vendor string) (*models.Selection, error) {
	if _, err := s.customerRepo.GetByID(customerID); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrCustomerNotFound
		}
		return nil, err
	}

	sel := &models.Selection{
		CustomerID: customerID,
		Vendor:     vendor,
		Status:     models.SelectionStatusDraft,
	}
	if err := s.selectionRepo.Create(sel); err != nil {
		return nil, err
	}
	log.Info().Int("selection_id", sel.ID).Int("customer_id", customerID).Str("vendor", vendor).
		Msg("Selection created")
	return sel, nil
}

// Get returns a selection with its items.
func (s *SelectionService) Get(id int) (*models.Selection, error) {
	sel, err := s.selectionRepo.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrSelectionNotFound
		}
		return nil, err
	}
	return sel, nil
}

// List returns selections matching the filter plus the total count.
func (s *SelectionService) List(filter *repository.SelectionFilter) ([]models.Selection, int, error) {
	return s.selectionRepo.GetAllPaged(filter)
}

// UpsertItem adds or replaces one SKU row on a draft selection, then
// reprices and notifies listeners. When the input carries a raw qty, the
// first unit goes to display and the remainder to backup.
func (s *SelectionService) UpsertItem(ctx context.Context, selectionID int, input *ItemInput) (*PricedSelection, error) {
	sel, err := s.Get(selectionID)
	if err != nil {
		return nil, err
	}
	if sel.Status != models.SelectionStatusDraft {
		return nil, utils.ErrSelectionLocked
	}

	displayQty, backupQty := 0, 0
	switch {
	case input.Qty != nil:
		displayQty, backupQty = promo.SplitQuantity(*input.Qty)
	default:
		if input.DisplayQty != nil {
			displayQty = *input.DisplayQty
		}
		if input.BackupQty != nil {
			backupQty = *input.BackupQty
		}
	}

	item := &models.SelectionItem{
		SelectionID: selectionID,
		SKU:         input.SKU,
		Name:        input.Name,
		Collection:  input.Collection,
		Year:        input.Year,
		DisplayQty:  displayQty,
		BackupQty:   backupQty,
		UnitList:    input.UnitList,
		Notes:       input.Notes,
	}
	if err := s.selectionRepo.UpsertItem(item); err != nil {
		return nil, err
	}
	if err := s.selectionRepo.Touch(selectionID); err != nil {
		return nil, err
	}

	return s.reprice(ctx, selectionID)
}

// RemoveItem deletes one SKU row from a draft selection, then reprices and
// notifies listeners.
func (s *SelectionService) RemoveItem(ctx context.Context, selectionID int, sku string) (*PricedSelection, error) {
	sel, err := s.Get(selectionID)
	if err != nil {
		return nil, err
	}
	if sel.Status != models.SelectionStatusDraft {
		return nil, utils.ErrSelectionLocked
	}

	if err := s.selectionRepo.RemoveItem(selectionID, sku); err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrItemNotFound
		}
		return nil, err
	}
	if err := s.selectionRepo.Touch(selectionID); err != nil {
		return nil, err
	}

	return s.reprice(ctx, selectionID)
}

// Submit moves a draft selection to submitted. The selection is priced one
// final time so the caller gets the locked-in numbers.
func (s *SelectionService) Submit(ctx context.Context, id int) (*PricedSelection, error) {
	sel, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if sel.Status != models.SelectionStatusDraft {
		return nil, utils.ErrSelectionLocked
	}

	if err := s.selectionRepo.UpdateStatus(id, models.SelectionStatusSubmitted); err != nil {
		return nil, err
	}
	log.Info().Int("selection_id", id).Msg("Selection submitted")
	return s.Price(ctx, id)
}

// Archive moves a selection to archived and drops its cached pricing.
func (s *SelectionService) Archive(ctx context.Context, id int) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := s.selectionRepo.UpdateStatus(id, models.SelectionStatusArchived); err != nil {
		return err
	}
	return s.calcCache.Invalidate(ctx, id)
}

// Price returns the selection together with the active promotion and the
// calculation. Cached results are served when the cached promotion is still
// the one in effect.
func (s *SelectionService) Price(ctx context.Context, selectionID int) (*PricedSelection, error) {
	sel, err := s.Get(selectionID)
	if err != nil {
		return nil, err
	}

	p, err := s.promoService.ActiveForVendor(sel.Vendor)
	if err != nil && err != utils.ErrNoActivePromotion {
		return nil, err
	}

	if p != nil {
		if cached, cerr := s.calcCache.Get(ctx, selectionID); cerr == nil && cached != nil && cached.PromotionID == p.ID {
			return &PricedSelection{
				Selection:   sel,
				Promotion:   p,
				Calculation: cached.Calculation,
				FromCache:   true,
			}, nil
		}
	}

	priced := s.compute(sel, p)
	if p != nil && priced.Calculation != nil {
		if cerr := s.calcCache.Set(ctx, selectionID, p.ID, priced.Calculation); cerr != nil {
			log.Warn().Err(cerr).Int("selection_id", selectionID).Msg("Failed to cache calculation")
		}
	}
	return priced, nil
}

// Quote prices an ad-hoc set of items against a vendor's active promotion
// without persisting anything. Raw quantities are split the same way item
// upserts split them.
func (s *SelectionService) Quote(vendor string, inputs []ItemInput) (*models.Promotion, *promo.Calculation, error) {
	p, err := s.promoService.ActiveForVendor(vendor)
	if err != nil {
		if err == utils.ErrNoActivePromotion {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	items := make([]promo.LineItem, 0, len(inputs))
	for _, in := range inputs {
		displayQty, backupQty := 0, 0
		if in.Qty != nil {
			displayQty, backupQty = promo.SplitQuantity(*in.Qty)
		} else {
			if in.DisplayQty != nil {
				displayQty = *in.DisplayQty
			}
			if in.BackupQty != nil {
				backupQty = *in.BackupQty
			}
		}
		items = append(items, promo.LineItem{
			SKU:        in.SKU,
			Name:       in.Name,
			Collection: in.Collection,
			Year:       in.Year,
			DisplayQty: displayQty,
			BackupQty:  backupQty,
			UnitList:   in.UnitList,
			Notes:      in.Notes,
		})
	}

	return p, promo.Calculate(p.ToPromo(), items), nil
}

// reprice recomputes pricing after a mutation, refreshes the cache, and
// emits a tier-changed event when the best tier discount moved, otherwise a
// plain update event.
func (s *SelectionService) reprice(ctx context.Context, selectionID int) (*PricedSelection, error) {
	prev, err := s.calcCache.Get(ctx, selectionID)
	if err != nil {
		log.Warn().Err(err).Int("selection_id", selectionID).Msg("Failed to read cached calculation")
		prev = nil
	}
	if err := s.calcCache.Invalidate(ctx, selectionID); err != nil {
		log.Warn().Err(err).Int("selection_id", selectionID).Msg("Failed to invalidate calculation cache")
	}

	priced, err := s.Price(ctx, selectionID)
	if err != nil {
		return nil, err
	}

	if tierMoved(prev, priced.Calculation) {
		s.notifier.NotifyTierChanged(priced.Selection, priced.Calculation)
	} else {
		s.notifier.NotifySelectionUpdated(priced.Selection, priced.Calculation)
	}
	return priced, nil
}

func (s *SelectionService) compute(sel *models.Selection, p *models.Promotion) *PricedSelection {
	priced := &PricedSelection{Selection: sel, Promotion: p}
	if p == nil {
		return priced
	}

	calc := promo.Calculate(p.ToPromo(), sel.LineItems())
	if calc != nil && len(calc.Flags) > 0 {
		log.Warn().Int("selection_id", sel.ID).Strs("flags", calc.Flags).
			Msg("Calculation raised input flags")
	}
	priced.Calculation = calc
	return priced
}

func tierMoved(prev *cache.CachedCalculation, curr *promo.Calculation) bool {
	if prev == nil || prev.Calculation == nil || curr == nil {
		return false
	}
	return !prev.Calculation.BestTierDiscount.Equal(curr.BestTierDiscount)
}
