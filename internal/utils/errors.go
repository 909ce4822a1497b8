package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidClient      = errors.New("INVALID_CLIENT")
	ErrInvalidIP          = errors.New("INVALID_IP")
	ErrPromotionNotFound  = errors.New("PROMOTION_NOT_FOUND")
	ErrNoActivePromotion  = errors.New("NO_ACTIVE_PROMOTION")
	ErrInvalidPromotion   = errors.New("INVALID_PROMOTION")
	ErrSelectionNotFound  = errors.New("SELECTION_NOT_FOUND")
	ErrSelectionLocked    = errors.New("SELECTION_LOCKED")
	ErrCustomerNotFound   = errors.New("CUSTOMER_NOT_FOUND")
	ErrDuplicateSKU       = errors.New("DUPLICATE_SKU")
	ErrItemNotFound       = errors.New("ITEM_NOT_FOUND")
	ErrVendorMismatch     = errors.New("VENDOR_MISMATCH")
)
