package promo

import (
	"fmt"
	"strings"
)

// ValidationError describes a single invalid promotion field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates every problem found in a promotion so
// authoring UIs can surface them all at once.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return "invalid promotion: " + strings.Join(msgs, "; ")
}

// Validate checks a promotion configuration at authoring time. It returns a
// ValidationErrors value (as error) listing every violation, or nil when
// the promotion is well formed.
//
// The calculator itself does not require validation to have passed: it
// degrades gracefully on malformed tiers. Validate exists so bad
// configurations are rejected before they are persisted.
func Validate(p *Promotion) error {
	if p == nil {
		return ValidationErrors{{Field: "promotion", Message: "must not be nil"}}
	}

	var errs ValidationErrors
	errs = append(errs, validateTiers("skuTiers", p.SKUTiers)...)
	errs = append(errs, validateTiers("dollarTiers", p.DollarTiers)...)

	if p.Inventory.Enabled {
		if p.Inventory.BackupDiscountPercent.IsNegative() || p.Inventory.BackupDiscountPercent.GreaterThan(hundred) {
			errs = append(errs, ValidationError{
				Field:   "inventoryIncentive.backupDiscountPercent",
				Message: "must be between 0 and 100",
			})
		}
		if p.Inventory.DisplayQtyThreshold != nil && *p.Inventory.DisplayQtyThreshold <= 0 {
			errs = append(errs, ValidationError{
				Field:   "inventoryIncentive.displayQtyThreshold",
				Message: "must be positive when set",
			})
		}
		if p.Inventory.DollarThreshold != nil && !p.Inventory.DollarThreshold.IsPositive() {
			errs = append(errs, ValidationError{
				Field:   "inventoryIncentive.dollarThreshold",
				Message: "must be positive when set",
			})
		}
	}

	if p.Portable.Enabled {
		if len(nonEmptyPrefixes(p.Portable.SKUPrefixes)) == 0 {
			errs = append(errs, ValidationError{
				Field:   "portableIncentive.skuPrefixes",
				Message: "at least one non-empty prefix is required when enabled",
			})
		}
		if p.Portable.DiscountPercent.IsNegative() || p.Portable.DiscountPercent.GreaterThan(hundred) {
			errs = append(errs, ValidationError{
				Field:   "portableIncentive.discountPercent",
				Message: "must be between 0 and 100",
			})
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateTiers(field string, tiers []Tier) ValidationErrors {
	var errs ValidationErrors
	seen := make(map[string]bool, len(tiers))
	for i, t := range tiers {
		prefix := fmt.Sprintf("%s[%d]", field, i)
		if !t.Threshold.IsPositive() {
			errs = append(errs, ValidationError{
				Field:   prefix + ".threshold",
				Message: "must be greater than zero",
			})
		}
		if t.DiscountPercent.IsNegative() || t.DiscountPercent.GreaterThan(hundred) {
			errs = append(errs, ValidationError{
				Field:   prefix + ".discountPercent",
				Message: "must be between 0 and 100",
			})
		}
		key := t.Threshold.String()
		if seen[key] {
			errs = append(errs, ValidationError{
				Field:   prefix + ".threshold",
				Message: "duplicate threshold within tier family",
			})
		}
		seen[key] = true
	}
	return errs
}

func nonEmptyPrefixes(prefixes []string) []string {
	out := prefixes[:0:0]
	for _, p := range prefixes {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
