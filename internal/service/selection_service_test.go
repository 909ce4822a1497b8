package service

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/lumengrid/lumen_api/internal/cache"
	"github.com/lumengrid/lumen_api/pkg/promo"
)

func calcWithDiscount(pct int64) *promo.Calculation {
	return &promo.Calculation{BestTierDiscount: decimal.NewFromInt(pct)}
}

func TestTierMoved(t *testing.T) {
	tests := []struct {
		name string
		prev *cache.CachedCalculation
		curr *promo.Calculation
		want bool
	}{
		{"no previous pricing", nil, calcWithDiscount(20), false},
		{"previous entry empty", &cache.CachedCalculation{}, calcWithDiscount(20), false},
		{"no current pricing", &cache.CachedCalculation{Calculation: calcWithDiscount(20)}, nil, false},
		{"same discount", &cache.CachedCalculation{Calculation: calcWithDiscount(20)}, calcWithDiscount(20), false},
		{"tier unlocked", &cache.CachedCalculation{Calculation: calcWithDiscount(20)}, calcWithDiscount(30), true},
		{"tier lost", &cache.CachedCalculation{Calculation: calcWithDiscount(30)}, calcWithDiscount(20), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tierMoved(tt.prev, tt.curr); got != tt.want {
				t.Errorf("tierMoved = %v, want %v", got, tt.want)
			}
		})
	}
}
