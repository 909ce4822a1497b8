package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lumengrid/lumen_api/internal/repository"
)

// PromotionWindowWorker periodically deactivates promotions whose date
// window has closed, so the active lookup never serves an expired program.
type PromotionWindowWorker struct {
	promoRepo *repository.PromotionRepository
	interval  time.Duration
}

// NewPromotionWindowWorker constructs a PromotionWindowWorker.
func NewPromotionWindowWorker(promoRepo *repository.PromotionRepository, interval time.Duration) *PromotionWindowWorker {
	return &PromotionWindowWorker{
		promoRepo: promoRepo,
		interval:  interval,
	}
}

// Start begins the periodic sweep loop and listens for context cancellation.
func (w *PromotionWindowWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting promotion window worker")

	// Run immediately on start
	w.run()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run()
		case <-ctx.Done():
			log.Info().Msg("Promotion window worker stopped")
			return
		}
	}
}

func (w *PromotionWindowWorker) run() {
	start := time.Now()
	n, err := w.promoRepo.DeactivateExpired(time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to deactivate expired promotions")
		return
	}
	if n > 0 {
		log.Info().Int64("deactivated", n).Dur("duration", time.Since(start)).
			Msg("Expired promotions deactivated")
	}
}
