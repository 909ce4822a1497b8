package sse

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lumengrid/lumen_api/internal/models"
	"github.com/lumengrid/lumen_api/pkg/promo"
)

// SelectionNotifier is the interface services use to emit selection events.
type SelectionNotifier interface {
	NotifySelectionUpdated(sel *models.Selection, calc *promo.Calculation)
	NotifyTierChanged(sel *models.Selection, calc *promo.Calculation)
}

// HubNotifier implements SelectionNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifySelectionUpdated(sel *models.Selection, calc *promo.Calculation) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(selectionToEvent(EventSelectionUpdated, sel, calc))
}

func (n *HubNotifier) NotifyTierChanged(sel *models.Selection, calc *promo.Calculation) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(selectionToEvent(EventTierChanged, sel, calc))
}

func selectionToEvent(eventType EventType, sel *models.Selection, calc *promo.Calculation) *SelectionEvent {
	ev := &SelectionEvent{
		Event:            eventType,
		SelectionID:      sel.ID,
		CustomerID:       sel.CustomerID,
		Vendor:           sel.Vendor,
		BestTierDiscount: decimal.Zero,
		TotalSavings:     decimal.Zero,
		AmountNeeded:     decimal.Zero,
		AtMaxTier:        true,
		Timestamp:        time.Now(),
	}
	if calc == nil {
		return ev
	}
	ev.UniqueDisplaySKUs = calc.UniqueDisplaySKUs
	ev.BestTierDiscount = calc.BestTierDiscount
	ev.TotalSavings = calc.TotalSavings
	ev.AtMaxTier = calc.AtMaxTier()
	if calc.NextSKUTier != nil {
		ev.SKUsNeeded = calc.NextSKUTier.SKUsNeeded
	}
	if calc.NextDollarTier != nil {
		ev.AmountNeeded = calc.NextDollarTier.AmountNeeded
	}
	return ev
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (n *NopNotifier) NotifySelectionUpdated(sel *models.Selection, calc *promo.Calculation) {}
func (n *NopNotifier) NotifyTierChanged(sel *models.Selection, calc *promo.Calculation)     {}
