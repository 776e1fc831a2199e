package risk

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/Alias1177/skinflip/models"
)

// StopLossPct is the adaptive stop distance for a holding: the base
// percentage adjusted by price tier, category and strategy, clamped to
// [MinStopLossPct, MaxStopLossPct].
func (m *Manager) StopLossPct(title string, purchasePriceUSD float64, strategy models.Strategy) float64 {
	pct := m.cfg.BaseStopLossPct +
		tierStopAdjust[priceTier(purchasePriceUSD)] +
		groupStopAdjust[groupOfTitle(title)] +
		strategyStopAdjust[strategy]
	return clamp(pct, m.cfg.MinStopLossPct, m.cfg.MaxStopLossPct)
}

// CreateStopLoss registers a stop-loss order for a purchased item.
func (m *Manager) CreateStopLoss(title, assetID string, purchasePriceUSD float64, strategy models.Strategy) models.StopLossOrder {
	pct := m.StopLossPct(title, purchasePriceUSD, strategy)
	order := &models.StopLossOrder{
		ID:               uuid.NewString(),
		Title:            title,
		AssetID:          assetID,
		PurchasePriceUSD: purchasePriceUSD,
		StopPriceUSD:     purchasePriceUSD * (1 - pct),
		StopPct:          pct,
		Strategy:         strategy,
		CreatedAt:        m.now(),
	}

	m.mu.Lock()
	m.stopLosses = append(m.stopLosses, order)
	m.mu.Unlock()

	m.logger.Info().
		Str("title", title).
		Str("asset_id", assetID).
		Float64("purchase", purchasePriceUSD).
		Float64("stop", order.StopPriceUSD).
		Float64("stop_pct", pct).
		Msg("Stop-loss created")
	return *order
}

// CheckStopLossTriggers compares current prices (by title) against every
// untriggered stop. A stop triggers once, the first time the price is at or
// below it; each newly triggered order is returned and alerted exactly once.
func (m *Manager) CheckStopLossTriggers(prices map[string]float64) []models.StopLossOrder {
	now := m.now()
	var triggered []models.StopLossOrder

	m.mu.Lock()
	for _, sl := range m.stopLosses {
		if sl.Triggered {
			continue
		}
		price, ok := prices[sl.Title]
		if !ok || !models.IsFinitePositive(price) || price > sl.StopPriceUSD {
			continue
		}
		sl.Triggered = true
		sl.TriggeredAt = now
		sl.TriggerPriceUSD = price
		triggered = append(triggered, *sl)
	}
	m.mu.Unlock()

	for _, sl := range triggered {
		m.logger.Warn().
			Str("title", sl.Title).
			Str("asset_id", sl.AssetID).
			Float64("price", sl.TriggerPriceUSD).
			Float64("stop", sl.StopPriceUSD).
			Msg("Stop-loss triggered")
		m.RecordAlert(models.Alert{
			Level:   models.AlertHigh,
			Type:    models.AlertTypeStopLoss,
			Message: fmt.Sprintf("stop-loss triggered for %s at %.2f (stop %.2f)", sl.Title, sl.TriggerPriceUSD, sl.StopPriceUSD),
			Data: map[string]any{
				"stop_loss_id":   sl.ID,
				"asset_id":       sl.AssetID,
				"purchase_price": sl.PurchasePriceUSD,
				"stop_price":     sl.StopPriceUSD,
				"current_price":  sl.TriggerPriceUSD,
			},
			Timestamp: now,
		})
	}
	return triggered
}

// MarkStopLossExecuted flags a triggered stop as acted upon.
func (m *Manager) MarkStopLossExecuted(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sl := range m.stopLosses {
		if sl.ID == id && sl.Triggered && !sl.Executed {
			sl.Executed = true
			sl.ExecutedAt = m.now()
			return true
		}
	}
	return false
}

// PendingStopLosses returns triggered stops whose sale has not gone through.
// They stay pending until MarkStopLossExecuted.
func (m *Manager) PendingStopLosses() []models.StopLossOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StopLossOrder
	for _, sl := range m.stopLosses {
		if sl.Triggered && !sl.Executed {
			out = append(out, *sl)
		}
	}
	return out
}

// StopLossOrders returns copies of all stop-loss orders.
func (m *Manager) StopLossOrders() []models.StopLossOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.StopLossOrder, len(m.stopLosses))
	for i, sl := range m.stopLosses {
		out[i] = *sl
	}
	return out
}
