package risk

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/skinflip/internal/attributes"
	"github.com/Alias1177/skinflip/models"
)

// heldStatuses are the ledger states that still count as exposure.
var heldStatuses = []models.InventoryStatus{
	models.InventoryPurchased,
	models.InventoryHolding,
	models.InventoryListed,
}

// Manager computes portfolio risk, gates trades and tracks stop-loss orders.
type Manager struct {
	cfg    Config
	ledger models.InventoryLedger
	sink   models.AlertSink
	logger zerolog.Logger
	now    func() time.Time

	mu         sync.Mutex
	positions  []models.Position
	stopLosses []*models.StopLossOrder
	alerts     []models.Alert
}

// NewManager creates a manager. ledger and sink may be nil.
func NewManager(cfg Config, ledger models.InventoryLedger, sink models.AlertSink) *Manager {
	if cfg.AlertHistoryLimit <= 0 {
		cfg.AlertHistoryLimit = 1000
	}
	return &Manager{
		cfg:    cfg,
		ledger: ledger,
		sink:   sink,
		logger: log.With().Str("component", "risk_manager").Logger(),
		now:    time.Now,
	}
}

// WithClock replaces the time source.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// SetPositions replaces the portfolio snapshot.
func (m *Manager) SetPositions(positions []models.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions = append([]models.Position(nil), positions...)
}

// AddPosition registers a freshly bought item.
func (m *Manager) AddPosition(p models.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions = append(m.positions, p)
}

// RemovePosition drops the position holding assetID, e.g. after it was sold.
func (m *Manager) RemovePosition(assetID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.positions {
		if p.AssetID == assetID {
			m.positions = append(m.positions[:i], m.positions[i+1:]...)
			return true
		}
	}
	return false
}

// Positions returns a copy of the portfolio snapshot.
func (m *Manager) Positions() []models.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Position(nil), m.positions...)
}

// UpdatePrices marks positions to market using the latest observed prices.
func (m *Manager) UpdatePrices(prices map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.positions {
		if p, ok := prices[m.positions[i].Title]; ok && models.IsFinitePositive(p) {
			m.positions[i].CurrentPriceUSD = p
		}
	}
}

// Refresh reloads the portfolio from the inventory ledger.
func (m *Manager) Refresh(ctx context.Context) error {
	if m.ledger == nil {
		return nil
	}

	current := make(map[int64]float64)
	m.mu.Lock()
	for _, p := range m.positions {
		if p.LedgerRecordID != 0 && p.CurrentPriceUSD > 0 {
			current[p.LedgerRecordID] = p.CurrentPriceUSD
		}
	}
	m.mu.Unlock()

	var positions []models.Position
	for _, status := range heldStatuses {
		items, err := m.ledger.ItemsByStatus(ctx, status)
		if err != nil {
			return fmt.Errorf("loading %s inventory: %w", status, err)
		}
		for _, it := range items {
			positions = append(positions, models.Position{
				Title:            it.Title,
				AssetID:          it.AssetID,
				Strategy:         it.Strategy,
				PurchasePriceUSD: it.PurchasePriceUSD,
				CurrentPriceUSD:  current[it.ID],
				LedgerRecordID:   it.ID,
				AcquiredAt:       it.PurchasedAt,
			})
		}
	}

	m.SetPositions(positions)
	m.logger.Debug().Int("positions", len(positions)).Msg("Portfolio refreshed")
	return nil
}

// ComputeMetrics builds a fresh risk snapshot of the current portfolio.
func (m *Manager) ComputeMetrics() models.RiskMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics := m.computeMetrics(m.positions)
	metrics.ComputedAt = m.now()
	return metrics
}

func (m *Manager) computeMetrics(positions []models.Position) models.RiskMetrics {
	if len(positions) == 0 {
		return models.RiskMetrics{
			DiversificationRate: 1.0,
			LiquidityScore:      1.0,
			RiskLevel:           LevelFor(0),
		}
	}

	values := make([]float64, len(positions))
	var total, cost, largest float64
	catValue := make(map[models.ItemCategory]float64)
	var liquidity, volatility, beta float64

	for i, p := range positions {
		v := p.Value()
		values[i] = v
		total += v
		cost += p.PurchasePriceUSD
		if v > largest {
			largest = v
		}
		cat := attributes.Categorize(p.Title)
		g := groupOf(cat)
		catValue[cat] += v
		liquidity += v * itemLiquidity(v, g)
		volatility += v * itemVolatility(v, g)
		beta += v * groupBeta[g]
	}

	metrics := models.RiskMetrics{
		TotalExposureUSD:   total,
		LargestPositionUSD: largest,
		PositionCount:      len(positions),
	}
	if total <= 0 {
		metrics.DiversificationRate = 1.0
		metrics.LiquidityScore = 1.0
		metrics.RiskLevel = LevelFor(0)
		return metrics
	}

	weights := make(map[models.ItemCategory]float64, len(catValue))
	maxWeight := 0.0
	for cat, v := range catValue {
		w := v / total
		weights[cat] = w
		if w > maxWeight {
			maxWeight = w
		}
	}

	metrics.LargestPositionPct = largest / total
	metrics.ConcentrationIndex = herfindahl(values, total)
	metrics.DiversificationRate = diversificationScore(len(weights), maxWeight)
	metrics.CorrelationRisk = correlationRisk(weights)
	metrics.LiquidityScore = liquidity / total
	metrics.VolatilityScore = volatility / total
	metrics.Beta = beta / total
	metrics.VaR95USD = math.Min(total*metrics.VolatilityScore*m.cfg.VaRZScore*m.cfg.VaRScale, total*m.cfg.VaRCapPct)
	metrics.ExpectedShortfall = metrics.VaR95USD * m.cfg.ESMultiplier

	if cost > 0 && total < cost {
		metrics.Drawdown = (cost - total) / cost
	}
	normDrawdown := 0.0
	if m.cfg.MaxDrawdownPct > 0 {
		normDrawdown = math.Min(1, metrics.Drawdown/m.cfg.MaxDrawdownPct)
	}

	metrics.RiskScore = clamp(
		metrics.ConcentrationIndex*0.25+
			metrics.CorrelationRisk*0.20+
			metrics.VolatilityScore*0.25+
			metrics.LargestPositionPct*0.15+
			normDrawdown*0.15, 0, 1)
	metrics.RiskLevel = LevelFor(metrics.RiskScore)
	return metrics
}

// EvaluateTrade decides whether buying title at priceUSD is acceptable. It
// depends only on the current portfolio snapshot and never mutates it.
func (m *Manager) EvaluateTrade(title string, priceUSD float64, strategy models.Strategy) models.TradeDecision {
	m.mu.Lock()
	defer m.mu.Unlock()

	decision := m.evaluate(title, priceUSD, strategy)
	m.logger.Debug().
		Str("title", title).
		Float64("price", priceUSD).
		Str("strategy", strategy.String()).
		Bool("approved", decision.Approved).
		Float64("score", decision.RiskScore).
		Str("reason", decision.Reason).
		Msg("Trade evaluated")
	return decision
}

func (m *Manager) evaluate(title string, priceUSD float64, strategy models.Strategy) models.TradeDecision {
	if !models.IsFinitePositive(priceUSD) {
		return reject(1.0, fmt.Sprintf("invalid trade price %v", priceUSD))
	}

	current := m.computeMetrics(m.positions)
	exposure := current.TotalExposureUSD + priceUSD

	// Hard limits
	if exposure > m.cfg.MaxTotalExposureUSD {
		return reject(1.0, fmt.Sprintf("total exposure %.2f would exceed limit %.2f", exposure, m.cfg.MaxTotalExposureUSD))
	}
	if priceUSD > m.cfg.MaxSinglePositionUSD {
		return reject(0.9, fmt.Sprintf("position %.2f exceeds single position cap %.2f", priceUSD, m.cfg.MaxSinglePositionUSD))
	}
	if exposure >= m.cfg.ConcentrationMinExposureUSD {
		sameTitle := priceUSD
		for _, p := range m.positions {
			if p.Title == title {
				sameTitle += p.Value()
			}
		}
		if pct := sameTitle / exposure; pct > m.cfg.MaxSinglePositionPct {
			return reject(0.9, fmt.Sprintf("position would be %.1f%% of exposure, limit %.1f%%", pct*100, m.cfg.MaxSinglePositionPct*100))
		}
	}

	g := groupOfTitle(title)
	item := itemRisk(priceUSD, g, strategy)

	after := append(append([]models.Position(nil), m.positions...), models.Position{
		Title:            title,
		Strategy:         strategy,
		PurchasePriceUSD: priceUSD,
	})
	impact := 1 - m.computeMetrics(after).DiversificationRate

	return decide(clamp(item*0.4+current.RiskScore*0.3+impact*0.3, 0, 1))
}

// decide maps a composite trade score to a decision.
func decide(composite float64) models.TradeDecision {
	decision := models.TradeDecision{RiskScore: composite, RiskLevel: LevelFor(composite)}
	switch {
	case composite <= 0.3:
		decision.Approved = true
		decision.Reason = "approved: low risk"
	case composite <= 0.6:
		decision.Approved = true
		decision.Reason = "approved with monitoring: moderate risk"
	case composite <= 0.8:
		decision.Reason = "rejected: high risk, manual review required"
	default:
		decision.Reason = "rejected: risk too high"
	}
	return decision
}

func reject(score float64, reason string) models.TradeDecision {
	return models.TradeDecision{Approved: false, RiskScore: score, Reason: reason, RiskLevel: LevelFor(score)}
}

// CheckPortfolio computes metrics and raises an alert when the overall
// risk score reaches Config.AlertRiskScore.
func (m *Manager) CheckPortfolio() models.RiskMetrics {
	metrics := m.ComputeMetrics()
	if m.cfg.AlertRiskScore > 0 && metrics.RiskScore >= m.cfg.AlertRiskScore {
		m.RecordAlert(models.Alert{
			Level:   models.AlertHigh,
			Type:    models.AlertTypeHighRisk,
			Message: fmt.Sprintf("portfolio risk %s (score %.2f)", metrics.RiskLevel, metrics.RiskScore),
			Data: map[string]any{
				"risk_score":     metrics.RiskScore,
				"exposure_usd":   metrics.TotalExposureUSD,
				"concentration":  metrics.ConcentrationIndex,
				"position_count": metrics.PositionCount,
			},
		})
	}
	return metrics
}

// RecordAlert stores an alert, evicting the oldest beyond the history
// limit, and forwards it to the sink.
func (m *Manager) RecordAlert(alert models.Alert) {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = m.now()
	}
	m.mu.Lock()
	m.alerts = append(m.alerts, alert)
	if over := len(m.alerts) - m.cfg.AlertHistoryLimit; over > 0 {
		m.alerts = append([]models.Alert(nil), m.alerts[over:]...)
	}
	m.mu.Unlock()

	if m.sink != nil {
		m.sink.Notify(alert)
	}
}

// Alerts returns a copy of the alert history, oldest first.
func (m *Manager) Alerts() []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Alert(nil), m.alerts...)
}
