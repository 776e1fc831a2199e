package models

import "time"

// Position is one held item as seen by the risk manager.
type Position struct {
	Title            string    `json:"title"`
	AssetID          string    `json:"asset_id"`
	Strategy         Strategy  `json:"strategy"`
	PurchasePriceUSD float64   `json:"purchase_price_usd"`
	CurrentPriceUSD  float64   `json:"current_price_usd,omitempty"`
	LedgerRecordID   int64     `json:"ledger_record_id,omitempty"`
	AcquiredAt       time.Time `json:"acquired_at"`
}

// Value is the mark-to-market value, falling back to cost when no current price is known.
func (p Position) Value() float64 {
	if p.CurrentPriceUSD > 0 {
		return p.CurrentPriceUSD
	}
	return p.PurchasePriceUSD
}

// RiskMetrics is a portfolio risk snapshot. A fresh value is built per computation.
type RiskMetrics struct {
	TotalExposureUSD    float64   `json:"total_exposure_usd"`
	LargestPositionUSD  float64   `json:"largest_position_usd"`
	LargestPositionPct  float64   `json:"largest_position_pct"`
	ConcentrationIndex  float64   `json:"concentration_index"`
	DiversificationRate float64   `json:"diversification_score"`
	CorrelationRisk     float64   `json:"correlation_risk"`
	LiquidityScore      float64   `json:"liquidity_score"`
	VolatilityScore     float64   `json:"volatility_score"`
	VaR95USD            float64   `json:"var_95_usd"`
	ExpectedShortfall   float64   `json:"expected_shortfall_usd"`
	Beta                float64   `json:"beta"`
	Drawdown            float64   `json:"drawdown"`
	RiskScore           float64   `json:"risk_score"`
	RiskLevel           RiskLevel `json:"risk_level"`
	PositionCount       int       `json:"position_count"`
	ComputedAt          time.Time `json:"computed_at"`
}

// TradeDecision is the outcome of evaluating one candidate trade.
type TradeDecision struct {
	Approved  bool      `json:"approved"`
	RiskScore float64   `json:"risk_score"`
	Reason    string    `json:"reason"`
	RiskLevel RiskLevel `json:"risk_level"`
}

// StopLossOrder protects one holding. Once triggered it stays triggered.
type StopLossOrder struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	AssetID          string    `json:"asset_id"`
	PurchasePriceUSD float64   `json:"purchase_price_usd"`
	StopPriceUSD     float64   `json:"stop_price_usd"`
	StopPct          float64   `json:"stop_pct"`
	Strategy         Strategy  `json:"strategy"`
	CreatedAt        time.Time `json:"created_at"`
	Triggered        bool      `json:"triggered"`
	TriggeredAt      time.Time `json:"triggered_at,omitempty"`
	TriggerPriceUSD  float64   `json:"trigger_price_usd,omitempty"`
	Executed         bool      `json:"executed"`
	ExecutedAt       time.Time `json:"executed_at,omitempty"`
}

// Alert is a notification emitted by the engines.
type Alert struct {
	Level     AlertLevel     `json:"level"`
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alert types.
const (
	AlertTypeOrderRejected  = "order_rejected"
	AlertTypeOrderCompleted = "order_completed"
	AlertTypeOrderFailed    = "order_failed"
	AlertTypeOrderError     = "order_error"
	AlertTypeOrderTimeout   = "order_timeout"
	AlertTypeLedgerError    = "ledger_error"
	AlertTypeStopLoss       = "stop_loss_triggered"
	AlertTypeTradeRejected  = "trade_rejected"
	AlertTypeHighRisk       = "high_portfolio_risk"
)
