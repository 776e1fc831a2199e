package control

import (
	"github.com/Alias1177/skinflip/internal/scheduler"
	"github.com/Alias1177/skinflip/internal/trading/execution"
	"github.com/Alias1177/skinflip/models"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type StatusResponse struct {
	Execution execution.Stats        `json:"execution"`
	LastCycle *scheduler.CycleReport `json:"last_cycle,omitempty"`
}

type OrdersResponse struct {
	Orders []models.ExecutionOrder `json:"orders"`
}

type RiskResponse struct {
	Metrics    models.RiskMetrics     `json:"metrics"`
	Positions  []models.Position      `json:"positions"`
	StopLosses []models.StopLossOrder `json:"stop_losses"`
}

// InventoryResponse is the ledger summary with status names as keys.
type InventoryResponse struct {
	TotalItems        int            `json:"total_items"`
	ByStatus          map[string]int `json:"by_status"`
	InvestedUSD       float64        `json:"invested_usd"`
	HoldingValueUSD   float64        `json:"holding_value_usd"`
	RealizedUSD       float64        `json:"realized_usd"`
	RealizedProfitUSD float64        `json:"realized_profit_usd"`
}
