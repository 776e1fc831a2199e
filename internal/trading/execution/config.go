package execution

import (
	"time"

	"github.com/Alias1177/skinflip/models"
)

// Config holds the spending limits and execution policy.
type Config struct {
	PaperTrading bool   `yaml:"paper_trading"`
	Currency     string `yaml:"currency"`

	DailyLimitUSD       float64 `yaml:"daily_limit_usd"`
	MaxTradeUSD         float64 `yaml:"max_trade_usd"`
	MaxConcurrentOrders int     `yaml:"max_concurrent_orders"`
	MinProfitUSD        float64 `yaml:"min_profit_usd"`

	// With manual confirmation on, only orders priced at or below
	// AutoConfirmMaxUSD execute without an explicit ConfirmOrder.
	RequireManualConfirmation bool    `yaml:"require_manual_confirmation"`
	AutoConfirmMaxUSD         float64 `yaml:"auto_confirm_max_usd"`

	OrderTimeout      time.Duration     `yaml:"order_timeout"`
	EnabledStrategies []models.Strategy `yaml:"enabled_strategies"`
	Blacklist         []string          `yaml:"blacklist"`
	HistoryLimit      int               `yaml:"history_limit"`
}

func DefaultConfig() Config {
	return Config{
		PaperTrading:              true,
		Currency:                  "USD",
		DailyLimitUSD:             100,
		MaxTradeUSD:               50,
		MaxConcurrentOrders:       5,
		MinProfitUSD:              0.10,
		RequireManualConfirmation: true,
		AutoConfirmMaxUSD:         20,
		OrderTimeout:              30 * time.Minute,
		EnabledStrategies:         append([]models.Strategy(nil), models.AllStrategies...),
		HistoryLimit:              1000,
	}
}

func (c Config) strategyEnabled(s models.Strategy) bool {
	for _, e := range c.EnabledStrategies {
		if e == s {
			return true
		}
	}
	return false
}
