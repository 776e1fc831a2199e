package strategy

import (
	"fmt"
	"strings"
	"time"

	"github.com/Alias1177/skinflip/models"
)

// FeeFallback decides what a scan does when no fee schedule can be fetched.
type FeeFallback int

const (
	// FeeFallbackDefault continues with Config.DefaultFees.
	FeeFallbackDefault FeeFallback = iota
	// FeeFallbackAbstain skips the item.
	FeeFallbackAbstain
)

func (f FeeFallback) String() string {
	if f == FeeFallbackAbstain {
		return "abstain"
	}
	return "default"
}

func (f FeeFallback) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *FeeFallback) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "default", "":
		*f = FeeFallbackDefault
	case "abstain":
		*f = FeeFallbackAbstain
	default:
		return fmt.Errorf("unknown fee fallback %q", string(text))
	}
	return nil
}

// Config holds marketplace query parameters and detector thresholds.
type Config struct {
	GameID         string        `yaml:"game_id"`
	Currency       string        `yaml:"currency"`
	OffersLimit    int           `yaml:"offers_limit"`
	BuyOrdersLimit int           `yaml:"buy_orders_limit"`
	HistoryLimit   int           `yaml:"history_limit"`
	ItemDelay      time.Duration `yaml:"item_delay"`
	RecordHistory  bool          `yaml:"record_history"`

	MinProfitUSD float64 `yaml:"min_profit_usd"`
	MinProfitPct float64 `yaml:"min_profit_pct"`

	SnipeMinPriceUSD float64 `yaml:"snipe_min_price_usd"`
	SnipeMinDiscount float64 `yaml:"snipe_min_discount"`

	AttributeMaxPriceUSD    float64 `yaml:"attribute_max_price_usd"`
	AttributeMinRarityScore float64 `yaml:"attribute_min_rarity_score"`
	AttributeMinPremium     float64 `yaml:"attribute_min_premium"`

	TradeLockMaxDays     int     `yaml:"trade_lock_max_days"`
	TradeLockMinDiscount float64 `yaml:"trade_lock_min_discount"`

	VolatilityMinConfidence float64 `yaml:"volatility_min_confidence"`

	FeeTTL      time.Duration      `yaml:"fee_ttl"`
	FeeFallback FeeFallback        `yaml:"fee_fallback"`
	DefaultFees models.FeeSchedule `yaml:"default_fees"`
}

// DefaultConfig returns the standard thresholds. The fallback fee is
// deliberately higher than the usual marketplace rate so that profits are
// understated rather than overstated.
func DefaultConfig() Config {
	return Config{
		GameID:         "a8db",
		Currency:       "USD",
		OffersLimit:    100,
		BuyOrdersLimit: 100,
		HistoryLimit:   200,
		ItemDelay:      time.Second,
		RecordHistory:  true,

		MinProfitUSD: 0.01,
		MinProfitPct: 0.01,

		SnipeMinPriceUSD: 0.50,
		SnipeMinDiscount: 0.10,

		AttributeMaxPriceUSD:    500,
		AttributeMinRarityScore: 30,
		AttributeMinPremium:     1.2,

		TradeLockMaxDays:     14,
		TradeLockMinDiscount: 0.15,

		VolatilityMinConfidence: 0.6,

		FeeTTL:      time.Hour,
		FeeFallback: FeeFallbackDefault,
		DefaultFees: models.FeeSchedule{Rate: 0.10, MinCommissionUSD: 0.01},
	}
}
