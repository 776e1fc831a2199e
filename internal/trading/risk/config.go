package risk

// Config holds portfolio limits and the stop-loss policy.
type Config struct {
	MaxTotalExposureUSD  float64 `yaml:"max_total_exposure_usd"`
	MaxSinglePositionUSD float64 `yaml:"max_single_position_usd"`
	MaxSinglePositionPct float64 `yaml:"max_single_position_pct"`
	// ConcentrationMinExposureUSD is the post-trade exposure below which the
	// percentage-of-exposure limit is not applied.
	ConcentrationMinExposureUSD float64 `yaml:"concentration_min_exposure_usd"`
	MaxDrawdownPct              float64 `yaml:"max_drawdown_pct"`

	BaseStopLossPct float64 `yaml:"base_stop_loss_pct"`
	MinStopLossPct  float64 `yaml:"min_stop_loss_pct"`
	MaxStopLossPct  float64 `yaml:"max_stop_loss_pct"`

	VaRZScore      float64 `yaml:"var_z_score"`
	VaRScale       float64 `yaml:"var_scale"`
	VaRCapPct      float64 `yaml:"var_cap_pct"`
	ESMultiplier   float64 `yaml:"es_multiplier"`
	AlertRiskScore float64 `yaml:"alert_risk_score"`

	AlertHistoryLimit int `yaml:"alert_history_limit"`
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		MaxTotalExposureUSD:         1000,
		MaxSinglePositionUSD:        200,
		MaxSinglePositionPct:        0.25,
		ConcentrationMinExposureUSD: 100,
		MaxDrawdownPct:              0.25,

		BaseStopLossPct: 0.15,
		MinStopLossPct:  0.05,
		MaxStopLossPct:  0.30,

		VaRZScore:      1.645,
		VaRScale:       0.1,
		VaRCapPct:      0.5,
		ESMultiplier:   1.25,
		AlertRiskScore: 0.8,

		AlertHistoryLimit: 1000,
	}
}
