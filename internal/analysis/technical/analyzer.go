package technical

import (
	"fmt"
	"math"
	"time"

	"github.com/Alias1177/skinflip/models"
)

// Config holds the analyzer thresholds.
type Config struct {
	MinDataPoints          int     `yaml:"min_data_points"`
	RSIPeriod              int     `yaml:"rsi_period"`
	BBPeriod               int     `yaml:"bb_period"`
	BBStdDev               float64 `yaml:"bb_std_dev"`
	ShortMAPeriod          int     `yaml:"short_ma_period"`
	LongMAPeriod           int     `yaml:"long_ma_period"`
	RSIOversold            float64 `yaml:"rsi_oversold"`
	RSIOverbought          float64 `yaml:"rsi_overbought"`
	MinConfidence          float64 `yaml:"min_confidence"`
	LowVolatilityBandWidth float64 `yaml:"low_volatility_band_width"` // percent of the middle band
	HighVolatilityScore    float64 `yaml:"high_volatility_score"`
	StopLossPct            float64 `yaml:"stop_loss_pct"`
	RewardMultiplier       float64 `yaml:"reward_multiplier"`
}

// DefaultConfig returns the standard analyzer thresholds.
func DefaultConfig() Config {
	return Config{
		MinDataPoints:          10,
		RSIPeriod:              14,
		BBPeriod:               20,
		BBStdDev:               2.0,
		ShortMAPeriod:          7,
		LongMAPeriod:           21,
		RSIOversold:            30,
		RSIOverbought:          70,
		MinConfidence:          0.6,
		LowVolatilityBandWidth: 5,
		HighVolatilityScore:    15,
		StopLossPct:            0.05,
		RewardMultiplier:       2.0,
	}
}

const (
	strongOversold   = 20
	strongOverbought = 80

	bandProximity = 0.02

	bounceConfidence    = 0.8
	rejectionConfidence = 0.7
	squeezeConfidence   = 0.7
	crossConfidence     = 0.65
	maxConfidence       = 0.95

	breakoutLevelWidening = 1.5
)

// Analyzer computes indicators and signals from a price series. It is pure
// apart from reading the clock for the 24h and 7d deltas.
type Analyzer struct {
	cfg Config
	now func() time.Time
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg, now: time.Now}
}

// WithClock replaces the time source used for the price deltas.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// Config returns the analyzer thresholds.
func (a *Analyzer) Config() Config { return a.cfg }

// Analyze computes indicators. Ticks may come in any order; ok is false when
// fewer than MinDataPoints usable ticks are present.
func (a *Analyzer) Analyze(series []models.PriceTick) (models.TechnicalIndicators, bool) {
	ticks := sortedValid(series)
	if len(ticks) == 0 || len(ticks) < a.cfg.MinDataPoints {
		return models.TechnicalIndicators{}, false
	}

	prices := make([]float64, len(ticks))
	for i, t := range ticks {
		prices[i] = t.Price
	}

	upper, middle, lower := CalculateBollingerBands(prices, a.cfg.BBPeriod, a.cfg.BBStdDev)
	width := 0.0
	if middle > 0 {
		width = (upper - lower) / middle * 100
	}

	now := a.now()
	return models.TechnicalIndicators{
		RSI:             CalculateRSI(prices, a.cfg.RSIPeriod),
		BBUpper:         upper,
		BBMiddle:        middle,
		BBLower:         lower,
		BBWidthPct:      width,
		SMAShort:        CalculateSMA(prices, a.cfg.ShortMAPeriod),
		SMALong:         CalculateSMA(prices, a.cfg.LongMAPeriod),
		Change24hPct:    PriceChangeSince(ticks, now.Add(-24*time.Hour)),
		Change7dPct:     PriceChangeSince(ticks, now.Add(-7*24*time.Hour)),
		VolatilityScore: CalculateVolatilityScore(prices),
		LastPrice:       prices[len(prices)-1],
		Points:          len(prices),
	}, true
}

// FindSignals runs the four signal generators. Each contributes at most one
// signal, and only signals at or above MinConfidence are returned.
func (a *Analyzer) FindSignals(title string, series []models.PriceTick, currentPrice float64) []models.VolatilitySignal {
	if !models.IsFinitePositive(currentPrice) {
		return nil
	}
	ind, ok := a.Analyze(series)
	if !ok {
		return nil
	}

	var signals []models.VolatilitySignal
	for _, gen := range []func(models.TechnicalIndicators, float64) (models.VolatilitySignal, bool){
		a.rsiSignal,
		a.bollingerSignal,
		a.crossSignal,
		a.breakoutSignal,
	} {
		sig, found := gen(ind, currentPrice)
		if !found || sig.Confidence < a.cfg.MinConfidence {
			continue
		}
		sig.Title = title
		a.applyLevels(&sig, currentPrice)
		signals = append(signals, sig)
	}
	return signals
}

func (a *Analyzer) rsiSignal(ind models.TechnicalIndicators, _ float64) (models.VolatilitySignal, bool) {
	switch {
	case ind.RSI <= a.cfg.RSIOversold:
		strength := models.StrengthModerate
		if ind.RSI <= strongOversold {
			strength = models.StrengthStrong
		}
		return models.VolatilitySignal{
			Kind:       models.SignalRSIOversold,
			Direction:  models.DirectionBuy,
			Strength:   strength,
			Confidence: math.Min(maxConfidence, 0.5+(a.cfg.RSIOversold-ind.RSI)/30),
			Reason:     fmt.Sprintf("RSI %.1f at or below %.0f", ind.RSI, a.cfg.RSIOversold),
		}, true
	case ind.RSI >= a.cfg.RSIOverbought:
		strength := models.StrengthModerate
		if ind.RSI >= strongOverbought {
			strength = models.StrengthStrong
		}
		return models.VolatilitySignal{
			Kind:       models.SignalRSIOverbought,
			Direction:  models.DirectionSell,
			Strength:   strength,
			Confidence: math.Min(maxConfidence, 0.5+(ind.RSI-a.cfg.RSIOverbought)/30),
			Reason:     fmt.Sprintf("RSI %.1f at or above %.0f", ind.RSI, a.cfg.RSIOverbought),
		}, true
	}
	return models.VolatilitySignal{}, false
}

func (a *Analyzer) bollingerSignal(ind models.TechnicalIndicators, price float64) (models.VolatilitySignal, bool) {
	switch {
	case ind.BBLower > 0 && price <= ind.BBLower*(1+bandProximity):
		return models.VolatilitySignal{
			Kind:       models.SignalBollingerBounce,
			Direction:  models.DirectionBuy,
			Strength:   models.StrengthModerate,
			Confidence: bounceConfidence,
			Reason:     fmt.Sprintf("price %.2f near lower band %.2f", price, ind.BBLower),
		}, true
	case ind.BBUpper > 0 && price >= ind.BBUpper*(1-bandProximity):
		return models.VolatilitySignal{
			Kind:       models.SignalBollingerRejection,
			Direction:  models.DirectionSell,
			Strength:   models.StrengthModerate,
			Confidence: rejectionConfidence,
			Reason:     fmt.Sprintf("price %.2f near upper band %.2f", price, ind.BBUpper),
		}, true
	case ind.BBWidthPct < a.cfg.LowVolatilityBandWidth:
		return models.VolatilitySignal{
			Kind:       models.SignalBollingerSqueeze,
			Direction:  models.DirectionBreakout,
			Strength:   models.StrengthModerate,
			Confidence: squeezeConfidence,
			Reason:     fmt.Sprintf("band width %.2f%% below %.2f%%", ind.BBWidthPct, a.cfg.LowVolatilityBandWidth),
		}, true
	}
	return models.VolatilitySignal{}, false
}

func (a *Analyzer) crossSignal(ind models.TechnicalIndicators, price float64) (models.VolatilitySignal, bool) {
	switch {
	case ind.SMAShort > ind.SMALong && price > ind.SMAShort:
		return models.VolatilitySignal{
			Kind:       models.SignalGoldenCross,
			Direction:  models.DirectionBuy,
			Strength:   models.StrengthModerate,
			Confidence: crossConfidence,
			Reason:     fmt.Sprintf("short MA %.2f above long MA %.2f", ind.SMAShort, ind.SMALong),
		}, true
	case ind.SMAShort < ind.SMALong && price < ind.SMAShort:
		return models.VolatilitySignal{
			Kind:       models.SignalDeathCross,
			Direction:  models.DirectionSell,
			Strength:   models.StrengthModerate,
			Confidence: crossConfidence,
			Reason:     fmt.Sprintf("short MA %.2f below long MA %.2f", ind.SMAShort, ind.SMALong),
		}, true
	}
	return models.VolatilitySignal{}, false
}

func (a *Analyzer) breakoutSignal(ind models.TechnicalIndicators, _ float64) (models.VolatilitySignal, bool) {
	thr := a.cfg.HighVolatilityScore
	if thr <= 0 || ind.VolatilityScore <= thr {
		return models.VolatilitySignal{}, false
	}
	strength := models.StrengthModerate
	if ind.VolatilityScore >= thr*1.5 {
		strength = models.StrengthStrong
	}
	return models.VolatilitySignal{
		Kind:       models.SignalVolatilityBreakout,
		Direction:  models.DirectionBreakout,
		Strength:   strength,
		Confidence: math.Min(maxConfidence, 0.6+0.4*(ind.VolatilityScore/thr-1)),
		Reason:     fmt.Sprintf("volatility %.2f above %.2f", ind.VolatilityScore, thr),
	}, true
}

// applyLevels sets entry, target, stop and risk/reward on a signal.
func (a *Analyzer) applyLevels(sig *models.VolatilitySignal, price float64) {
	stopPct := a.cfg.StopLossPct
	if sig.Direction == models.DirectionBreakout {
		stopPct *= breakoutLevelWidening
	}
	rewardPct := stopPct * a.cfg.RewardMultiplier

	sig.EntryPriceUSD = price
	if sig.Direction == models.DirectionSell {
		sig.StopPriceUSD = price * (1 + stopPct)
		sig.TargetPriceUSD = price * (1 - rewardPct)
	} else {
		sig.StopPriceUSD = price * (1 - stopPct)
		sig.TargetPriceUSD = price * (1 + rewardPct)
	}
	sig.RiskReward = RiskReward(sig.EntryPriceUSD, sig.TargetPriceUSD, sig.StopPriceUSD)
}

// RiskReward is |target-entry| / |entry-stop|, +Inf when stop equals entry.
func RiskReward(entry, target, stop float64) float64 {
	risk := math.Abs(entry - stop)
	if risk == 0 {
		return math.Inf(1)
	}
	return math.Abs(target-entry) / risk
}
