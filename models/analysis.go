package models

// AttributeEvaluation is the intrinsic rarity assessment of one item.
type AttributeEvaluation struct {
	FloatValue        *float64 `json:"float_value,omitempty"`
	Wear              WearTier `json:"wear"`
	PaintSeed         *int     `json:"paint_seed,omitempty"`
	PatternName       string   `json:"pattern_name,omitempty"`
	PatternRarity     Rarity   `json:"pattern_rarity"`
	StickerValueUSD   float64  `json:"sticker_value_usd"`
	StickerRarity     Rarity   `json:"sticker_rarity"`
	StatTrak          bool     `json:"stattrak"`
	Souvenir          bool     `json:"souvenir"`
	RarityScore       float64  `json:"rarity_score"`
	PremiumMultiplier float64  `json:"premium_multiplier"`
}

// TechnicalIndicators summarises a price series.
type TechnicalIndicators struct {
	RSI             float64 `json:"rsi"`
	BBUpper         float64 `json:"bb_upper"`
	BBMiddle        float64 `json:"bb_middle"`
	BBLower         float64 `json:"bb_lower"`
	BBWidthPct      float64 `json:"bb_width_pct"`
	SMAShort        float64 `json:"sma_short"`
	SMALong         float64 `json:"sma_long"`
	Change24hPct    float64 `json:"change_24h_pct"`
	Change7dPct     float64 `json:"change_7d_pct"`
	VolatilityScore float64 `json:"volatility_score"`
	LastPrice       float64 `json:"last_price"`
	Points          int     `json:"points"`
}

// SignalKind names the generator that produced a signal.
type SignalKind int

const (
	SignalRSIOversold SignalKind = iota + 1
	SignalRSIOverbought
	SignalBollingerBounce
	SignalBollingerRejection
	SignalBollingerSqueeze
	SignalGoldenCross
	SignalDeathCross
	SignalVolatilityBreakout
)

func (k SignalKind) String() string {
	switch k {
	case SignalRSIOversold:
		return "rsi_oversold"
	case SignalRSIOverbought:
		return "rsi_overbought"
	case SignalBollingerBounce:
		return "bollinger_bounce"
	case SignalBollingerRejection:
		return "bollinger_rejection"
	case SignalBollingerSqueeze:
		return "bollinger_squeeze"
	case SignalGoldenCross:
		return "golden_cross"
	case SignalDeathCross:
		return "death_cross"
	case SignalVolatilityBreakout:
		return "volatility_breakout"
	}
	return "unknown"
}

func (k SignalKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// SignalDirection is the side a signal recommends.
type SignalDirection int

const (
	DirectionBuy SignalDirection = iota + 1
	DirectionSell
	// DirectionBreakout means a large move is expected but its side is unknown.
	DirectionBreakout
)

func (d SignalDirection) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	case DirectionBreakout:
		return "breakout"
	}
	return "unknown"
}

func (d SignalDirection) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// SignalStrength grades how far a signal is past its threshold.
type SignalStrength int

const (
	StrengthWeak SignalStrength = iota + 1
	StrengthModerate
	StrengthStrong
)

func (s SignalStrength) String() string {
	switch s {
	case StrengthWeak:
		return "WEAK"
	case StrengthModerate:
		return "MODERATE"
	case StrengthStrong:
		return "STRONG"
	}
	return "UNKNOWN"
}

func (s SignalStrength) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// VolatilitySignal is a directional trading signal with its price levels.
type VolatilitySignal struct {
	Title          string          `json:"title"`
	Kind           SignalKind      `json:"kind"`
	Direction      SignalDirection `json:"direction"`
	Strength       SignalStrength  `json:"strength"`
	Confidence     float64         `json:"confidence"`
	EntryPriceUSD  float64         `json:"entry_price_usd"`
	TargetPriceUSD float64         `json:"target_price_usd"`
	StopPriceUSD   float64         `json:"stop_price_usd"`
	RiskReward     float64         `json:"risk_reward"`
	Reason         string          `json:"reason"`
}
