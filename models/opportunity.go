package models

import (
	"math"
	"time"
)

// OpportunityDetail is the strategy-specific part of an Opportunity.
// The set of implementations is closed: one per Strategy.
type OpportunityDetail interface {
	Strategy() Strategy
	// AssetRef is the asset that has to be bought to act on the opportunity.
	AssetRef() string
	sealed()
}

// Opportunity is one detected trade candidate. Treat it as immutable.
type Opportunity struct {
	Strategy      Strategy          `json:"strategy"`
	Title         string            `json:"title"`
	BuyPriceUSD   float64           `json:"buy_price_usd"`
	SellPriceUSD  float64           `json:"sell_price_usd"`
	CommissionUSD float64           `json:"commission_usd"`
	ProfitUSD     float64           `json:"profit_usd"`
	ProfitPct     float64           `json:"profit_pct"` // fraction of BuyPriceUSD
	Confidence    Confidence        `json:"confidence"`
	DiscoveredAt  time.Time         `json:"discovered_at"`
	Detail        OpportunityDetail `json:"detail"`
}

// NewOpportunity builds the envelope around a detail, deriving the profit
// figures from the buy price, the expected sell price and the commission
// charged on that sale.
func NewOpportunity(title string, buyUSD, sellUSD, commissionUSD float64, conf Confidence, at time.Time, detail OpportunityDetail) Opportunity {
	profit := sellUSD - buyUSD - commissionUSD
	pct := 0.0
	if buyUSD > 0 {
		pct = profit / buyUSD
	}
	return Opportunity{
		Strategy:      detail.Strategy(),
		Title:         title,
		BuyPriceUSD:   buyUSD,
		SellPriceUSD:  sellUSD,
		CommissionUSD: commissionUSD,
		ProfitUSD:     profit,
		ProfitPct:     pct,
		Confidence:    conf,
		DiscoveredAt:  at,
		Detail:        detail,
	}
}

// AssetRef returns the asset reference of the detail, or "" when there is none.
func (o Opportunity) AssetRef() string {
	if o.Detail == nil {
		return ""
	}
	return o.Detail.AssetRef()
}

// BasicFlipDetail: buy the lowest sell offer, fill the highest buy order.
type BasicFlipDetail struct {
	SellOfferID    string `json:"sell_offer_id"`
	AssetID        string `json:"asset_id"`
	BuyOrderID     string `json:"buy_order_id"`
	BuyOrderAmount int    `json:"buy_order_amount"`
}

func (BasicFlipDetail) Strategy() Strategy { return StrategyBasicFlip }
func (d BasicFlipDetail) AssetRef() string { return d.AssetID }
func (BasicFlipDetail) sealed()            {}

// Snipe price sources.
const (
	PriceSourceHistory = "history"
	PriceSourceOffers  = "offers"
)

// SnipeDetail: an offer listed well below the estimated market price.
type SnipeDetail struct {
	OfferID           string  `json:"offer_id"`
	AssetID           string  `json:"asset_id"`
	EstimatedPriceUSD float64 `json:"estimated_price_usd"`
	Discount          float64 `json:"discount"`
	PriceSource       string  `json:"price_source"`
}

func (SnipeDetail) Strategy() Strategy { return StrategySnipe }
func (d SnipeDetail) AssetRef() string { return d.AssetID }
func (SnipeDetail) sealed()            {}

// AttributeFlipDetail: an offer whose attributes justify a premium over the base price.
type AttributeFlipDetail struct {
	OfferID      string              `json:"offer_id"`
	AssetID      string              `json:"asset_id"`
	BasePriceUSD float64             `json:"base_price_usd"`
	Evaluation   AttributeEvaluation `json:"evaluation"`
}

func (AttributeFlipDetail) Strategy() Strategy { return StrategyAttributeFlip }
func (d AttributeFlipDetail) AssetRef() string { return d.AssetID }
func (AttributeFlipDetail) sealed()            {}

// TradeLockDetail: a trade-locked offer discounted against unlocked listings.
type TradeLockDetail struct {
	OfferID           string  `json:"offer_id"`
	AssetID           string  `json:"asset_id"`
	LockDays          int     `json:"lock_days"`
	ReferencePriceUSD float64 `json:"reference_price_usd"`
	Discount          float64 `json:"discount"`
}

func (TradeLockDetail) Strategy() Strategy { return StrategyTradeLock }
func (d TradeLockDetail) AssetRef() string { return d.AssetID }
func (TradeLockDetail) sealed()            {}

// VolatilityDetail: a technical buy signal on the item's price history.
type VolatilityDetail struct {
	OfferID string           `json:"offer_id"`
	AssetID string           `json:"asset_id"`
	Signal  VolatilitySignal `json:"signal"`
}

func (VolatilityDetail) Strategy() Strategy { return StrategyVolatility }
func (d VolatilityDetail) AssetRef() string { return d.AssetID }
func (VolatilityDetail) sealed()            {}

// OpportunitySet holds one scan's results per strategy.
type OpportunitySet struct {
	BasicFlips         []Opportunity `json:"basic_flips"`
	Snipes             []Opportunity `json:"snipes"`
	AttributeFlips     []Opportunity `json:"attribute_flips"`
	TradeLockArbitrage []Opportunity `json:"trade_lock_arbitrage"`
	VolatilityTrading  []Opportunity `json:"volatility_trading"`
}

// ForStrategy returns the slice holding results of one strategy.
func (s *OpportunitySet) ForStrategy(st Strategy) []Opportunity {
	switch st {
	case StrategyBasicFlip:
		return s.BasicFlips
	case StrategySnipe:
		return s.Snipes
	case StrategyAttributeFlip:
		return s.AttributeFlips
	case StrategyTradeLock:
		return s.TradeLockArbitrage
	case StrategyVolatility:
		return s.VolatilityTrading
	}
	return nil
}

// Add appends an opportunity to the slice of its strategy.
func (s *OpportunitySet) Add(opp Opportunity) {
	switch opp.Strategy {
	case StrategyBasicFlip:
		s.BasicFlips = append(s.BasicFlips, opp)
	case StrategySnipe:
		s.Snipes = append(s.Snipes, opp)
	case StrategyAttributeFlip:
		s.AttributeFlips = append(s.AttributeFlips, opp)
	case StrategyTradeLock:
		s.TradeLockArbitrage = append(s.TradeLockArbitrage, opp)
	case StrategyVolatility:
		s.VolatilityTrading = append(s.VolatilityTrading, opp)
	}
}

// Merge appends every opportunity of other.
func (s *OpportunitySet) Merge(other OpportunitySet) {
	for _, opp := range other.All() {
		s.Add(opp)
	}
}

// All returns every opportunity in strategy order.
func (s *OpportunitySet) All() []Opportunity {
	out := make([]Opportunity, 0, s.Len())
	for _, st := range AllStrategies {
		out = append(out, s.ForStrategy(st)...)
	}
	return out
}

// Len is the total number of opportunities.
func (s *OpportunitySet) Len() int {
	return len(s.BasicFlips) + len(s.Snipes) + len(s.AttributeFlips) +
		len(s.TradeLockArbitrage) + len(s.VolatilityTrading)
}

// Counts returns the number of opportunities per strategy.
func (s *OpportunitySet) Counts() map[Strategy]int {
	out := make(map[Strategy]int, len(AllStrategies))
	for _, st := range AllStrategies {
		out[st] = len(s.ForStrategy(st))
	}
	return out
}

// IsFinitePositive reports whether v is a usable price.
func IsFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
