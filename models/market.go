package models

import "time"

// PriceTick is one stored price observation in dollars.
type PriceTick struct {
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// ItemAttributes are the optional inspect attributes of a listed item.
type ItemAttributes struct {
	FloatValue *float64 `json:"float_value,omitempty"`
	PaintSeed  *int     `json:"paint_seed,omitempty"`
	StatTrak   bool     `json:"stattrak,omitempty"`
	Souvenir   bool     `json:"souvenir,omitempty"`
}

// Sticker is an applied sticker; Slot 0 is the most valuable position.
type Sticker struct {
	Name string `json:"name"`
	Slot int    `json:"slot"`
}

// SellOffer is a listed item that can be bought.
type SellOffer struct {
	OfferID       string         `json:"offer_id"`
	AssetID       string         `json:"asset_id"`
	Title         string         `json:"title"`
	PriceCents    int64          `json:"price_cents"`
	Attributes    ItemAttributes `json:"attributes"`
	Stickers      []Sticker      `json:"stickers,omitempty"`
	TradeLockDays int            `json:"trade_lock_days,omitempty"`
}

// PriceUSD returns the offer price in dollars.
func (o SellOffer) PriceUSD() float64 { return CentsToUSD(o.PriceCents) }

// Locked reports whether the item is still under a trade lock.
func (o SellOffer) Locked() bool { return o.TradeLockDays > 0 }

// BuyOrder is a standing buy order (target) on an item.
type BuyOrder struct {
	OfferID    string `json:"offer_id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price_cents"`
	Amount     int    `json:"amount"`
}

// PriceUSD returns the order price in dollars.
func (b BuyOrder) PriceUSD() float64 { return CentsToUSD(b.PriceCents) }

// OffersPage is one page of sell offers.
type OffersPage struct {
	Offers []SellOffer
	Cursor string
}

// BuyOrdersPage is one page of buy orders.
type BuyOrdersPage struct {
	Orders []BuyOrder
	Cursor string
}

// MarketSnapshot is everything known about one item during one scan cycle.
type MarketSnapshot struct {
	Title      string
	SellOffers []SellOffer
	BuyOrders  []BuyOrder
	History    []PriceTick
	FetchedAt  time.Time
}

// LowestOffer returns the cheapest sell offer with a positive price.
func (s MarketSnapshot) LowestOffer() (SellOffer, bool) {
	var best SellOffer
	found := false
	for _, o := range s.SellOffers {
		if o.PriceCents <= 0 {
			continue
		}
		if !found || o.PriceCents < best.PriceCents {
			best = o
			found = true
		}
	}
	return best, found
}

// HighestBuyOrder returns the best standing buy order with a positive price.
func (s MarketSnapshot) HighestBuyOrder() (BuyOrder, bool) {
	var best BuyOrder
	found := false
	for _, b := range s.BuyOrders {
		if b.PriceCents <= 0 {
			continue
		}
		if !found || b.PriceCents > best.PriceCents {
			best = b
			found = true
		}
	}
	return best, found
}

// FeeSchedule is the marketplace commission for one game.
type FeeSchedule struct {
	Rate             float64 `json:"rate" yaml:"rate"`
	MinCommissionUSD float64 `json:"min_commission_usd" yaml:"min_commission_usd"`
}

// Commission is the fee charged when an item sells for priceUSD.
// It is non-decreasing in price and never below the minimum for positive prices.
func (f FeeSchedule) Commission(priceUSD float64) float64 {
	if priceUSD <= 0 {
		return 0
	}
	c := priceUSD * f.Rate
	if c < f.MinCommissionUSD {
		c = f.MinCommissionUSD
	}
	return c
}

// InventoryAsset is an item held in the marketplace account.
type InventoryAsset struct {
	AssetID  string `json:"asset_id"`
	Title    string `json:"title"`
	Tradable bool   `json:"tradable"`
}

// TradeResult is the marketplace's answer to a buy, sell or cancel request.
type TradeResult struct {
	Success    bool
	OfferID    string
	TxID       string
	PriceCents int64
	Message    string
	// AssetID is the inventory asset a buy turned into, when known.
	AssetID string
}
