package pricing

import "github.com/Alias1177/skinflip/models"

// Estimate returns the estimated market price of an item in dollars.
// The mean of the historical ticks wins whenever at least one usable tick
// exists; otherwise the cheapest usable sell offer is used. ok is false when
// neither source yields a price.
func Estimate(title string, ticks []models.PriceTick, offers []models.SellOffer) (price float64, ok bool) {
	price, _, ok = EstimateWithSource(title, ticks, offers)
	return price, ok
}

// EstimateWithSource is Estimate that also reports which source was used
// (models.PriceSourceHistory or models.PriceSourceOffers).
func EstimateWithSource(_ string, ticks []models.PriceTick, offers []models.SellOffer) (float64, string, bool) {
	if mean, ok := HistoricalMean(ticks); ok {
		return mean, models.PriceSourceHistory, true
	}
	if low, ok := LowestOfferUSD(offers); ok {
		return low, models.PriceSourceOffers, true
	}
	return 0, "", false
}

// HistoricalMean is the arithmetic mean of the usable tick prices.
func HistoricalMean(ticks []models.PriceTick) (float64, bool) {
	var sum float64
	var n int
	for _, t := range ticks {
		if !models.IsFinitePositive(t.Price) {
			continue
		}
		sum += t.Price
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// LowestOfferUSD is the cheapest positive offer price in dollars.
func LowestOfferUSD(offers []models.SellOffer) (float64, bool) {
	var best int64
	for _, o := range offers {
		if o.PriceCents <= 0 {
			continue
		}
		if best == 0 || o.PriceCents < best {
			best = o.PriceCents
		}
	}
	if best == 0 {
		return 0, false
	}
	return models.CentsToUSD(best), true
}
