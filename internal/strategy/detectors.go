package strategy

import (
	"github.com/Alias1177/skinflip/internal/pricing"
	"github.com/Alias1177/skinflip/models"
)

// passes applies the global profit thresholds.
func (e *Engine) passes(opp models.Opportunity) bool {
	return opp.ProfitUSD >= e.cfg.MinProfitUSD && opp.ProfitPct >= e.cfg.MinProfitPct
}

// detectBasicFlip buys the lowest sell offer and fills the highest buy order.
func (e *Engine) detectBasicFlip(snap models.MarketSnapshot, fees models.FeeSchedule) []models.Opportunity {
	lso, ok := snap.LowestOffer()
	if !ok {
		return nil
	}
	hbo, ok := snap.HighestBuyOrder()
	if !ok {
		return nil
	}

	sell := hbo.PriceUSD()
	opp := models.NewOpportunity(snap.Title, lso.PriceUSD(), sell, fees.Commission(sell),
		models.ConfidenceHigh, e.now(), models.BasicFlipDetail{
			SellOfferID:    lso.OfferID,
			AssetID:        lso.AssetID,
			BuyOrderID:     hbo.OfferID,
			BuyOrderAmount: hbo.Amount,
		})
	if !e.passes(opp) {
		return nil
	}
	return []models.Opportunity{opp}
}

// detectSnipes finds offers listed well below the estimated market price.
func (e *Engine) detectSnipes(snap models.MarketSnapshot, fees models.FeeSchedule) []models.Opportunity {
	emp, source, ok := pricing.EstimateWithSource(snap.Title, snap.History, snap.SellOffers)
	if !ok || emp <= 0 {
		return nil
	}

	conf := models.ConfidenceLow
	if source == models.PriceSourceHistory {
		conf = models.ConfidenceMedium
	}

	var out []models.Opportunity
	for _, o := range snap.SellOffers {
		price := o.PriceUSD()
		if price <= 0 || price < e.cfg.SnipeMinPriceUSD {
			continue
		}
		discount := (emp - price) / emp
		if discount < e.cfg.SnipeMinDiscount {
			continue
		}
		opp := models.NewOpportunity(snap.Title, price, emp, fees.Commission(emp), conf, e.now(),
			models.SnipeDetail{
				OfferID:           o.OfferID,
				AssetID:           o.AssetID,
				EstimatedPriceUSD: emp,
				Discount:          discount,
				PriceSource:       source,
			})
		if opp.ProfitUSD <= 0 {
			continue
		}
		out = append(out, opp)
	}
	return out
}

// detectAttributeFlips finds offers whose float, pattern or stickers justify a premium.
func (e *Engine) detectAttributeFlips(snap models.MarketSnapshot, fees models.FeeSchedule) []models.Opportunity {
	if e.evaluator == nil {
		return nil
	}
	base, ok := pricing.Estimate(snap.Title, snap.History, snap.SellOffers)
	if !ok || base <= 0 {
		return nil
	}

	var out []models.Opportunity
	for _, o := range snap.SellOffers {
		price := o.PriceUSD()
		if price <= 0 || price > e.cfg.AttributeMaxPriceUSD {
			continue
		}
		ev := e.evaluator.Evaluate(o.Attributes, o.Stickers, snap.Title)
		if ev.RarityScore < e.cfg.AttributeMinRarityScore || ev.PremiumMultiplier < e.cfg.AttributeMinPremium {
			continue
		}

		resale := base * ev.PremiumMultiplier
		conf := models.ConfidenceLow
		if ev.RarityScore >= 60 || ev.PatternRarity >= models.RarityRare {
			conf = models.ConfidenceMedium
		}
		opp := models.NewOpportunity(snap.Title, price, resale, fees.Commission(resale), conf, e.now(),
			models.AttributeFlipDetail{
				OfferID:      o.OfferID,
				AssetID:      o.AssetID,
				BasePriceUSD: base,
				Evaluation:   ev,
			})
		if e.passes(opp) {
			out = append(out, opp)
		}
	}
	return out
}

// detectTradeLock finds locked offers discounted against the cheapest unlocked one.
func (e *Engine) detectTradeLock(snap models.MarketSnapshot, fees models.FeeSchedule) []models.Opportunity {
	var ref int64
	for _, o := range snap.SellOffers {
		if o.Locked() || o.PriceCents <= 0 {
			continue
		}
		if ref == 0 || o.PriceCents < ref {
			ref = o.PriceCents
		}
	}
	if ref == 0 {
		return nil
	}
	refUSD := models.CentsToUSD(ref)

	var out []models.Opportunity
	for _, o := range snap.SellOffers {
		if !o.Locked() || o.TradeLockDays > e.cfg.TradeLockMaxDays || o.PriceCents <= 0 {
			continue
		}
		price := o.PriceUSD()
		discount := (refUSD - price) / refUSD
		if discount < e.cfg.TradeLockMinDiscount {
			continue
		}
		opp := models.NewOpportunity(snap.Title, price, refUSD, fees.Commission(refUSD),
			models.ConfidenceMedium, e.now(), models.TradeLockDetail{
				OfferID:           o.OfferID,
				AssetID:           o.AssetID,
				LockDays:          o.TradeLockDays,
				ReferencePriceUSD: refUSD,
				Discount:          discount,
			})
		if e.passes(opp) {
			out = append(out, opp)
		}
	}
	return out
}

// detectVolatility turns technical buy signals on the stored history into
// opportunities priced at the current best offer.
func (e *Engine) detectVolatility(snap models.MarketSnapshot, fees models.FeeSchedule) []models.Opportunity {
	if e.analyzer == nil {
		return nil
	}
	lso, ok := snap.LowestOffer()
	if !ok {
		return nil
	}

	var out []models.Opportunity
	for _, sig := range e.analyzer.FindSignals(snap.Title, snap.History, lso.PriceUSD()) {
		// Only buy-side signals can be acted on; sells need inventory and
		// breakouts have no direction.
		if sig.Direction != models.DirectionBuy || sig.Confidence < e.cfg.VolatilityMinConfidence {
			continue
		}
		conf := models.ConfidenceMedium
		if sig.Confidence >= 0.8 {
			conf = models.ConfidenceHigh
		}
		opp := models.NewOpportunity(snap.Title, sig.EntryPriceUSD, sig.TargetPriceUSD,
			fees.Commission(sig.TargetPriceUSD), conf, e.now(), models.VolatilityDetail{
				OfferID: lso.OfferID,
				AssetID: lso.AssetID,
				Signal:  sig,
			})
		if e.passes(opp) {
			out = append(out, opp)
		}
	}
	return out
}
