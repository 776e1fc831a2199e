package risk

import (
	"github.com/Alias1177/skinflip/internal/attributes"
	"github.com/Alias1177/skinflip/models"
)

// group folds item categories into the classes the heuristics distinguish.
type group int

const (
	groupOther group = iota
	groupCase
	groupWeapon
	groupAgent
	groupSticker
	groupKnife // knives and gloves
)

func groupOf(cat models.ItemCategory) group {
	switch cat {
	case models.CategoryCase:
		return groupCase
	case models.CategoryRifle, models.CategorySniper, models.CategoryPistol, models.CategorySMG, models.CategoryHeavy:
		return groupWeapon
	case models.CategoryAgent:
		return groupAgent
	case models.CategorySticker:
		return groupSticker
	case models.CategoryKnife, models.CategoryGloves:
		return groupKnife
	}
	return groupOther
}

func groupOfTitle(title string) group { return groupOf(attributes.Categorize(title)) }

// priceTier indexes the five price buckets: <10, <50, <200, <1000, >=1000 USD.
func priceTier(priceUSD float64) int {
	switch {
	case priceUSD < 10:
		return 0
	case priceUSD < 50:
		return 1
	case priceUSD < 200:
		return 2
	case priceUSD < 1000:
		return 3
	}
	return 4
}

var (
	tierLiquidity  = [...]float64{1.0, 0.8, 0.6, 0.4, 0.2}
	tierVolatility = [...]float64{0.2, 0.3, 0.4, 0.6, 0.8}
	tierItemRisk   = [...]float64{0.1, 0.2, 0.3, 0.5, 0.7}
	tierStopAdjust = [...]float64{0.05, 0.02, 0, -0.02, -0.03}
)

var groupLiquidity = map[group]float64{
	groupCase: 1.0, groupWeapon: 0.9, groupAgent: 0.8, groupOther: 0.7, groupSticker: 0.6, groupKnife: 0.5,
}

var groupVolatility = map[group]float64{
	groupCase: 0.2, groupWeapon: 0.3, groupAgent: 0.4, groupOther: 0.4, groupKnife: 0.6, groupSticker: 0.7,
}

var groupBeta = map[group]float64{
	groupCase: 0.8, groupWeapon: 1.0, groupAgent: 1.1, groupOther: 1.0, groupKnife: 1.3, groupSticker: 1.4,
}

var groupItemRisk = map[group]float64{
	groupCase: 0, groupWeapon: 0.1, groupAgent: 0.15, groupOther: 0.15, groupKnife: 0.2, groupSticker: 0.25,
}

var groupStopAdjust = map[group]float64{
	groupCase: 0, groupWeapon: 0.02, groupAgent: 0.04, groupOther: 0.03, groupKnife: 0.05, groupSticker: 0.08,
}

var strategyItemRisk = map[models.Strategy]float64{
	models.StrategyBasicFlip:     0,
	models.StrategySnipe:         0.1,
	models.StrategyAttributeFlip: 0.2,
	models.StrategyTradeLock:     0.25,
	models.StrategyVolatility:    0.3,
}

var strategyStopAdjust = map[models.Strategy]float64{
	models.StrategyBasicFlip:     -0.02,
	models.StrategySnipe:         0,
	models.StrategyAttributeFlip: 0.03,
	models.StrategyTradeLock:     0.05,
	models.StrategyVolatility:    0.07,
}

func itemLiquidity(priceUSD float64, g group) float64 {
	return (tierLiquidity[priceTier(priceUSD)] + groupLiquidity[g]) / 2
}

func itemVolatility(priceUSD float64, g group) float64 {
	return (tierVolatility[priceTier(priceUSD)] + groupVolatility[g]) / 2
}

// itemRisk is the additive price, category and strategy risk of one trade, capped at 1.
func itemRisk(priceUSD float64, g group, st models.Strategy) float64 {
	return clamp(tierItemRisk[priceTier(priceUSD)]+groupItemRisk[g]+strategyItemRisk[st], 0, 1)
}

// diversificationScore is the step function over category count and the
// heaviest category weight.
func diversificationScore(categories int, maxWeight float64) float64 {
	switch {
	case categories >= 3 && maxWeight <= 0.5:
		return 0.9
	case categories >= 2 && maxWeight <= 0.7:
		return 0.7
	case maxWeight <= 0.8:
		return 0.5
	}
	return 0.2
}

// correlationRisk accumulates 2*(w-0.3) for every category above 30% weight.
func correlationRisk(weights map[models.ItemCategory]float64) float64 {
	var r float64
	for _, w := range weights {
		if w > 0.3 {
			r += 2 * (w - 0.3)
		}
	}
	return clamp(r, 0, 1)
}

// herfindahl is the sum of squared weights.
func herfindahl(values []float64, total float64) float64 {
	if total <= 0 {
		return 0
	}
	var h float64
	for _, v := range values {
		w := v / total
		h += w * w
	}
	return h
}

// LevelFor buckets a score in [0,1] into a risk level.
func LevelFor(score float64) models.RiskLevel {
	switch {
	case score <= 0.2:
		return models.RiskVeryLow
	case score <= 0.4:
		return models.RiskLow
	case score <= 0.6:
		return models.RiskMedium
	case score <= 0.8:
		return models.RiskHigh
	case score <= 0.95:
		return models.RiskVeryHigh
	}
	return models.RiskExtreme
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
