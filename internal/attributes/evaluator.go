package attributes

import (
	"strings"

	"github.com/Alias1177/skinflip/models"
)

// wearBand is one row of the float value classification.
type wearBand struct {
	upper      float64 // exclusive, except for the last band
	tier       models.WearTier
	multiplier float64
	score      float64
}

var wearBands = []wearBand{
	{0.07, models.WearFactoryNew, 1.5, 20},
	{0.15, models.WearMinimalWear, 1.2, 15},
	{0.38, models.WearFieldTested, 1.0, 10},
	{0.45, models.WearWellWorn, 0.8, 5},
	{1.0, models.WearBattleScarred, 0.6, 2},
}

// Score and multiplier per rarity tier, indexed by models.Rarity.
var (
	patternScores      = [...]float64{0, 8, 15, 25, 30}
	patternMultipliers = [...]float64{1.0, 1.3, 2.0, 3.0, 5.0}
	stickerScores      = [...]float64{0, 6, 12, 20, 25}
)

// Sticker slot multipliers; slots past the table use stickerTailMultiplier.
var stickerSlotMultipliers = [...]float64{1.0, 0.8, 0.6, 0.4}

const (
	stickerTailMultiplier = 0.2

	lowFloatThreshold   = 0.01
	lowFloatMultiplier  = 2.0
	lowFloatBonus       = 15
	highFloatThreshold  = 0.95
	highFloatMultiplier = 1.8
	highFloatBonus      = 10

	statTrakBonus      = 8
	statTrakMultiplier = 1.3
	souvenirBonus      = 12
	souvenirMultiplier = 1.5

	maxStickerMultiplier = 3.0
)

// Evaluator scores intrinsic item rarity. It holds only read-only tables.
type Evaluator struct {
	patterns map[string][]PatternTier
	stickers map[string]StickerInfo
}

// NewEvaluator creates an evaluator with the built-in pattern and sticker tables.
func NewEvaluator() *Evaluator {
	return NewEvaluatorWithTables(DefaultPatterns(), DefaultStickers())
}

// NewEvaluatorWithTables creates an evaluator over custom tables.
func NewEvaluatorWithTables(patterns map[string][]PatternTier, stickers map[string]StickerInfo) *Evaluator {
	if patterns == nil {
		patterns = map[string][]PatternTier{}
	}
	if stickers == nil {
		stickers = map[string]StickerInfo{}
	}
	return &Evaluator{patterns: patterns, stickers: stickers}
}

// Evaluate computes the rarity score and premium multiplier of one item.
func (e *Evaluator) Evaluate(attrs models.ItemAttributes, stickers []models.Sticker, itemName string) models.AttributeEvaluation {
	ev := models.AttributeEvaluation{
		FloatValue:    attrs.FloatValue,
		PaintSeed:     attrs.PaintSeed,
		PatternRarity: models.RarityCommon,
		StickerRarity: models.RarityCommon,
	}

	score := 0.0
	multiplier := 1.0

	// Wear
	if attrs.FloatValue != nil {
		f := *attrs.FloatValue
		band := classifyWear(f)
		ev.Wear = band.tier
		score += band.score
		multiplier *= band.multiplier

		if f >= 0 && f <= 1 {
			switch {
			case f < lowFloatThreshold:
				score += lowFloatBonus
				multiplier *= lowFloatMultiplier
			case f > highFloatThreshold:
				score += highFloatBonus
				multiplier *= highFloatMultiplier
			}
		}
	}

	// Pattern
	if attrs.PaintSeed != nil {
		if tier, ok := e.lookupPattern(itemName, *attrs.PaintSeed); ok {
			ev.PatternRarity = tier.Rarity
			ev.PatternName = tier.Name
		}
	}
	score += patternScores[ev.PatternRarity]
	multiplier *= patternMultipliers[ev.PatternRarity]

	// Stickers
	ev.StickerValueUSD, ev.StickerRarity = e.evaluateStickers(stickers)
	score += stickerScores[ev.StickerRarity]
	multiplier *= stickerValueMultiplier(ev.StickerValueUSD)

	// Special flags
	lower := strings.ToLower(itemName)
	ev.StatTrak = attrs.StatTrak || strings.Contains(lower, "stattrak")
	ev.Souvenir = attrs.Souvenir || strings.Contains(lower, "souvenir")
	if ev.StatTrak {
		score += statTrakBonus
		multiplier *= statTrakMultiplier
	}
	if ev.Souvenir {
		score += souvenirBonus
		multiplier *= souvenirMultiplier
	}

	ev.RarityScore = clamp(score, 0, 100)
	ev.PremiumMultiplier = multiplier
	return ev
}

// classifyWear maps a float value to its band. Values outside [0,1] are Battle-Scarred.
func classifyWear(f float64) wearBand {
	last := wearBands[len(wearBands)-1]
	if f < 0 || f > 1 {
		return last
	}
	for _, b := range wearBands[:len(wearBands)-1] {
		if f < b.upper {
			return b
		}
	}
	return last
}

func (e *Evaluator) lookupPattern(itemName string, seed int) (PatternTier, bool) {
	base := BaseName(itemName)
	tiers, ok := e.patterns[base]
	if !ok {
		return PatternTier{}, false
	}
	for _, tier := range tiers {
		for _, s := range tier.Seeds {
			if s == seed {
				return tier, true
			}
		}
	}
	return PatternTier{}, false
}

func (e *Evaluator) evaluateStickers(stickers []models.Sticker) (float64, models.Rarity) {
	total := 0.0
	rarity := models.RarityCommon
	for _, st := range stickers {
		info, ok := e.stickers[st.Name]
		if !ok {
			continue
		}
		total += info.ValueUSD * slotMultiplier(st.Slot)
		if info.Rarity > rarity {
			rarity = info.Rarity
		}
	}
	return total, rarity
}

func slotMultiplier(slot int) float64 {
	if slot >= 0 && slot < len(stickerSlotMultipliers) {
		return stickerSlotMultipliers[slot]
	}
	return stickerTailMultiplier
}

func stickerValueMultiplier(valueUSD float64) float64 {
	m := 1 + valueUSD*0.1/1000
	if m > maxStickerMultiplier {
		return maxStickerMultiplier
	}
	if m < 1 {
		return 1
	}
	return m
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
