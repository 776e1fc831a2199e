package attributes

import "github.com/Alias1177/skinflip/models"

// PatternTier is a set of paint seeds sharing one rarity on one skin.
type PatternTier struct {
	Name   string
	Rarity models.Rarity
	Seeds  []int
}

// StickerInfo is a catalog entry for one sticker.
type StickerInfo struct {
	ValueUSD float64
	Rarity   models.Rarity
}

// DefaultPatterns are the known special patterns per skin. Keys are matched
// against the item title with wear and StatTrak/Souvenir prefixes removed.
func DefaultPatterns() map[string][]PatternTier {
	return map[string][]PatternTier{
		"AK-47 | Case Hardened": {
			{Name: "tier 1 blue gem", Rarity: models.RarityLegendary, Seeds: []int{661, 670, 955, 179}},
			{Name: "tier 2 blue gem", Rarity: models.RarityEpic, Seeds: []int{151, 321, 387, 555, 592, 760, 809, 868}},
			{Name: "tier 3 blue gem", Rarity: models.RarityRare, Seeds: []int{4, 13, 28, 168, 182, 242, 617, 828}},
			{Name: "blue top", Rarity: models.RarityUncommon, Seeds: []int{32, 92, 103, 112, 278, 341, 442, 690, 713, 922}},
		},
		"Five-SeveN | Case Hardened": {
			{Name: "tier 1 blue gem", Rarity: models.RarityLegendary, Seeds: []int{278, 690, 868}},
			{Name: "tier 2 blue gem", Rarity: models.RarityEpic, Seeds: []int{189, 363, 872}},
		},
		"Karambit | Case Hardened": {
			{Name: "tier 1 blue gem", Rarity: models.RarityLegendary, Seeds: []int{387, 442, 463, 853}},
			{Name: "tier 2 blue gem", Rarity: models.RarityEpic, Seeds: []int{73, 269, 502, 888}},
		},
		"Bayonet | Case Hardened": {
			{Name: "tier 1 blue gem", Rarity: models.RarityLegendary, Seeds: []int{555, 592, 670}},
		},
		"Karambit | Fade": {
			{Name: "100% fade", Rarity: models.RarityEpic, Seeds: []int{412, 502, 763, 866, 998}},
			{Name: "98% fade", Rarity: models.RarityRare, Seeds: []int{48, 133, 267, 588, 941}},
			{Name: "95% fade", Rarity: models.RarityUncommon, Seeds: []int{17, 222, 394, 607, 735}},
		},
		"Butterfly Knife | Fade": {
			{Name: "100% fade", Rarity: models.RarityEpic, Seeds: []int{183, 312, 464, 850}},
			{Name: "98% fade", Rarity: models.RarityRare, Seeds: []int{54, 201, 509, 777}},
		},
		"Glock-18 | Fade": {
			{Name: "100% fade", Rarity: models.RarityRare, Seeds: []int{17, 329, 492, 763}},
			{Name: "95% fade", Rarity: models.RarityUncommon, Seeds: []int{86, 184, 568, 901}},
		},
	}
}

// DefaultStickers is the built-in sticker price catalog.
func DefaultStickers() map[string]StickerInfo {
	return map[string]StickerInfo{
		"iBUYPOWER (Holo) | Katowice 2014":      {ValueUSD: 50000, Rarity: models.RarityLegendary},
		"Titan (Holo) | Katowice 2014":          {ValueUSD: 40000, Rarity: models.RarityLegendary},
		"Reason Gaming (Holo) | Katowice 2014":  {ValueUSD: 6000, Rarity: models.RarityEpic},
		"Dignitas (Holo) | Katowice 2014":       {ValueUSD: 3500, Rarity: models.RarityEpic},
		"Natus Vincere (Holo) | Katowice 2014":  {ValueUSD: 3000, Rarity: models.RarityEpic},
		"Crown (Foil)":                          {ValueUSD: 1500, Rarity: models.RarityEpic},
		"Howling Dawn":                          {ValueUSD: 400, Rarity: models.RarityRare},
		"Headhunter (Foil)":                     {ValueUSD: 300, Rarity: models.RarityRare},
		"Flammable (Foil)":                      {ValueUSD: 200, Rarity: models.RarityRare},
		"Gold Web (Foil)":                       {ValueUSD: 200, Rarity: models.RarityRare},
		"Natus Vincere | Katowice 2019":         {ValueUSD: 5, Rarity: models.RarityUncommon},
		"Battle Scarred (Holo)":                 {ValueUSD: 50, Rarity: models.RarityUncommon},
		"Vitality (Holo) | Paris 2023":          {ValueUSD: 8, Rarity: models.RarityUncommon},
		"FaZe Clan | Paris 2023":                {ValueUSD: 0.5, Rarity: models.RarityCommon},
		"Team Liquid (Glitter) | Antwerp 2022":  {ValueUSD: 0.3, Rarity: models.RarityCommon},
	}
}
