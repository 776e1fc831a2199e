package models

import (
	"fmt"
	"strings"
)

// Strategy identifies one of the five opportunity detectors.
type Strategy int

const (
	StrategyBasicFlip Strategy = iota + 1
	StrategySnipe
	StrategyAttributeFlip
	StrategyTradeLock
	StrategyVolatility
)

// AllStrategies lists the detectors in the order their results are processed.
var AllStrategies = []Strategy{
	StrategyBasicFlip,
	StrategySnipe,
	StrategyAttributeFlip,
	StrategyTradeLock,
	StrategyVolatility,
}

var strategyNames = map[Strategy]string{
	StrategyBasicFlip:     "basic_flip",
	StrategySnipe:         "snipe",
	StrategyAttributeFlip: "attribute_flip",
	StrategyTradeLock:     "trade_lock_arbitrage",
	StrategyVolatility:    "volatility_trading",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy maps the external name of a strategy to its value.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

func (s Strategy) MarshalText() ([]byte, error) {
	if _, ok := strategyNames[s]; !ok {
		return nil, fmt.Errorf("invalid strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Confidence is the coarse confidence tag attached to an opportunity.
type Confidence int

const (
	ConfidenceLow Confidence = iota + 1
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	}
	return "unknown"
}

func (c Confidence) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// RiskLevel is shared by trade risk tiers and portfolio risk buckets.
type RiskLevel int

const (
	RiskVeryLow RiskLevel = iota + 1
	RiskLow
	RiskMedium
	RiskHigh
	RiskVeryHigh
	RiskExtreme
)

var riskLevelNames = map[RiskLevel]string{
	RiskVeryLow:  "VERY_LOW",
	RiskLow:      "LOW",
	RiskMedium:   "MEDIUM",
	RiskHigh:     "HIGH",
	RiskVeryHigh: "VERY_HIGH",
	RiskExtreme:  "EXTREME",
}

func (r RiskLevel) String() string {
	if name, ok := riskLevelNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

func (r RiskLevel) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// AlertLevel is the severity of an alert.
type AlertLevel int

const (
	AlertLow AlertLevel = iota + 1
	AlertMedium
	AlertHigh
	AlertCritical
)

var alertLevelNames = map[AlertLevel]string{
	AlertLow:      "low",
	AlertMedium:   "medium",
	AlertHigh:     "high",
	AlertCritical: "critical",
}

func (l AlertLevel) String() string {
	if name, ok := alertLevelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseAlertLevel maps a configured level name to its value.
func ParseAlertLevel(name string) (AlertLevel, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for l, n := range alertLevelNames {
		if n == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown alert level %q", name)
}

func (l AlertLevel) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *AlertLevel) UnmarshalText(text []byte) error {
	v, err := ParseAlertLevel(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// OrderAction is the side of an execution order.
type OrderAction int

const (
	ActionBuy OrderAction = iota + 1
	ActionSell
)

func (a OrderAction) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	}
	return "unknown"
}

func (a OrderAction) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// Rarity is the five-step tier used for patterns and stickers.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
)

func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "COMMON"
	case RarityUncommon:
		return "UNCOMMON"
	case RarityRare:
		return "RARE"
	case RarityEpic:
		return "EPIC"
	case RarityLegendary:
		return "LEGENDARY"
	}
	return "UNKNOWN"
}

func (r Rarity) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// WearTier is the exterior classification derived from the float value.
type WearTier int

const (
	WearUnknown WearTier = iota
	WearFactoryNew
	WearMinimalWear
	WearFieldTested
	WearWellWorn
	WearBattleScarred
)

func (w WearTier) String() string {
	switch w {
	case WearFactoryNew:
		return "Factory New"
	case WearMinimalWear:
		return "Minimal Wear"
	case WearFieldTested:
		return "Field-Tested"
	case WearWellWorn:
		return "Well-Worn"
	case WearBattleScarred:
		return "Battle-Scarred"
	}
	return "Unknown"
}

func (w WearTier) MarshalText() ([]byte, error) { return []byte(w.String()), nil }

// ItemCategory groups items for liquidity, volatility and stop-loss heuristics.
type ItemCategory int

const (
	CategoryOther ItemCategory = iota
	CategoryKnife
	CategoryGloves
	CategoryRifle
	CategorySniper
	CategoryPistol
	CategorySMG
	CategoryHeavy
	CategorySticker
	CategoryCase
	CategoryAgent
)

var categoryNames = map[ItemCategory]string{
	CategoryOther:   "other",
	CategoryKnife:   "knife",
	CategoryGloves:  "gloves",
	CategoryRifle:   "rifle",
	CategorySniper:  "sniper",
	CategoryPistol:  "pistol",
	CategorySMG:     "smg",
	CategoryHeavy:   "heavy",
	CategorySticker: "sticker",
	CategoryCase:    "case",
	CategoryAgent:   "agent",
}

func (c ItemCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "other"
}

func (c ItemCategory) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// InventoryStatus is the lifecycle state of a ledger record.
type InventoryStatus int

const (
	InventoryPurchased InventoryStatus = iota + 1
	InventoryHolding
	InventoryListed
	InventorySold
	InventoryCancelled
)

var inventoryStatusNames = map[InventoryStatus]string{
	InventoryPurchased: "purchased",
	InventoryHolding:   "holding",
	InventoryListed:    "listed",
	InventorySold:      "sold",
	InventoryCancelled: "cancelled",
}

func (s InventoryStatus) String() string {
	if name, ok := inventoryStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseInventoryStatus maps a stored status string to its value.
func ParseInventoryStatus(name string) (InventoryStatus, error) {
	for s, n := range inventoryStatusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown inventory status %q", name)
}

func (s InventoryStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
