package models

import "github.com/shopspring/decimal"

// CentsToUSD converts integer minor units from the marketplace into dollars.
func CentsToUSD(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

// USDToCents converts dollars back into minor units, rounding half away from zero.
func USDToCents(usd float64) int64 {
	return decimal.NewFromFloat(usd).Shift(2).Round(0).IntPart()
}

// RoundUSD rounds a dollar amount to whole cents.
func RoundUSD(usd float64) float64 {
	return decimal.NewFromFloat(usd).Round(2).InexactFloat64()
}
