package technical

import (
	"math"
	"sort"
	"time"

	"github.com/Alias1177/skinflip/models"
)

// CalculateRSI computes Wilder's RSI over prices ordered oldest first.
// With fewer than period+1 prices it returns the neutral 50.
func CalculateRSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50.0
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	// Wilder smoothing for the remaining changes
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}

	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// CalculateBollingerBands returns upper, middle and lower bands over the last
// min(period, len(prices)) prices.
func CalculateBollingerBands(prices []float64, period int, stdDev float64) (float64, float64, float64) {
	window := tail(prices, period)
	if len(window) == 0 {
		return 0, 0, 0
	}

	middle := mean(window)
	var variance float64
	for _, p := range window {
		variance += (p - middle) * (p - middle)
	}
	sd := math.Sqrt(variance / float64(len(window)))

	return middle + sd*stdDev, middle, middle - sd*stdDev
}

// CalculateSMA is the simple mean of the last min(period, len(prices)) prices.
func CalculateSMA(prices []float64, period int) float64 {
	window := tail(prices, period)
	if len(window) == 0 {
		return 0
	}
	return mean(window)
}

// CalculateVolatilityScore is the standard deviation of log returns × 100.
func CalculateVolatilityScore(prices []float64) float64 {
	if len(prices) < 3 {
		return 0
	}
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] <= 0 || prices[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(prices[i]/prices[i-1]))
	}
	if len(returns) < 2 {
		return 0
	}

	m := mean(returns)
	var variance float64
	for _, r := range returns {
		variance += (r - m) * (r - m)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance) * 100
}

// PriceChangeSince returns the percentage change of the last tick versus the
// tick closest to at. ticks must be sorted oldest first.
func PriceChangeSince(ticks []models.PriceTick, at time.Time) float64 {
	if len(ticks) == 0 {
		return 0
	}
	ref := ticks[0]
	best := absDuration(ticks[0].Timestamp.Sub(at))
	for _, t := range ticks[1:] {
		if d := absDuration(t.Timestamp.Sub(at)); d < best {
			best = d
			ref = t
		}
	}
	if ref.Price <= 0 {
		return 0
	}
	last := ticks[len(ticks)-1].Price
	return (last - ref.Price) / ref.Price * 100
}

// sortedValid drops unusable ticks and orders the rest oldest first.
func sortedValid(series []models.PriceTick) []models.PriceTick {
	out := make([]models.PriceTick, 0, len(series))
	for _, t := range series {
		if models.IsFinitePositive(t.Price) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func tail(prices []float64, period int) []float64 {
	if period <= 0 || period > len(prices) {
		return prices
	}
	return prices[len(prices)-period:]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
