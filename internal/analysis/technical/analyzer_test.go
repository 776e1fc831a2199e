package technical

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/Alias1177/skinflip/models"
)

var baseTime = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func generateTicks(n int, price func(int) float64) []models.PriceTick {
	ticks := make([]models.PriceTick, n)
	for i := 0; i < n; i++ {
		ticks[i] = models.PriceTick{
			Price:     price(i),
			Timestamp: baseTime.Add(time.Duration(i) * time.Hour),
			Source:    "test",
		}
	}
	return ticks
}

func reversed(ticks []models.PriceTick) []models.PriceTick {
	out := make([]models.PriceTick, len(ticks))
	for i, t := range ticks {
		out[len(ticks)-1-i] = t
	}
	return out
}

func TestCalculateRSI(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		want   float64
	}{
		{"too short", []float64{1, 2, 3}, 50},
		{"flat", []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5}, 50},
		{"only gains", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}, 100},
		{"only losses", []float64{16, 15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateRSI(tt.prices, 14); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CalculateRSI() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateBollingerBandsShortSeries(t *testing.T) {
	upper, middle, lower := CalculateBollingerBands([]float64{10, 10, 10}, 20, 2)
	if upper != 10 || middle != 10 || lower != 10 {
		t.Errorf("bands = %v/%v/%v, want 10/10/10", upper, middle, lower)
	}
}

func TestAnalyzeRequiresMinimumPoints(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	ticks := generateTicks(9, func(i int) float64 { return 10 + float64(i) })

	if _, ok := a.Analyze(ticks); ok {
		t.Fatal("Analyze accepted 9 points")
	}
	if sigs := a.FindSignals("x", ticks, 10); sigs != nil {
		t.Fatalf("FindSignals = %v, want nil", sigs)
	}
}

func TestAnalyzeIgnoresOrder(t *testing.T) {
	a := NewAnalyzer(DefaultConfig()).WithClock(func() time.Time { return baseTime.Add(30 * time.Hour) })
	ticks := generateTicks(30, func(i int) float64 { return 100 - float64(i) })

	asc, ok := a.Analyze(ticks)
	if !ok {
		t.Fatal("Analyze failed")
	}
	desc, _ := a.Analyze(reversed(ticks))
	if asc != desc {
		t.Errorf("indicators depend on input order:\n%+v\n%+v", asc, desc)
	}
	if asc.LastPrice != 71 {
		t.Errorf("LastPrice = %v, want 71", asc.LastPrice)
	}
}

func TestPriceDeltas(t *testing.T) {
	now := baseTime.Add(10 * 24 * time.Hour)
	a := NewAnalyzer(DefaultConfig()).WithClock(func() time.Time { return now })

	var ticks []models.PriceTick
	for i := 0; i < 10; i++ {
		ticks = append(ticks, models.PriceTick{Price: 40, Timestamp: now.Add(-9 * 24 * time.Hour).Add(time.Duration(i) * time.Minute)})
	}
	ticks = append(ticks,
		models.PriceTick{Price: 50, Timestamp: now.Add(-7 * 24 * time.Hour)},
		models.PriceTick{Price: 80, Timestamp: now.Add(-25 * time.Hour)},
		models.PriceTick{Price: 100, Timestamp: now},
	)

	ind, ok := a.Analyze(ticks)
	if !ok {
		t.Fatal("Analyze failed")
	}
	if math.Abs(ind.Change24hPct-25) > 1e-9 {
		t.Errorf("Change24hPct = %v, want 25", ind.Change24hPct)
	}
	if math.Abs(ind.Change7dPct-100) > 1e-9 {
		t.Errorf("Change7dPct = %v, want 100", ind.Change7dPct)
	}
}

func findKind(sigs []models.VolatilitySignal, kind models.SignalKind) (models.VolatilitySignal, bool) {
	for _, s := range sigs {
		if s.Kind == kind {
			return s, true
		}
	}
	return models.VolatilitySignal{}, false
}

func TestFindSignalsDowntrend(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	ticks := generateTicks(30, func(i int) float64 { return 100 - float64(i) })

	sigs := a.FindSignals("AK-47 | Redline (Field-Tested)", ticks, 71)

	rsi, ok := findKind(sigs, models.SignalRSIOversold)
	if !ok {
		t.Fatalf("no RSI oversold signal in %+v", sigs)
	}
	if rsi.Direction != models.DirectionBuy || rsi.Strength != models.StrengthStrong {
		t.Errorf("RSI signal direction/strength = %s/%s", rsi.Direction, rsi.Strength)
	}
	if math.Abs(rsi.Confidence-0.95) > 1e-9 {
		t.Errorf("RSI confidence = %v, want 0.95", rsi.Confidence)
	}
	if math.Abs(rsi.StopPriceUSD-71*0.95) > 1e-9 || math.Abs(rsi.TargetPriceUSD-71*1.10) > 1e-9 {
		t.Errorf("levels stop=%v target=%v", rsi.StopPriceUSD, rsi.TargetPriceUSD)
	}
	if math.Abs(rsi.RiskReward-2) > 1e-9 {
		t.Errorf("RiskReward = %v, want 2", rsi.RiskReward)
	}
	if rsi.Title != "AK-47 | Redline (Field-Tested)" {
		t.Errorf("Title = %q", rsi.Title)
	}

	death, ok := findKind(sigs, models.SignalDeathCross)
	if !ok {
		t.Fatalf("no death cross in %+v", sigs)
	}
	if death.Direction != models.DirectionSell || death.StopPriceUSD <= 71 || death.TargetPriceUSD >= 71 {
		t.Errorf("sell levels wrong: %+v", death)
	}

	if _, ok := findKind(sigs, models.SignalVolatilityBreakout); ok {
		t.Error("unexpected breakout on a smooth trend")
	}
}

func TestFindSignalsSqueeze(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	ticks := generateTicks(20, func(i int) float64 {
		if i%2 == 0 {
			return 98.875
		}
		return 101.125
	})

	sigs := a.FindSignals("x", ticks, 100)
	if len(sigs) != 1 || sigs[0].Kind != models.SignalBollingerSqueeze {
		t.Fatalf("signals = %+v, want a single squeeze", sigs)
	}
	sq := sigs[0]
	if sq.Direction != models.DirectionBreakout {
		t.Errorf("Direction = %s, want breakout", sq.Direction)
	}
	// breakout levels are 1.5x wider: 7.5% stop, 15% target
	if math.Abs(sq.StopPriceUSD-92.5) > 1e-9 || math.Abs(sq.TargetPriceUSD-115) > 1e-9 {
		t.Errorf("levels stop=%v target=%v", sq.StopPriceUSD, sq.TargetPriceUSD)
	}
}

func TestFindSignalsBounceHasPriority(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	ticks := generateTicks(20, func(i int) float64 { return 100 + float64(i%2)*0.1 })

	sigs := a.FindSignals("x", ticks, 99.9)
	bounce := 0
	for _, s := range sigs {
		switch s.Kind {
		case models.SignalBollingerBounce:
			bounce++
		case models.SignalBollingerRejection, models.SignalBollingerSqueeze:
			t.Errorf("second bollinger signal %s", s.Kind)
		}
	}
	if bounce != 1 {
		t.Errorf("bounce signals = %d, want 1", bounce)
	}
}

func TestFindSignalsBreakout(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	ticks := generateTicks(12, func(i int) float64 {
		if i%2 == 0 {
			return 10
		}
		return 20
	})

	sigs := a.FindSignals("x", ticks, 15)
	br, ok := findKind(sigs, models.SignalVolatilityBreakout)
	if !ok {
		t.Fatalf("no breakout in %+v", sigs)
	}
	if br.Strength != models.StrengthStrong || math.Abs(br.Confidence-0.95) > 1e-9 {
		t.Errorf("breakout strength=%s confidence=%v", br.Strength, br.Confidence)
	}
}

func TestMinConfidenceFilter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinConfidence = 0.9
	a := NewAnalyzer(cfg)
	ticks := generateTicks(30, func(i int) float64 { return 100 - float64(i) })

	for _, s := range a.FindSignals("x", ticks, 71) {
		if s.Confidence < 0.9 {
			t.Errorf("signal %s below min confidence: %v", s.Kind, s.Confidence)
		}
	}
}

func TestRiskRewardInfinite(t *testing.T) {
	if rr := RiskReward(10, 12, 10); !math.IsInf(rr, 1) {
		t.Errorf("RiskReward = %v, want +Inf", rr)
	}
}

func TestFindSignalsUptrend(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())
	ticks := generateTicks(30, func(i int) float64 { return 71 + float64(i) })

	sigs := a.FindSignals("x", ticks, 100)

	rsi, ok := findKind(sigs, models.SignalRSIOverbought)
	if !ok {
		t.Fatalf("no RSI overbought signal in %+v", sigs)
	}
	if rsi.Direction != models.DirectionSell || rsi.Strength != models.StrengthStrong {
		t.Errorf("RSI signal direction/strength = %s/%s", rsi.Direction, rsi.Strength)
	}
	if math.Abs(rsi.Confidence-0.95) > 1e-9 {
		t.Errorf("RSI confidence = %v, want 0.95", rsi.Confidence)
	}
	if math.Abs(rsi.StopPriceUSD-105) > 1e-9 || math.Abs(rsi.TargetPriceUSD-90) > 1e-9 {
		t.Errorf("sell levels stop=%v target=%v", rsi.StopPriceUSD, rsi.TargetPriceUSD)
	}

	golden, ok := findKind(sigs, models.SignalGoldenCross)
	if !ok {
		t.Fatalf("no golden cross in %+v", sigs)
	}
	if golden.Direction != models.DirectionBuy || math.Abs(golden.Confidence-0.65) > 1e-9 {
		t.Errorf("golden cross = %+v", golden)
	}
	if math.Abs(golden.StopPriceUSD-95) > 1e-9 || math.Abs(golden.TargetPriceUSD-110) > 1e-9 {
		t.Errorf("buy levels stop=%v target=%v", golden.StopPriceUSD, golden.TargetPriceUSD)
	}
	if _, ok := findKind(sigs, models.SignalDeathCross); ok {
		t.Error("death cross on an uptrend")
	}
}

func TestRSISignalThresholds(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	tests := []struct {
		rsi            float64
		wantFound      bool
		wantKind       models.SignalKind
		wantStrength   models.SignalStrength
		wantConfidence float64
	}{
		{rsi: 50},
		{rsi: 69.9},
		{rsi: 70, wantFound: true, wantKind: models.SignalRSIOverbought, wantStrength: models.StrengthModerate, wantConfidence: 0.5},
		{rsi: 76, wantFound: true, wantKind: models.SignalRSIOverbought, wantStrength: models.StrengthModerate, wantConfidence: 0.7},
		{rsi: 80, wantFound: true, wantKind: models.SignalRSIOverbought, wantStrength: models.StrengthStrong, wantConfidence: 0.5 + 10.0/30},
		{rsi: 30, wantFound: true, wantKind: models.SignalRSIOversold, wantStrength: models.StrengthModerate, wantConfidence: 0.5},
		{rsi: 15, wantFound: true, wantKind: models.SignalRSIOversold, wantStrength: models.StrengthStrong, wantConfidence: 0.5 + 15.0/30},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("rsi %.1f", tt.rsi), func(t *testing.T) {
			sig, found := a.rsiSignal(models.TechnicalIndicators{RSI: tt.rsi}, 10)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if sig.Kind != tt.wantKind || sig.Strength != tt.wantStrength {
				t.Errorf("signal = %s/%s, want %s/%s", sig.Kind, sig.Strength, tt.wantKind, tt.wantStrength)
			}
			if math.Abs(sig.Confidence-tt.wantConfidence) > 1e-9 {
				t.Errorf("confidence = %v, want %v", sig.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestCrossSignal(t *testing.T) {
	a := NewAnalyzer(DefaultConfig())

	tests := []struct {
		name      string
		short     float64
		long      float64
		price     float64
		wantFound bool
		wantKind  models.SignalKind
	}{
		{name: "golden cross", short: 12, long: 10, price: 13, wantFound: true, wantKind: models.SignalGoldenCross},
		{name: "short above long, price below short", short: 12, long: 10, price: 11},
		{name: "death cross", short: 9, long: 10, price: 8, wantFound: true, wantKind: models.SignalDeathCross},
		{name: "short below long, price above short", short: 9, long: 10, price: 9.5},
		{name: "flat averages", short: 10, long: 10, price: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, found := a.crossSignal(models.TechnicalIndicators{SMAShort: tt.short, SMALong: tt.long}, tt.price)
			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v", found, tt.wantFound)
			}
			if found && sig.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", sig.Kind, tt.wantKind)
			}
		})
	}
}
