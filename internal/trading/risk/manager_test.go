package risk

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/Alias1177/skinflip/models"
)

const eps = 1e-9

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(cfg Config, ledger models.InventoryLedger, sink models.AlertSink) *Manager {
	return NewManager(cfg, ledger, sink).WithClock(func() time.Time { return fixedNow })
}

type recordingSink struct {
	alerts []models.Alert
}

func (s *recordingSink) Notify(a models.Alert) { s.alerts = append(s.alerts, a) }

type fakeLedger struct {
	items map[models.InventoryStatus][]models.InventoryItem
	err   error
}

func (l *fakeLedger) RecordPurchase(context.Context, models.PurchaseRecord) (int64, error) {
	return 0, errors.New("not implemented")
}

func (l *fakeLedger) UpdateStatus(context.Context, int64, models.InventoryStatus, map[string]any) error {
	return errors.New("not implemented")
}

func (l *fakeLedger) Summary(context.Context) (models.InventorySummary, error) {
	return models.InventorySummary{}, errors.New("not implemented")
}

func (l *fakeLedger) ItemsByStatus(_ context.Context, status models.InventoryStatus) ([]models.InventoryItem, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.items[status], nil
}

func TestComputeMetricsEmptyPortfolio(t *testing.T) {
	m := newTestManager(DefaultConfig(), nil, nil)
	got := m.ComputeMetrics()

	if got.TotalExposureUSD != 0 || got.RiskScore != 0 || got.PositionCount != 0 {
		t.Errorf("empty portfolio metrics not zero: %+v", got)
	}
	if got.DiversificationRate != 1.0 || got.LiquidityScore != 1.0 {
		t.Errorf("diversification/liquidity = %v/%v, want 1/1", got.DiversificationRate, got.LiquidityScore)
	}
	if got.RiskLevel != models.RiskVeryLow {
		t.Errorf("level = %s, want VERY_LOW", got.RiskLevel)
	}
}

func TestComputeMetricsIsIdempotent(t *testing.T) {
	m := newTestManager(DefaultConfig(), nil, nil)
	m.SetPositions([]models.Position{
		{Title: "AK-47 | Redline (Field-Tested)", PurchasePriceUSD: 12},
		{Title: "★ Karambit | Fade (Factory New)", PurchasePriceUSD: 180, CurrentPriceUSD: 150},
		{Title: "Sticker | Crown (Foil)", PurchasePriceUSD: 40},
	})

	first := m.ComputeMetrics()
	second := m.ComputeMetrics()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("metrics changed between calls:\n%+v\n%+v", first, second)
	}
}

func TestConcentrationIndexEqualPositions(t *testing.T) {
	m := newTestManager(DefaultConfig(), nil, nil)
	m.SetPositions([]models.Position{
		{Title: "AK-47 | Redline (Field-Tested)", PurchasePriceUSD: 10},
		{Title: "AWP | Asiimov (Field-Tested)", PurchasePriceUSD: 10},
		{Title: "Glock-18 | Fade (Factory New)", PurchasePriceUSD: 10},
		{Title: "Chroma 2 Case", PurchasePriceUSD: 10},
	})

	got := m.ComputeMetrics()
	if math.Abs(got.ConcentrationIndex-0.25) > eps {
		t.Errorf("concentration = %v, want 0.25", got.ConcentrationIndex)
	}
	if math.Abs(got.LargestPositionPct-0.25) > eps {
		t.Errorf("largest pct = %v, want 0.25", got.LargestPositionPct)
	}
	if got.TotalExposureUSD != 40 || got.PositionCount != 4 {
		t.Errorf("exposure/count = %v/%d, want 40/4", got.TotalExposureUSD, got.PositionCount)
	}
	if got.DiversificationRate != 0.9 {
		t.Errorf("diversification = %v, want 0.9", got.DiversificationRate)
	}
}

func TestComputeMetricsVaRAndDrawdown(t *testing.T) {
	m := newTestManager(DefaultConfig(), nil, nil)
	m.SetPositions([]models.Position{
		{Title: "Chroma 2 Case", PurchasePriceUSD: 10, CurrentPriceUSD: 5},
	})

	got := m.ComputeMetrics()
	// $5 case: tier volatility 0.2, case volatility 0.2
	wantVaR := 5 * 0.2 * 1.645 * 0.1
	if math.Abs(got.VaR95USD-wantVaR) > eps {
		t.Errorf("VaR = %v, want %v", got.VaR95USD, wantVaR)
	}
	if math.Abs(got.ExpectedShortfall-wantVaR*1.25) > eps {
		t.Errorf("ES = %v, want %v", got.ExpectedShortfall, wantVaR*1.25)
	}
	if math.Abs(got.Drawdown-0.5) > eps {
		t.Errorf("drawdown = %v, want 0.5", got.Drawdown)
	}
	if got.RiskScore < 0 || got.RiskScore > 1 {
		t.Errorf("risk score %v outside [0,1]", got.RiskScore)
	}
}

func TestEvaluateTradeHardLimits(t *testing.T) {
	tests := []struct {
		name      string
		positions []models.Position
		title     string
		price     float64
		wantScore float64
	}{
		{
			name:      "non-positive price",
			title:     "AK-47 | Redline (Field-Tested)",
			price:     0,
			wantScore: 1.0,
		},
		{
			name:      "NaN price",
			title:     "AK-47 | Redline (Field-Tested)",
			price:     math.NaN(),
			wantScore: 1.0,
		},
		{
			name:      "total exposure",
			positions: []models.Position{{Title: "AWP | Dragon Lore (Factory New)", PurchasePriceUSD: 950}},
			title:     "AK-47 | Redline (Field-Tested)",
			price:     100,
			wantScore: 1.0,
		},
		{
			name:      "single position cap",
			title:     "AK-47 | Redline (Field-Tested)",
			price:     250,
			wantScore: 0.9,
		},
		{
			name: "same title share of exposure",
			positions: []models.Position{
				{Title: "AK-47 | Redline (Field-Tested)", PurchasePriceUSD: 30},
				{Title: "AWP | Asiimov (Field-Tested)", PurchasePriceUSD: 80},
			},
			title:     "AK-47 | Redline (Field-Tested)",
			price:     20,
			wantScore: 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(DefaultConfig(), nil, nil)
			m.SetPositions(tt.positions)
			before := m.Positions()

			got := m.EvaluateTrade(tt.title, tt.price, models.StrategyBasicFlip)
			if got.Approved {
				t.Fatalf("trade approved, want rejection: %+v", got)
			}
			if got.RiskScore != tt.wantScore {
				t.Errorf("score = %v, want %v", got.RiskScore, tt.wantScore)
			}
			if got.Reason == "" {
				t.Error("rejection has no reason")
			}
			if !reflect.DeepEqual(before, m.Positions()) {
				t.Error("EvaluateTrade mutated the portfolio")
			}
		})
	}
}

func TestEvaluateTradeSmallFirstPurchase(t *testing.T) {
	m := newTestManager(DefaultConfig(), nil, nil)

	got := m.EvaluateTrade("AK-47 | Redline (Field-Tested)", 10, models.StrategyBasicFlip)

	// item 0.2+0.1+0, portfolio 0, diversification impact 1-0.2
	want := 0.4*0.3 + 0.3*0.8
	if !got.Approved {
		t.Fatalf("trade rejected: %+v", got)
	}
	if math.Abs(got.RiskScore-want) > eps {
		t.Errorf("score = %v, want %v", got.RiskScore, want)
	}
	if got.RiskLevel != models.RiskLow {
		t.Errorf("level = %s, want LOW", got.RiskLevel)
	}
	if len(m.Positions()) != 0 {
		t.Error("EvaluateTrade added a position")
	}
}

func TestEvaluateTradeBands(t *testing.T) {
	wide := DefaultConfig()
	wide.MaxSinglePositionUSD = 1000
	wide.ConcentrationMinExposureUSD = 10000

	tests := []struct {
		name         string
		title        string
		price        float64
		strategy     models.Strategy
		wantApproved bool
		wantReason   string
		wantScore    float64
	}{
		{
			// item 0.1, impact 0.8
			name:         "cheap case",
			title:        "Chroma 2 Case",
			price:        5,
			strategy:     models.StrategyBasicFlip,
			wantApproved: true,
			wantReason:   "approved: low risk",
			wantScore:    0.4*0.1 + 0.3*0.8,
		},
		{
			// item 0.3, impact 0.8
			name:         "mid-tier rifle",
			title:        "AK-47 | Redline (Field-Tested)",
			price:        10,
			strategy:     models.StrategyBasicFlip,
			wantApproved: true,
			wantReason:   "approved with monitoring: moderate risk",
			wantScore:    0.4*0.3 + 0.3*0.8,
		},
		{
			// item 0.5+0.2+0.3, impact 0.8
			name:       "expensive knife on volatility",
			title:      "★ Karambit | Fade (Factory New)",
			price:      500,
			strategy:   models.StrategyVolatility,
			wantReason: "rejected: high risk, manual review required",
			wantScore:  0.4*1.0 + 0.3*0.8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(wide, nil, nil)
			got := m.EvaluateTrade(tt.title, tt.price, tt.strategy)
			if got.Approved != tt.wantApproved || got.Reason != tt.wantReason {
				t.Errorf("decision = %+v, want approved=%v %q", got, tt.wantApproved, tt.wantReason)
			}
			if math.Abs(got.RiskScore-tt.wantScore) > 1e-6 {
				t.Errorf("score = %v, want %v", got.RiskScore, tt.wantScore)
			}
		})
	}
}

func TestDecideBands(t *testing.T) {
	tests := []struct {
		composite    float64
		wantApproved bool
		wantReason   string
	}{
		{0, true, "approved: low risk"},
		{0.3, true, "approved: low risk"},
		{0.31, true, "approved with monitoring: moderate risk"},
		{0.6, true, "approved with monitoring: moderate risk"},
		{0.61, false, "rejected: high risk, manual review required"},
		{0.8, false, "rejected: high risk, manual review required"},
		{0.81, false, "rejected: risk too high"},
		{1, false, "rejected: risk too high"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.composite), func(t *testing.T) {
			got := decide(tt.composite)
			if got.Approved != tt.wantApproved || got.Reason != tt.wantReason {
				t.Errorf("decide(%v) = %+v, want approved=%v %q", tt.composite, got, tt.wantApproved, tt.wantReason)
			}
			if got.RiskScore != tt.composite || got.RiskLevel != LevelFor(tt.composite) {
				t.Errorf("decide(%v) score/level = %v/%s", tt.composite, got.RiskScore, got.RiskLevel)
			}
		})
	}
}

func TestEvaluateTradeIsIdempotent(t *testing.T) {
	m := newTestManager(DefaultConfig(), nil, nil)
	m.SetPositions([]models.Position{
		{Title: "AWP | Asiimov (Field-Tested)", PurchasePriceUSD: 80, CurrentPriceUSD: 70},
		{Title: "Chroma 2 Case", PurchasePriceUSD: 20},
	})
	before := m.Positions()

	first := m.EvaluateTrade("AK-47 | Redline (Field-Tested)", 15, models.StrategySnipe)
	second := m.EvaluateTrade("AK-47 | Redline (Field-Tested)", 15, models.StrategySnipe)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second evaluation differs: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(before, m.Positions()) {
		t.Error("EvaluateTrade mutated the portfolio")
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score float64
		want  models.RiskLevel
	}{
		{0, models.RiskVeryLow},
		{0.2, models.RiskVeryLow},
		{0.35, models.RiskLow},
		{0.6, models.RiskMedium},
		{0.7, models.RiskHigh},
		{0.9, models.RiskVeryHigh},
		{0.99, models.RiskExtreme},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.score); got != tt.want {
			t.Errorf("LevelFor(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestStopLossPct(t *testing.T) {
	m := newTestManager(DefaultConfig(), nil, nil)

	tests := []struct {
		name     string
		title    string
		price    float64
		strategy models.Strategy
		want     float64
	}{
		{"cheap rifle flip", "AK-47 | Redline (Field-Tested)", 10, models.StrategyBasicFlip, 0.17},
		{"expensive knife volatility", "★ Karambit | Fade (Factory New)", 2000, models.StrategyVolatility, 0.24},
		{"clamped to max", "Sticker | Crown (Foil)", 1, models.StrategyVolatility, 0.30},
		{"case snipe", "Chroma 2 Case", 20, models.StrategySnipe, 0.17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.StopLossPct(tt.title, tt.price, tt.strategy)
			if math.Abs(got-tt.want) > eps {
				t.Errorf("StopLossPct = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStopLossTriggersOnce(t *testing.T) {
	sink := &recordingSink{}
	m := newTestManager(DefaultConfig(), nil, sink)
	title := "AK-47 | Redline (Field-Tested)"

	sl := m.CreateStopLoss(title, "asset-1", 10, models.StrategyBasicFlip)
	if sl.ID == "" {
		t.Fatal("stop-loss has no id")
	}
	if math.Abs(sl.StopPriceUSD-8.3) > 1e-6 {
		t.Fatalf("stop price = %v, want 8.3", sl.StopPriceUSD)
	}

	if got := m.CheckStopLossTriggers(map[string]float64{title: 8.5}); len(got) != 0 {
		t.Fatalf("triggered above stop: %+v", got)
	}
	if got := m.CheckStopLossTriggers(map[string]float64{"Chroma 2 Case": 1}); len(got) != 0 {
		t.Fatalf("triggered for unrelated title: %+v", got)
	}

	got := m.CheckStopLossTriggers(map[string]float64{title: 8.0})
	if len(got) != 1 || got[0].ID != sl.ID || got[0].TriggerPriceUSD != 8.0 {
		t.Fatalf("trigger = %+v, want stop %s at 8.0", got, sl.ID)
	}
	if again := m.CheckStopLossTriggers(map[string]float64{title: 7.0}); len(again) != 0 {
		t.Errorf("stop triggered twice: %+v", again)
	}

	alerts := m.Alerts()
	if len(alerts) != 1 || alerts[0].Type != models.AlertTypeStopLoss || alerts[0].Level != models.AlertHigh {
		t.Errorf("alerts = %+v, want one HIGH stop-loss alert", alerts)
	}
	if len(sink.alerts) != 1 {
		t.Errorf("sink received %d alerts, want 1", len(sink.alerts))
	}

	if pending := m.PendingStopLosses(); len(pending) != 1 || pending[0].ID != sl.ID {
		t.Fatalf("pending = %+v, want the triggered stop", pending)
	}
	if pending := m.PendingStopLosses(); len(pending) != 1 {
		t.Errorf("unsold stop dropped from pending: %+v", pending)
	}

	if !m.MarkStopLossExecuted(sl.ID) {
		t.Error("MarkStopLossExecuted returned false for a triggered stop")
	}
	if pending := m.PendingStopLosses(); len(pending) != 0 {
		t.Errorf("executed stop still pending: %+v", pending)
	}
	if m.MarkStopLossExecuted(sl.ID) {
		t.Error("stop executed twice")
	}
	if orders := m.StopLossOrders(); len(orders) != 1 || !orders[0].Executed {
		t.Errorf("orders = %+v", orders)
	}
}

func TestAlertHistoryCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AlertHistoryLimit = 3
	sink := &recordingSink{}
	m := newTestManager(cfg, nil, sink)

	for i := 0; i < 5; i++ {
		m.RecordAlert(models.Alert{Level: models.AlertLow, Type: "test", Message: fmt.Sprintf("alert %d", i)})
	}

	alerts := m.Alerts()
	if len(alerts) != 3 {
		t.Fatalf("kept %d alerts, want 3", len(alerts))
	}
	if alerts[0].Message != "alert 2" || alerts[2].Message != "alert 4" {
		t.Errorf("kept %q..%q, want alert 2..alert 4", alerts[0].Message, alerts[2].Message)
	}
	if !alerts[0].Timestamp.Equal(fixedNow) {
		t.Errorf("timestamp = %v, want %v", alerts[0].Timestamp, fixedNow)
	}
	if len(sink.alerts) != 5 {
		t.Errorf("sink received %d alerts, want 5", len(sink.alerts))
	}
}

func TestCheckPortfolioAlertsOnHighRisk(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AlertRiskScore = 0.1
	m := newTestManager(cfg, nil, nil)
	m.SetPositions([]models.Position{
		{Title: "★ Karambit | Fade (Factory New)", PurchasePriceUSD: 900, CurrentPriceUSD: 600},
	})

	metrics := m.CheckPortfolio()
	if metrics.RiskScore < cfg.AlertRiskScore {
		t.Fatalf("risk score %v below alert threshold", metrics.RiskScore)
	}
	alerts := m.Alerts()
	if len(alerts) != 1 || alerts[0].Type != models.AlertTypeHighRisk {
		t.Errorf("alerts = %+v, want one high-risk alert", alerts)
	}
}

func TestRefreshLoadsHeldInventory(t *testing.T) {
	ledger := &fakeLedger{items: map[models.InventoryStatus][]models.InventoryItem{
		models.InventoryPurchased: {{ID: 1, Title: "AK-47 | Redline (Field-Tested)", PurchasePriceUSD: 10}},
		models.InventoryListed:    {{ID: 2, Title: "Chroma 2 Case", PurchasePriceUSD: 2}},
		models.InventorySold:      {{ID: 3, Title: "AWP | Asiimov (Field-Tested)", PurchasePriceUSD: 50}},
	}}
	m := newTestManager(DefaultConfig(), ledger, nil)
	m.SetPositions([]models.Position{{Title: "AK-47 | Redline (Field-Tested)", PurchasePriceUSD: 10, CurrentPriceUSD: 12, LedgerRecordID: 1}})

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	positions := m.Positions()
	if len(positions) != 2 {
		t.Fatalf("got %d positions, want 2", len(positions))
	}
	if positions[0].CurrentPriceUSD != 12 {
		t.Errorf("marked price lost on refresh: %+v", positions[0])
	}

	ledger.err = errors.New("db down")
	if err := m.Refresh(context.Background()); err == nil {
		t.Error("expected ledger error")
	}
	if len(m.Positions()) != 2 {
		t.Error("failed refresh replaced the portfolio")
	}
}

func TestRemovePosition(t *testing.T) {
	m := newTestManager(DefaultConfig(), nil, nil)
	m.SetPositions([]models.Position{
		{Title: "Chroma 2 Case", AssetID: "a1", PurchasePriceUSD: 10},
		{Title: "Chroma 2 Case", AssetID: "a2", PurchasePriceUSD: 11},
	})

	if !m.RemovePosition("a1") {
		t.Fatal("a1 not removed")
	}
	if m.RemovePosition("a1") {
		t.Error("a1 removed twice")
	}
	if got := m.Positions(); len(got) != 1 || got[0].AssetID != "a2" {
		t.Errorf("positions = %+v", got)
	}
}
