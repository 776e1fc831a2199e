package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Alias1177/skinflip/internal/recorder"
	"github.com/Alias1177/skinflip/internal/trading/execution"
	"github.com/Alias1177/skinflip/internal/trading/risk"
	"github.com/Alias1177/skinflip/models"
)

const chroma = "Chroma 2 Case"

type fakeScanner struct {
	set    models.OpportunitySet
	prices map[string]float64
	calls  int
}

func (f *fakeScanner) Run(context.Context, []string) models.OpportunitySet {
	f.calls++
	return f.set
}

func (f *fakeScanner) LastPrices() map[string]float64 { return f.prices }

type fakeRecorder struct {
	recorder.NoopRecorder
	scans []recorder.ScanRecord
}

func (f *fakeRecorder) RecordScan(_ context.Context, s recorder.ScanRecord) error {
	f.scans = append(f.scans, s)
	return nil
}

func newTestRunner(t *testing.T, scanner Scanner, rec recorder.Recorder) (*Runner, *risk.Manager, *execution.Engine) {
	t.Helper()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	rm := risk.NewManager(risk.DefaultConfig(), nil, nil).WithClock(clock)
	cfg := execution.DefaultConfig()
	cfg.RequireManualConfirmation = false
	ex := execution.NewEngine(cfg, nil, nil, rm, nil).WithClock(clock)

	sc := DefaultConfig()
	sc.Titles = []string{chroma}
	return NewRunner(sc, scanner, rm, ex, rec).WithClock(clock), rm, ex
}

func TestRunCycleBuysThenStopsOut(t *testing.T) {
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	var set models.OpportunitySet
	set.Add(models.NewOpportunity(chroma, 10, 12, 0.6, models.ConfidenceHigh, at,
		models.BasicFlipDetail{SellOfferID: "o1", AssetID: "a1", BuyOrderID: "b1", BuyOrderAmount: 1}))

	scanner := &fakeScanner{set: set, prices: map[string]float64{chroma: 10}}
	rec := &fakeRecorder{}
	runner, rm, _ := newTestRunner(t, scanner, rec)

	if _, ok := runner.LastCycle(); ok {
		t.Fatal("report present before first cycle")
	}

	first := runner.RunCycle(context.Background())
	if first.Execution.Succeeded != 1 || first.Opportunities[models.StrategyBasicFlip] != 1 {
		t.Fatalf("first cycle = %+v", first)
	}
	if len(rm.Positions()) != 1 || len(rm.StopLossOrders()) != 1 {
		t.Fatalf("positions = %d, stops = %d", len(rm.Positions()), len(rm.StopLossOrders()))
	}
	if len(rec.scans) != 1 || rec.scans[0].Items != 1 {
		t.Errorf("recorded scans = %+v", rec.scans)
	}

	scanner.set = models.OpportunitySet{}
	scanner.prices = map[string]float64{chroma: 8.0}
	second := runner.RunCycle(context.Background())

	if second.StopLosses != 1 || second.StopLossSells != 1 {
		t.Fatalf("second cycle stops = %d, sells = %d", second.StopLosses, second.StopLossSells)
	}
	if len(rm.Positions()) != 0 {
		t.Errorf("position not removed after stop-loss sale")
	}
	if sl := rm.StopLossOrders()[0]; !sl.Triggered || !sl.Executed {
		t.Errorf("stop-loss = %+v", sl)
	}

	history := runner.OrderHistory()
	if len(history) != 2 || history[1].Action != models.ActionSell || history[1].Status != models.OrderCompleted {
		t.Errorf("history = %+v", history)
	}
	if history[1].PriceUSD != 8.0 {
		t.Errorf("sell price = %v, want 8", history[1].PriceUSD)
	}

	last, ok := runner.LastCycle()
	if !ok || last.StopLossSells != 1 {
		t.Errorf("last cycle = %+v", last)
	}
}

func TestRunCycleWithoutOpportunities(t *testing.T) {
	scanner := &fakeScanner{}
	runner, _, _ := newTestRunner(t, scanner, nil)

	report := runner.RunCycle(context.Background())
	if scanner.calls != 1 || report.Execution.Created != 0 || report.StopLosses != 0 {
		t.Errorf("report = %+v", report)
	}
	if report.Risk.RiskLevel != models.RiskVeryLow {
		t.Errorf("empty portfolio risk level = %s", report.Risk.RiskLevel)
	}
	if got := runner.ExecutionStats(); got.Active != 0 || !got.PaperTrading {
		t.Errorf("stats = %+v", got)
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	runner, _, _ := newTestRunner(t, &fakeScanner{}, nil)
	runner.cfg.ScanSpec = "every now and then"

	if err := runner.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

type flakyMarket struct {
	sellFailures int
	sells        []int64
}

func (m *flakyMarket) GetSellOffers(context.Context, string, int, string) (models.OffersPage, error) {
	return models.OffersPage{}, nil
}

func (m *flakyMarket) GetBuyOrders(context.Context, string, string, int, string, string, string) (models.BuyOrdersPage, error) {
	return models.BuyOrdersPage{}, nil
}

func (m *flakyMarket) GetFeeSchedule(context.Context, string) (models.FeeSchedule, error) {
	return models.FeeSchedule{}, nil
}

func (m *flakyMarket) GetBalance(context.Context) (map[string]int64, error) {
	return map[string]int64{"USD": 0}, nil
}

func (m *flakyMarket) SubmitBuy(context.Context, string, int64) (models.TradeResult, error) {
	return models.TradeResult{}, errors.New("unexpected buy")
}

func (m *flakyMarket) SubmitSell(_ context.Context, _ string, priceCents int64) (models.TradeResult, error) {
	m.sells = append(m.sells, priceCents)
	if len(m.sells) <= m.sellFailures {
		return models.TradeResult{}, errors.New("502 bad gateway")
	}
	return models.TradeResult{Success: true, TxID: "sell-tx", PriceCents: priceCents}, nil
}

func (m *flakyMarket) CancelOffer(context.Context, string) (models.TradeResult, error) {
	return models.TradeResult{Success: true}, nil
}

func (m *flakyMarket) GetInventory(context.Context, string) ([]models.InventoryAsset, error) {
	return []models.InventoryAsset{{AssetID: "a1", Title: chroma, Tradable: true}}, nil
}

func TestRunCycleRetriesFailedStopLossSell(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	rm := risk.NewManager(risk.DefaultConfig(), nil, nil).WithClock(clock)
	rm.CreateStopLoss(chroma, "a1", 10, models.StrategyBasicFlip)
	rm.AddPosition(models.Position{Title: chroma, AssetID: "a1", Strategy: models.StrategyBasicFlip, PurchasePriceUSD: 10, AcquiredAt: now})

	market := &flakyMarket{sellFailures: 1}
	cfg := execution.DefaultConfig()
	cfg.PaperTrading = false
	cfg.RequireManualConfirmation = false
	ex := execution.NewEngine(cfg, market, nil, rm, nil).WithClock(clock)

	sc := DefaultConfig()
	sc.Titles = []string{chroma}
	scanner := &fakeScanner{prices: map[string]float64{chroma: 5}}
	runner := NewRunner(sc, scanner, rm, ex, nil).WithClock(clock)

	first := runner.RunCycle(context.Background())
	if first.StopLosses != 1 || first.StopLossSells != 0 {
		t.Fatalf("first cycle stops = %d, sells = %d", first.StopLosses, first.StopLossSells)
	}
	if sl := rm.StopLossOrders()[0]; !sl.Triggered || sl.Executed {
		t.Fatalf("stop after failed sale = %+v", sl)
	}
	if len(rm.Positions()) != 1 {
		t.Fatal("position removed although the sale failed")
	}

	scanner.prices = map[string]float64{chroma: 6}
	second := runner.RunCycle(context.Background())
	if second.StopLosses != 0 || second.StopLossSells != 1 {
		t.Fatalf("second cycle stops = %d, sells = %d", second.StopLosses, second.StopLossSells)
	}
	if len(market.sells) != 2 || market.sells[1] != 600 {
		t.Errorf("sell attempts = %v, want retry at 600 cents", market.sells)
	}
	if sl := rm.StopLossOrders()[0]; !sl.Executed {
		t.Errorf("stop not executed after retry: %+v", sl)
	}
	if len(rm.Positions()) != 0 {
		t.Error("position kept after stop-loss sale")
	}

	third := runner.RunCycle(context.Background())
	if third.StopLossSells != 0 || len(market.sells) != 2 {
		t.Errorf("executed stop sold again: sells = %v", market.sells)
	}
}

type gatedScanner struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func (g *gatedScanner) Run(context.Context, []string) models.OpportunitySet {
	g.once.Do(func() { close(g.started) })
	<-g.release
	return models.OpportunitySet{}
}

func (g *gatedScanner) LastPrices() map[string]float64 { return nil }

func TestStopWaitsForStartupCycle(t *testing.T) {
	scanner := &gatedScanner{started: make(chan struct{}), release: make(chan struct{})}
	runner, _, _ := newTestRunner(t, scanner, nil)

	if err := runner.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	<-scanner.started

	stopped := make(chan struct{})
	go func() {
		runner.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the start-up cycle was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(scanner.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the cycle finished")
	}
	if _, ok := runner.LastCycle(); !ok {
		t.Error("start-up cycle report missing")
	}
}
