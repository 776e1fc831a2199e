package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/skinflip/internal/recorder"
	"github.com/Alias1177/skinflip/internal/trading/execution"
	"github.com/Alias1177/skinflip/internal/trading/risk"
	"github.com/Alias1177/skinflip/models"
)

// Scanner produces opportunities for a list of titles.
type Scanner interface {
	Run(ctx context.Context, titles []string) models.OpportunitySet
	LastPrices() map[string]float64
}

// Config holds the cron specs (with seconds) and the watch list.
type Config struct {
	ScanSpec     string        `yaml:"scan_spec"`
	SweepSpec    string        `yaml:"sweep_spec"`
	CycleTimeout time.Duration `yaml:"cycle_timeout"`
	RunOnStart   bool          `yaml:"run_on_start"`
	Titles       []string      `yaml:"titles"`
}

func DefaultConfig() Config {
	return Config{
		ScanSpec:     "0 */5 * * * *",
		SweepSpec:    "30 * * * * *",
		CycleTimeout: 4 * time.Minute,
		RunOnStart:   true,
	}
}

// CycleReport summarises one scan cycle.
type CycleReport struct {
	StartedAt     time.Time                `json:"started_at"`
	FinishedAt    time.Time                `json:"finished_at"`
	Opportunities map[models.Strategy]int  `json:"opportunities"`
	Execution     execution.ProcessSummary `json:"execution"`
	StopLosses    int                      `json:"stop_losses"`
	StopLossSells int                      `json:"stop_loss_sells"`
	TimedOut      int                      `json:"timed_out"`
	Risk          models.RiskMetrics       `json:"risk"`
}

// Runner drives the trading cycle. All access to the engines goes through
// the runner so that cron jobs and the control API never overlap.
type Runner struct {
	cfg      Config
	scanner  Scanner
	risk     *risk.Manager
	exec     *execution.Engine
	recorder recorder.Recorder
	cron     *cron.Cron
	logger   zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	last    *CycleReport
	startup sync.WaitGroup
}

// NewRunner wires a runner. rec may be nil.
func NewRunner(cfg Config, scanner Scanner, rm *risk.Manager, ex *execution.Engine, rec recorder.Recorder) *Runner {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Runner{
		cfg:      cfg,
		scanner:  scanner,
		risk:     rm,
		exec:     ex,
		recorder: rec,
		cron:     cron.New(cron.WithSeconds()),
		logger:   log.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Start registers the cron jobs and starts them. Jobs run until ctx is done
// or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.cfg.ScanSpec, func() { r.RunCycle(ctx) }); err != nil {
		return fmt.Errorf("register scan job: %w", err)
	}
	if _, err := r.cron.AddFunc(r.cfg.SweepSpec, func() { r.Sweep(ctx) }); err != nil {
		return fmt.Errorf("register sweep job: %w", err)
	}
	r.cron.Start()
	r.logger.Info().Str("scan", r.cfg.ScanSpec).Str("sweep", r.cfg.SweepSpec).Int("titles", len(r.cfg.Titles)).Msg("Scheduler started")

	if r.cfg.RunOnStart {
		r.startup.Add(1)
		go func() {
			defer r.startup.Done()
			r.RunCycle(ctx)
		}()
	}
	return nil
}

// Stop stops the cron scheduler and waits for running jobs, including the
// start-up cycle.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	r.startup.Wait()
	r.logger.Info().Msg("Scheduler stopped")
}

// RunCycle runs one scan, stop-loss check, execution and risk pass.
func (r *Runner) RunCycle(ctx context.Context) CycleReport {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.CycleTimeout)
		defer cancel()
	}

	report := CycleReport{StartedAt: r.now()}
	set := r.scanner.Run(ctx, r.cfg.Titles)
	report.Opportunities = set.Counts()

	if err := r.recorder.RecordScan(ctx, recorder.ScanRecord{
		StartedAt:     report.StartedAt,
		FinishedAt:    r.now(),
		Items:         len(r.cfg.Titles),
		Opportunities: set,
	}); err != nil {
		r.logger.Error().Err(err).Msg("Failed to record scan")
	}

	if err := r.risk.Refresh(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("Portfolio refresh failed, using cached positions")
	}
	prices := r.scanner.LastPrices()
	r.risk.UpdatePrices(prices)

	report.StopLosses = len(r.risk.CheckStopLossTriggers(prices))
	// A failed sale leaves the stop pending, so it is retried every cycle.
	for _, sl := range r.risk.PendingStopLosses() {
		if r.sellStopLoss(ctx, sl, prices[sl.Title]) {
			report.StopLossSells++
		}
	}

	report.Execution = r.exec.Process(ctx, set)
	report.Risk = r.risk.CheckPortfolio()
	report.TimedOut = r.exec.SweepTimeouts(ctx)
	report.FinishedAt = r.now()

	r.last = &report
	r.logger.Info().
		Int("opportunities", set.Len()).
		Int("executed", report.Execution.Executed).
		Int("stop_losses", report.StopLosses).
		Str("risk_level", report.Risk.RiskLevel.String()).
		Dur("took", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Cycle finished")
	return report
}

// sellStopLoss sells the asset behind a triggered stop at the current price,
// or at the trigger price when the title was not priced this cycle.
func (r *Runner) sellStopLoss(ctx context.Context, sl models.StopLossOrder, current float64) bool {
	price := sl.TriggerPriceUSD
	if models.IsFinitePositive(current) {
		price = current
	}

	var ledgerID int64
	for _, p := range r.risk.Positions() {
		if p.AssetID == sl.AssetID {
			ledgerID = p.LedgerRecordID
			break
		}
	}

	order := r.exec.CreateSellOrder(sl.Title, sl.AssetID, price, sl.Strategy, ledgerID)
	if order == nil {
		r.logger.Warn().Str("stop_loss_id", sl.ID).Msg("Cannot build stop-loss sell order")
		return false
	}
	r.exec.Submit(order)
	if !r.exec.Execute(ctx, order) {
		r.logger.Warn().Str("stop_loss_id", sl.ID).Str("reason", order.Error).Msg("Stop-loss sell failed, retrying next cycle")
		return false
	}
	r.risk.MarkStopLossExecuted(sl.ID)
	r.risk.RemovePosition(sl.AssetID)
	return true
}

// Sweep times out stale orders.
func (r *Runner) Sweep(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exec.SweepTimeouts(ctx)
}

// LastCycle returns the most recent cycle report.
func (r *Runner) LastCycle() (CycleReport, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return CycleReport{}, false
	}
	return *r.last, true
}

func (r *Runner) ActiveOrders() []models.ExecutionOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exec.ActiveOrders()
}

func (r *Runner) OrderHistory() []models.ExecutionOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exec.History()
}

func (r *Runner) ExecutionStats() execution.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exec.Stats()
}

func (r *Runner) ConfirmOrder(ctx context.Context, id string) (models.ExecutionOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exec.ConfirmOrder(ctx, id)
}

func (r *Runner) CancelOrder(ctx context.Context, id string) (models.ExecutionOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exec.CancelOrder(ctx, id)
}

// The risk manager has its own lock.

func (r *Runner) RiskMetrics() models.RiskMetrics { return r.risk.ComputeMetrics() }
func (r *Runner) Positions() []models.Position { return r.risk.Positions() }
func (r *Runner) StopLosses() []models.StopLossOrder { return r.risk.StopLossOrders() }
func (r *Runner) RiskAlerts() []models.Alert { return r.risk.Alerts() }
