package execution

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/skinflip/models"
)

// RiskGate is the part of the risk manager the engine consults.
type RiskGate interface {
	EvaluateTrade(title string, priceUSD float64, strategy models.Strategy) models.TradeDecision
	CreateStopLoss(title, assetID string, purchasePriceUSD float64, strategy models.Strategy) models.StopLossOrder
	AddPosition(p models.Position)
}

// Journal persists orders once they leave the active list.
type Journal interface {
	RecordOrder(ctx context.Context, order models.ExecutionOrder) error
}

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrOrderNotPending = errors.New("order is not pending")
)

// ProcessSummary aggregates one Process call.
type ProcessSummary struct {
	Created    int                     `json:"created"`
	Executed   int                     `json:"executed"`
	Succeeded  int                     `json:"succeeded"`
	Failed     int                     `json:"failed"`
	Pending    int                     `json:"pending"`
	Skipped    int                     `json:"skipped"`
	Duplicates int                     `json:"duplicates"`
	ByStrategy map[models.Strategy]int `json:"by_strategy"`
	Errors     []string                `json:"errors,omitempty"`
}

// Stats is a point-in-time view of the engine.
type Stats struct {
	Active        int       `json:"active"`
	Completed     int       `json:"completed"`
	Failed        int       `json:"failed"`
	Cancelled     int       `json:"cancelled"`
	TimedOut      int       `json:"timed_out"`
	DailySpentUSD float64   `json:"daily_spent_usd"`
	DailyLimitUSD float64   `json:"daily_limit_usd"`
	LastResetDate time.Time `json:"last_reset_date"`
	PaperTrading  bool      `json:"paper_trading"`
}

// Engine turns opportunities into orders and executes them. It is not safe
// for concurrent use; callers serialise access.
type Engine struct {
	cfg     Config
	market  models.MarketplaceClient
	ledger  models.InventoryLedger
	risk    RiskGate
	journal Journal
	sink    models.AlertSink
	logger  zerolog.Logger
	now     func() time.Time

	active     []*models.ExecutionOrder
	history    []*models.ExecutionOrder
	dailySpent float64
	lastReset  time.Time
}

// NewEngine wires an engine. risk, journal and sink may be nil.
func NewEngine(cfg Config, market models.MarketplaceClient, ledger models.InventoryLedger, risk RiskGate, sink models.AlertSink) *Engine {
	e := &Engine{
		cfg:    cfg,
		market: market,
		ledger: ledger,
		risk:   risk,
		sink:   sink,
		logger: log.With().Str("component", "execution_engine").Logger(),
		now:    time.Now,
	}
	e.lastReset = utcDate(e.now())
	return e
}

// WithClock replaces the time source.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	e.lastReset = utcDate(now())
	return e
}

// WithJournal attaches a journal for archived orders.
func (e *Engine) WithJournal(j Journal) *Engine {
	e.journal = j
	return e
}

// Config returns the engine policy.
func (e *Engine) Config() Config { return e.cfg }

// CreateOrderFromOpportunity builds a PENDING buy order. It returns nil for
// unknown opportunity shapes and when the asset or price is missing.
func (e *Engine) CreateOrderFromOpportunity(opp models.Opportunity) *models.ExecutionOrder {
	var assetID string
	switch d := opp.Detail.(type) {
	case models.BasicFlipDetail:
		assetID = d.AssetID
	case models.SnipeDetail:
		assetID = d.AssetID
	case models.AttributeFlipDetail:
		assetID = d.AssetID
	case models.TradeLockDetail:
		assetID = d.AssetID
	case models.VolatilityDetail:
		assetID = d.AssetID
	default:
		return nil
	}
	if assetID == "" || !models.IsFinitePositive(opp.BuyPriceUSD) {
		return nil
	}

	return &models.ExecutionOrder{
		ID:          uuid.NewString(),
		Strategy:    opp.Strategy,
		Action:      models.ActionBuy,
		Title:       opp.Title,
		AssetID:     assetID,
		PriceUSD:    opp.BuyPriceUSD,
		Opportunity: opp,
		RiskLevel:   riskLevelForProfit(opp.ProfitPct),
		CreatedAt:   e.now(),
		Status:      models.OrderPending,
	}
}

// CreateSellOrder builds a PENDING sell order for a held asset.
func (e *Engine) CreateSellOrder(title, assetID string, priceUSD float64, strategy models.Strategy, ledgerID int64) *models.ExecutionOrder {
	if assetID == "" || !models.IsFinitePositive(priceUSD) {
		return nil
	}
	return &models.ExecutionOrder{
		ID:             uuid.NewString(),
		Strategy:       strategy,
		Action:         models.ActionSell,
		Title:          title,
		AssetID:        assetID,
		PriceUSD:       priceUSD,
		RiskLevel:      models.RiskLow,
		CreatedAt:      e.now(),
		Status:         models.OrderPending,
		LedgerRecordID: ledgerID,
	}
}

func riskLevelForProfit(pct float64) models.RiskLevel {
	switch {
	case pct >= 0.20:
		return models.RiskLow
	case pct >= 0.10:
		return models.RiskMedium
	case pct >= 0.05:
		return models.RiskHigh
	}
	return models.RiskVeryHigh
}

// ShouldAutoExecute decides whether an order runs without confirmation.
func (e *Engine) ShouldAutoExecute(order *models.ExecutionOrder) bool {
	if e.cfg.RequireManualConfirmation {
		return order.PriceUSD <= e.cfg.AutoConfirmMaxUSD
	}
	return order.RiskLevel != models.RiskVeryHigh
}

// Submit registers an order as active without executing it.
func (e *Engine) Submit(order *models.ExecutionOrder) {
	e.active = append(e.active, order)
}

// Execute runs the gate checks and then the trade. It reports success and
// never panics; every failure leaves the order FAILED with a reason.
func (e *Engine) Execute(ctx context.Context, order *models.ExecutionOrder) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("unexpected error: %v", r)
			order.Fail(reason, e.now())
			e.logger.Error().Str("order_id", order.ID).Str("title", order.Title).Interface("panic", r).Msg("Order execution crashed")
			e.alert(models.AlertCritical, models.AlertTypeOrderError, reason, order)
			ok = false
		}
	}()

	if err := order.Transition(models.OrderExecuting, e.now()); err != nil {
		e.logger.Warn().Err(err).Str("order_id", order.ID).Msg("Order cannot be executed")
		return false
	}

	if reason := e.checkLimits(order); reason != "" {
		return e.reject(order, models.AlertTypeOrderRejected, reason)
	}

	if e.risk != nil && order.Action == models.ActionBuy {
		decision := e.risk.EvaluateTrade(order.Title, order.PriceUSD, order.Strategy)
		if !decision.Approved {
			return e.reject(order, models.AlertTypeTradeRejected, "risk: "+decision.Reason)
		}
	}

	result, err := e.submit(ctx, order)
	if err != nil {
		reason := err.Error()
		order.Fail(reason, e.now())
		e.logger.Error().Err(err).Str("order_id", order.ID).Str("title", order.Title).Msg("Marketplace call failed")
		e.alert(models.AlertHigh, models.AlertTypeOrderFailed, reason, order)
		return false
	}
	if !result.Success {
		reason := result.Message
		if reason == "" {
			reason = "marketplace rejected the order"
		}
		order.Fail(reason, e.now())
		e.logger.Warn().Str("order_id", order.ID).Str("title", order.Title).Str("reason", reason).Msg("Order failed")
		e.alert(models.AlertHigh, models.AlertTypeOrderFailed, reason, order)
		return false
	}

	e.complete(ctx, order, result)
	return true
}

// checkLimits runs the policy gates in order and returns the first failure.
func (e *Engine) checkLimits(order *models.ExecutionOrder) string {
	e.resetIfNewDay()

	if order.Action == models.ActionBuy {
		if e.dailySpent+order.PriceUSD > e.cfg.DailyLimitUSD {
			return fmt.Sprintf("daily limit: %.2f spent, %.2f requested, limit %.2f", e.dailySpent, order.PriceUSD, e.cfg.DailyLimitUSD)
		}
		if order.PriceUSD > e.cfg.MaxTradeUSD {
			return fmt.Sprintf("trade size %.2f exceeds max %.2f", order.PriceUSD, e.cfg.MaxTradeUSD)
		}
	}
	// Sells release capital and exit positions; buy policy does not apply.
	if order.Action == models.ActionSell {
		return ""
	}
	if e.concurrentOrders(order) >= e.cfg.MaxConcurrentOrders {
		return fmt.Sprintf("concurrent order limit %d reached", e.cfg.MaxConcurrentOrders)
	}
	if !e.cfg.strategyEnabled(order.Strategy) {
		return fmt.Sprintf("strategy %s disabled", order.Strategy)
	}
	if order.Opportunity.ProfitUSD < e.cfg.MinProfitUSD {
		return fmt.Sprintf("profit %.2f below minimum %.2f", order.Opportunity.ProfitUSD, e.cfg.MinProfitUSD)
	}
	if e.blacklisted(order.Title) {
		return "item is blacklisted"
	}
	return ""
}

func (e *Engine) concurrentOrders(except *models.ExecutionOrder) int {
	n := 0
	for _, o := range e.active {
		if o != except && !o.Status.Terminal() {
			n++
		}
	}
	return n
}

// openOrderFor returns the non-terminal active order for an asset, if any.
func (e *Engine) openOrderFor(assetID string) *models.ExecutionOrder {
	for _, o := range e.active {
		if o.AssetID == assetID && !o.Status.Terminal() {
			return o
		}
	}
	return nil
}

func (e *Engine) blacklisted(title string) bool {
	lower := strings.ToLower(title)
	for _, b := range e.cfg.Blacklist {
		if b != "" && strings.Contains(lower, strings.ToLower(b)) {
			return true
		}
	}
	return false
}

// resetIfNewDay clears the daily spend once the UTC date has changed.
func (e *Engine) resetIfNewDay() {
	today := utcDate(e.now())
	if !e.lastReset.Equal(today) {
		e.logger.Info().Float64("spent", e.dailySpent).Time("date", today).Msg("Daily limit reset")
		e.dailySpent = 0
		e.lastReset = today
	}
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// submit performs the trade, or simulates it in paper mode.
func (e *Engine) submit(ctx context.Context, order *models.ExecutionOrder) (models.TradeResult, error) {
	cents := models.USDToCents(order.PriceUSD)

	if e.cfg.PaperTrading {
		e.logger.Info().
			Str("order_id", order.ID).
			Str("action", order.Action.String()).
			Str("title", order.Title).
			Float64("price", order.PriceUSD).
			Msg("Paper trade")
		return models.TradeResult{
			Success:    true,
			OfferID:    order.AssetID,
			TxID:       "paper-" + order.ID,
			PriceCents: cents,
			Message:    "paper trade",
		}, nil
	}

	if order.Action == models.ActionSell {
		assetID, err := e.sellableAsset(ctx, order)
		if err != nil {
			return models.TradeResult{Message: err.Error()}, nil
		}
		order.AssetID = assetID
		return e.market.SubmitSell(ctx, assetID, cents)
	}

	balances, err := e.market.GetBalance(ctx)
	if err != nil {
		return models.TradeResult{}, fmt.Errorf("checking balance: %w", err)
	}
	if have := balances[e.cfg.Currency]; have < cents {
		return models.TradeResult{
			Message: fmt.Sprintf("insufficient balance: have %.2f %s, need %.2f", models.CentsToUSD(have), e.cfg.Currency, order.PriceUSD),
		}, nil
	}

	before, known := e.inventoryIDs(ctx, order.Title)
	result, err := e.market.SubmitBuy(ctx, order.AssetID, cents)
	if err != nil || !result.Success || result.AssetID != "" || !known {
		return result, err
	}
	result.AssetID = e.deliveredAsset(ctx, order.Title, before)
	return result, nil
}

// inventoryIDs returns the ids currently held for a title. known is false
// when the inventory could not be read.
func (e *Engine) inventoryIDs(ctx context.Context, title string) (ids map[string]bool, known bool) {
	assets, err := e.market.GetInventory(ctx, title)
	if err != nil {
		e.logger.Warn().Err(err).Str("title", title).Msg("Inventory lookup failed")
		return nil, false
	}
	ids = make(map[string]bool, len(assets))
	for _, a := range assets {
		ids[a.AssetID] = true
	}
	return ids, true
}

// deliveredAsset finds the asset a buy added to the inventory. It returns ""
// unless exactly one new asset of the title appeared.
func (e *Engine) deliveredAsset(ctx context.Context, title string, before map[string]bool) string {
	after, known := e.inventoryIDs(ctx, title)
	if !known {
		return ""
	}
	var found string
	for id := range after {
		if before[id] {
			continue
		}
		if found != "" {
			return ""
		}
		found = id
	}
	return found
}

// sellableAsset picks the inventory asset to list for a sell order: the
// order's own asset when it is held, otherwise the only tradable asset of
// the title. An unreadable inventory falls back to the order's asset.
func (e *Engine) sellableAsset(ctx context.Context, order *models.ExecutionOrder) (string, error) {
	assets, err := e.market.GetInventory(ctx, order.Title)
	if err != nil {
		e.logger.Warn().Err(err).Str("title", order.Title).Msg("Inventory lookup failed, selling by recorded asset")
		return order.AssetID, nil
	}
	var tradable []string
	for _, a := range assets {
		if a.AssetID == order.AssetID {
			return a.AssetID, nil
		}
		if a.Tradable {
			tradable = append(tradable, a.AssetID)
		}
	}
	if len(tradable) == 1 {
		e.logger.Info().Str("order_id", order.ID).Str("recorded", order.AssetID).Str("asset_id", tradable[0]).Msg("Selling the held asset of this title")
		return tradable[0], nil
	}
	return "", fmt.Errorf("asset %s not in inventory (%d tradable of this title)", order.AssetID, len(tradable))
}

func (e *Engine) complete(ctx context.Context, order *models.ExecutionOrder, result models.TradeResult) {
	if err := order.Transition(models.OrderCompleted, e.now()); err != nil {
		e.logger.Error().Err(err).Str("order_id", order.ID).Msg("Cannot complete order")
		return
	}
	order.ExecutedPriceUSD = order.PriceUSD
	if result.PriceCents > 0 {
		order.ExecutedPriceUSD = models.CentsToUSD(result.PriceCents)
	}
	order.MarketOfferID = result.TxID
	if order.MarketOfferID == "" {
		order.MarketOfferID = result.OfferID
	}

	order.HeldAssetID = order.AssetID
	if result.AssetID != "" {
		order.HeldAssetID = result.AssetID
	}

	if order.Action == models.ActionBuy {
		if !e.cfg.PaperTrading && result.AssetID == "" {
			e.logger.Warn().Str("order_id", order.ID).Str("title", order.Title).Msg("Bought asset not found in inventory yet, tracking it by offer id")
		}
		e.dailySpent += order.ExecutedPriceUSD
		e.recordPurchase(ctx, order)
		if e.risk != nil {
			e.risk.CreateStopLoss(order.Title, order.HeldAssetID, order.ExecutedPriceUSD, order.Strategy)
			e.risk.AddPosition(models.Position{
				Title:            order.Title,
				AssetID:          order.HeldAssetID,
				Strategy:         order.Strategy,
				PurchasePriceUSD: order.ExecutedPriceUSD,
				LedgerRecordID:   order.LedgerRecordID,
				AcquiredAt:       order.CompletedAt,
			})
		}
	} else {
		e.recordSale(ctx, order)
	}

	level := models.AlertMedium
	if order.ExecutedPriceUSD > e.cfg.MaxTradeUSD/2 {
		level = models.AlertHigh
	}
	e.logger.Info().
		Str("order_id", order.ID).
		Str("action", order.Action.String()).
		Str("title", order.Title).
		Str("strategy", order.Strategy.String()).
		Float64("price", order.ExecutedPriceUSD).
		Float64("daily_spent", e.dailySpent).
		Msg("Order completed")
	e.alert(level, models.AlertTypeOrderCompleted,
		fmt.Sprintf("%s %s at %.2f", order.Action, order.Title, order.ExecutedPriceUSD), order)
}

func (e *Engine) recordPurchase(ctx context.Context, order *models.ExecutionOrder) {
	if e.ledger == nil {
		return
	}
	source := "marketplace"
	if e.cfg.PaperTrading {
		source = "paper"
	}
	id, err := e.ledger.RecordPurchase(ctx, models.PurchaseRecord{
		Title:    order.Title,
		PriceUSD: order.ExecutedPriceUSD,
		Source:   source,
		Strategy: order.Strategy,
		AssetID:  order.HeldAssetID,
		Notes:    fmt.Sprintf("order %s, offer %s, expected profit %.2f", order.ID, order.AssetID, order.Opportunity.ProfitUSD),
	})
	if err != nil {
		e.logger.Error().Err(err).Str("order_id", order.ID).Msg("Ledger write failed after purchase")
		e.alert(models.AlertHigh, models.AlertTypeLedgerError, "purchase not recorded: "+err.Error(), order)
		return
	}
	order.LedgerRecordID = id
}

func (e *Engine) recordSale(ctx context.Context, order *models.ExecutionOrder) {
	if e.ledger == nil || order.LedgerRecordID == 0 {
		return
	}
	err := e.ledger.UpdateStatus(ctx, order.LedgerRecordID, models.InventorySold, map[string]any{
		models.LedgerFieldSoldPrice: order.ExecutedPriceUSD,
	})
	if err != nil {
		e.logger.Error().Err(err).Str("order_id", order.ID).Msg("Ledger write failed after sale")
		e.alert(models.AlertHigh, models.AlertTypeLedgerError, "sale not recorded: "+err.Error(), order)
	}
}

func (e *Engine) reject(order *models.ExecutionOrder, alertType, reason string) bool {
	order.Fail(reason, e.now())
	e.logger.Info().
		Str("order_id", order.ID).
		Str("title", order.Title).
		Str("strategy", order.Strategy.String()).
		Str("reason", reason).
		Msg("Order rejected")
	e.alert(models.AlertMedium, alertType, reason, order)
	return false
}

func (e *Engine) alert(level models.AlertLevel, alertType, message string, order *models.ExecutionOrder) {
	if e.sink == nil {
		return
	}
	e.sink.Notify(models.Alert{
		Level:   level,
		Type:    alertType,
		Message: message,
		Data: map[string]any{
			"order_id": order.ID,
			"title":    order.Title,
			"strategy": order.Strategy.String(),
			"action":   order.Action.String(),
			"price":    order.PriceUSD,
		},
		Timestamp: e.now(),
	})
}

// Process creates an order for every opportunity, in strategy order, and
// executes the ones eligible for auto-execution. Orders needing
// confirmation stay PENDING in the active list.
func (e *Engine) Process(ctx context.Context, set models.OpportunitySet) ProcessSummary {
	summary := ProcessSummary{ByStrategy: make(map[models.Strategy]int)}

	for _, st := range models.AllStrategies {
		for _, opp := range set.ForStrategy(st) {
			order := e.CreateOrderFromOpportunity(opp)
			if order == nil {
				summary.Skipped++
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s %s: no order could be built", st, opp.Title))
				continue
			}
			if open := e.openOrderFor(order.AssetID); open != nil {
				summary.Duplicates++
				e.logger.Debug().
					Str("title", order.Title).
					Str("asset_id", order.AssetID).
					Str("open_order", open.ID).
					Msg("Asset already has an open order")
				continue
			}
			e.Submit(order)
			summary.Created++
			summary.ByStrategy[st]++

			if !e.ShouldAutoExecute(order) {
				summary.Pending++
				e.logger.Info().
					Str("order_id", order.ID).
					Str("title", order.Title).
					Float64("price", order.PriceUSD).
					Str("risk", order.RiskLevel.String()).
					Msg("Order awaiting confirmation")
				continue
			}

			summary.Executed++
			if e.Execute(ctx, order) {
				summary.Succeeded++
			} else {
				summary.Failed++
				summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", order.Title, order.Error))
			}
		}
	}

	e.archive(ctx)
	e.logger.Info().
		Int("created", summary.Created).
		Int("executed", summary.Executed).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("pending", summary.Pending).
		Msg("Opportunities processed")
	return summary
}

// ConfirmOrder executes a PENDING order that was held for confirmation.
func (e *Engine) ConfirmOrder(ctx context.Context, id string) (models.ExecutionOrder, error) {
	order := e.findActive(id)
	if order == nil {
		return models.ExecutionOrder{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if order.Status != models.OrderPending {
		return *order, fmt.Errorf("%w: %s is %s", ErrOrderNotPending, id, order.Status)
	}
	e.Execute(ctx, order)
	e.archive(ctx)
	return *order, nil
}

// CancelOrder cancels a PENDING order.
func (e *Engine) CancelOrder(ctx context.Context, id string) (models.ExecutionOrder, error) {
	order := e.findActive(id)
	if order == nil {
		return models.ExecutionOrder{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if order.Status != models.OrderPending {
		return *order, fmt.Errorf("%w: %s is %s", ErrOrderNotPending, id, order.Status)
	}
	if err := order.Transition(models.OrderCancelled, e.now()); err != nil {
		return *order, err
	}
	order.Error = "cancelled"
	e.logger.Info().Str("order_id", id).Str("title", order.Title).Msg("Order cancelled")
	e.archive(ctx)
	return *order, nil
}

// SweepTimeouts moves active orders older than OrderTimeout to TIMEOUT and
// returns how many were swept.
func (e *Engine) SweepTimeouts(ctx context.Context) int {
	if e.cfg.OrderTimeout <= 0 {
		return 0
	}
	now := e.now()
	swept := 0
	for _, o := range e.active {
		if o.Status.Terminal() || now.Sub(o.CreatedAt) < e.cfg.OrderTimeout {
			continue
		}
		if err := o.Transition(models.OrderTimeout, now); err != nil {
			continue
		}
		o.Error = fmt.Sprintf("timed out after %s", e.cfg.OrderTimeout)
		swept++
		e.logger.Warn().Str("order_id", o.ID).Str("title", o.Title).Msg("Order timed out")
		e.alert(models.AlertMedium, models.AlertTypeOrderTimeout, o.Error, o)
	}
	if swept > 0 {
		e.archive(ctx)
	}
	return swept
}

func (e *Engine) findActive(id string) *models.ExecutionOrder {
	for _, o := range e.active {
		if o.ID == id {
			return o
		}
	}
	return nil
}

// archive moves terminal orders from the active list to history.
func (e *Engine) archive(ctx context.Context) {
	kept := e.active[:0]
	for _, o := range e.active {
		if !o.Status.Terminal() {
			kept = append(kept, o)
			continue
		}
		e.history = append(e.history, o)
		if e.journal != nil {
			if err := e.journal.RecordOrder(ctx, *o); err != nil {
				e.logger.Warn().Err(err).Str("order_id", o.ID).Msg("Failed to journal order")
			}
		}
	}
	for i := len(kept); i < len(e.active); i++ {
		e.active[i] = nil
	}
	e.active = kept

	if limit := e.cfg.HistoryLimit; limit > 0 && len(e.history) > limit {
		e.history = append([]*models.ExecutionOrder(nil), e.history[len(e.history)-limit:]...)
	}
}

// ActiveOrders returns copies of the non-archived orders.
func (e *Engine) ActiveOrders() []models.ExecutionOrder {
	return copyOrders(e.active)
}

// History returns copies of archived orders, oldest first.
func (e *Engine) History() []models.ExecutionOrder {
	return copyOrders(e.history)
}

func copyOrders(in []*models.ExecutionOrder) []models.ExecutionOrder {
	out := make([]models.ExecutionOrder, len(in))
	for i, o := range in {
		out[i] = *o
	}
	return out
}

// DailySpent returns the spend since the last UTC reset, applying the reset
// first when the date has rolled over.
func (e *Engine) DailySpent() float64 {
	e.resetIfNewDay()
	return e.dailySpent
}

func (e *Engine) Stats() Stats {
	e.resetIfNewDay()
	s := Stats{
		Active:        len(e.active),
		DailySpentUSD: e.dailySpent,
		DailyLimitUSD: e.cfg.DailyLimitUSD,
		LastResetDate: e.lastReset,
		PaperTrading:  e.cfg.PaperTrading,
	}
	for _, o := range e.history {
		switch o.Status {
		case models.OrderCompleted:
			s.Completed++
		case models.OrderFailed:
			s.Failed++
		case models.OrderCancelled:
			s.Cancelled++
		case models.OrderTimeout:
			s.TimedOut++
		}
	}
	return s
}
